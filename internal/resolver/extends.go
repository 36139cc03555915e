// Package resolver turns raw descriptor maps into the final model:
// extends chains are flattened, classes are enriched with synthesized
// identifier enumerations, abstract entries are filtered, and see-also
// cross-references are linked. Everything operates over the complete
// same-kind descriptor map; partial resolution is never attempted.
package resolver

import (
	"sort"

	"github.com/taxonhq/taxon/internal/merge"
	"github.com/taxonhq/taxon/internal/schema"
)

// ResolveClassExtends flattens every class's inheritance chain:
// ancestor attributes form the base layer, the child's own overrides
// merge on top, and the child's scalar fields win over the parent's.
// The extends key is removed from each result. Unknown parents and
// cyclic chains are fatal; cycles are caught with an explicit
// "currently resolving" set so they fail deterministically instead of
// recursing without bound.
func ResolveClassExtends(classes map[string]*schema.ClassDescriptor) (map[string]*schema.ClassDescriptor, error) {
	out := make(map[string]*schema.ClassDescriptor, len(classes))
	resolving := make(map[string]bool)

	var resolve func(name string) (*schema.ClassDescriptor, error)
	resolve = func(name string) (*schema.ClassDescriptor, error) {
		if done, ok := out[name]; ok {
			return done, nil
		}
		cls := classes[name]
		if cls.Extends == "" {
			flat := cls.Clone()
			out[name] = flat
			return flat, nil
		}
		if resolving[name] {
			return nil, cycleError(name, resolving)
		}
		resolving[name] = true
		defer delete(resolving, name)

		parentName := cls.Extends
		if _, ok := classes[parentName]; !ok {
			return nil, &ResolveError{
				Code: ErrCodeUnknownExtends, Name: name, Ref: parentName,
				Message: "extends unknown class",
			}
		}
		parent, err := resolve(parentName)
		if err != nil {
			return nil, err
		}
		flat := merge.Class(parent, cls)
		flat.Extends = ""
		out[name] = flat
		return flat, nil
	}

	for name := range classes {
		if _, err := resolve(name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ResolveObjectExtends is the object-kind counterpart of
// ResolveClassExtends.
func ResolveObjectExtends(objects map[string]*schema.ObjectDescriptor) (map[string]*schema.ObjectDescriptor, error) {
	out := make(map[string]*schema.ObjectDescriptor, len(objects))
	resolving := make(map[string]bool)

	var resolve func(name string) (*schema.ObjectDescriptor, error)
	resolve = func(name string) (*schema.ObjectDescriptor, error) {
		if done, ok := out[name]; ok {
			return done, nil
		}
		obj := objects[name]
		if obj.Extends == "" {
			flat := obj.Clone()
			out[name] = flat
			return flat, nil
		}
		if resolving[name] {
			return nil, cycleError(name, resolving)
		}
		resolving[name] = true
		defer delete(resolving, name)

		parentName := obj.Extends
		if _, ok := objects[parentName]; !ok {
			return nil, &ResolveError{
				Code: ErrCodeUnknownExtends, Name: name, Ref: parentName,
				Message: "extends unknown object",
			}
		}
		parent, err := resolve(parentName)
		if err != nil {
			return nil, err
		}
		flat := merge.Object(parent, obj)
		flat.Extends = ""
		out[name] = flat
		return flat, nil
	}

	for name := range objects {
		if _, err := resolve(name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func cycleError(name string, resolving map[string]bool) *ResolveError {
	members := make([]string, 0, len(resolving))
	for n := range resolving {
		members = append(members, n)
	}
	sort.Strings(members)
	path := append(members, name)
	return &ResolveError{
		Code: ErrCodeExtendsCycle, Name: name, Path: path,
		Message: "cyclic extends chain",
	}
}
