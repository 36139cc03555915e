// Package compiler runs the whole resolution pipeline: load and merge
// the descriptor tree, expand includes, flatten extends chains, link
// see-also references, enrich classes, filter abstract entries, derive
// the merged dictionary, and freeze everything into an immutable cache.
// The pipeline is synchronous and whole-graph: extends chains, category
// validation, and dictionary derivation all need the complete
// descriptor set before any single entity can be finalized, so nothing
// here is concurrent or resumable. It either completes or returns a
// fatal error value; process exit is the caller's decision.
package compiler

import (
	"sort"

	"github.com/untillpro/goutils/logger"

	"github.com/taxonhq/taxon/internal/cache"
	"github.com/taxonhq/taxon/internal/loader"
	"github.com/taxonhq/taxon/internal/resolver"
	"github.com/taxonhq/taxon/internal/schema"
)

// Options locate the descriptor tree to compile.
type Options struct {
	Root          string
	ExtensionsDir string // defaults to schema.DefaultExtensionsDir
}

// Compile builds the full schema model from the descriptor tree.
func Compile(opts Options) (*cache.Cache, error) {
	raw, err := loader.Load(loader.Options{Root: opts.Root, ExtensionsDir: opts.ExtensionsDir})
	if err != nil {
		return nil, err
	}

	// The pre-extends common class is kept aside: lookups by the
	// reserved base name serve it directly instead of a flattened
	// descendant.
	var base *schema.ClassDescriptor
	if b, ok := raw.Classes[schema.BaseClassName]; ok {
		base = b.Clone()
		for _, attr := range base.Attributes.Attrs {
			if attr.Source == "" {
				attr.Source = base.Name
			}
		}
	}

	classes, err := resolver.ResolveClassExtends(raw.Classes)
	if err != nil {
		return nil, err
	}

	// Linked against the pre-filter set so abstract ancestors still
	// resolve as cross-reference targets.
	resolver.LinkSeeAlso(classes)

	classes, err = resolver.EnrichClasses(classes, raw.Categories)
	if err != nil {
		return nil, err
	}

	objects, err := resolver.ResolveObjects(raw.Objects)
	if err != nil {
		return nil, err
	}

	dictionary := deriveDictionary(raw.Dictionary, classes, objects)

	return cache.New(raw.Version, dictionary, raw.Categories, classes, objects, base), nil
}

// deriveDictionary merges the base dictionary with every attribute name
// introduced by any class or object: a name absent from the base
// dictionary still surfaces as an entry, seeded from its override, so
// query-time enrichment always finds a base definition. Adoption runs in
// sorted owner-then-attribute order: when several descriptors introduce
// the same unknown name, the lexically first owner seeds the shared
// entry on every compile.
func deriveDictionary(
	base map[string]*schema.Attribute,
	classes map[string]*schema.ClassDescriptor,
	objects map[string]*schema.ObjectDescriptor,
) map[string]*schema.Attribute {
	out := schema.CloneAttributes(base)
	if out == nil {
		out = make(map[string]*schema.Attribute)
	}

	type owned struct {
		owner string
		attrs map[string]*schema.Attribute
	}
	introducers := make([]owned, 0, len(classes)+len(objects))
	for _, cls := range classes {
		introducers = append(introducers, owned{cls.Name, cls.Attributes.Attrs})
	}
	for _, obj := range objects {
		introducers = append(introducers, owned{obj.Name, obj.Attributes.Attrs})
	}
	sort.Slice(introducers, func(i, j int) bool { return introducers[i].owner < introducers[j].owner })

	for _, in := range introducers {
		names := make([]string, 0, len(in.attrs))
		for name := range in.attrs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if _, ok := out[name]; ok {
				continue
			}
			logger.Verbose("attribute", name, "introduced by", in.owner, "has no base dictionary entry")
			// Per-entity enum values and provenance stay out of the
			// shared entry; enrichment layers them back per query.
			adopted := in.attrs[name].Clone()
			adopted.Enum = nil
			adopted.Source = ""
			out[name] = adopted
		}
	}
	return out
}
