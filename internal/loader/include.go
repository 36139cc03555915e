package loader

import (
	"path/filepath"

	"github.com/taxonhq/taxon/internal/merge"
	"github.com/taxonhq/taxon/internal/schema"
)

// fragments loads attribute-fragment files referenced by include keys,
// caching by path so a fragment shared by many descriptors decodes once.
type fragments struct {
	root  string
	cache map[string]*schema.Fragment
}

func newFragments(root string) *fragments {
	return &fragments{root: root, cache: make(map[string]*schema.Fragment)}
}

// get loads the fragment named by ref, relative to the tree root.
// References must stay inside the tree; a missing or malformed fragment
// is fatal.
func (f *fragments) get(ref string) (*schema.Fragment, error) {
	if !filepath.IsLocal(filepath.FromSlash(ref)) {
		return nil, errf(ErrCodeStructure, ref, "include reference escapes the descriptor root")
	}
	path := filepath.Join(f.root, ref)
	if frag, ok := f.cache[path]; ok {
		return frag, nil
	}
	frag, err := decodeFragment(path)
	if err != nil {
		return nil, err
	}
	f.cache[path] = frag
	return frag, nil
}

// expand applies include references in order: each fragment merges over
// the accumulated base layer, and the descriptor's own attributes merge
// on top, so local overrides always win over included fragments.
func (f *fragments) expand(refs []string, own schema.AttributeSet, extra map[string]any) (schema.AttributeSet, map[string]any, error) {
	if len(refs) == 0 {
		return schema.AttributeSet{Attrs: own.Attrs}, extra, nil
	}
	acc := make(map[string]*schema.Attribute)
	for _, ref := range refs {
		frag, err := f.get(ref)
		if err != nil {
			return own, extra, err
		}
		acc = merge.Attributes(acc, frag.Attributes.Attrs)
		if frag.Annotations != nil {
			extra = merge.Maps(frag.Annotations, extra)
		}
	}
	return schema.AttributeSet{Attrs: merge.Attributes(acc, own.Attrs)}, extra, nil
}

// resolveClassIncludes expands the root-level include key, then the
// attributes-level one, and clears both.
func (f *fragments) resolveClassIncludes(cls *schema.ClassDescriptor) error {
	refs := append([]string(nil), cls.Include...)
	refs = append(refs, cls.Attributes.Include...)
	attrs, extra, err := f.expand(refs, cls.Attributes, cls.Extra)
	if err != nil {
		return err
	}
	cls.Attributes = attrs
	cls.Extra = extra
	cls.Include = nil
	return nil
}

func (f *fragments) resolveObjectIncludes(obj *schema.ObjectDescriptor) error {
	refs := append([]string(nil), obj.Include...)
	refs = append(refs, obj.Attributes.Include...)
	attrs, extra, err := f.expand(refs, obj.Attributes, obj.Extra)
	if err != nil {
		return err
	}
	obj.Attributes = attrs
	obj.Extra = extra
	obj.Include = nil
	return nil
}
