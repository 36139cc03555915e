// Package cache holds the finished schema model: an immutable,
// process-wide snapshot built once by the compiler. All lookups are
// side-effect-free and safe for arbitrarily many concurrent readers;
// no writer exists after construction. Attribute overrides merge onto
// their dictionary base definitions at query time, never at load time.
package cache

import (
	"github.com/untillpro/goutils/logger"

	"github.com/taxonhq/taxon/internal/merge"
	"github.com/taxonhq/taxon/internal/schema"
)

// Cache is the queryable resolved model. Zero value is not usable;
// construct with New. Accessors return copies, so callers can never
// mutate the snapshot.
type Cache struct {
	version    string
	dictionary map[string]*schema.Attribute
	categories map[string]*schema.Category
	classes    map[string]*schema.ClassDescriptor
	objects    map[string]*schema.ObjectDescriptor

	// base is the pre-extends common class; lookups by the reserved
	// base name enrich its attribute set directly.
	base *schema.ClassDescriptor
}

// New freezes a resolved model into a Cache. All inputs are deep-copied
// so later mutation by the caller cannot reach the snapshot.
func New(
	version string,
	dictionary map[string]*schema.Attribute,
	categories map[string]*schema.Category,
	classes map[string]*schema.ClassDescriptor,
	objects map[string]*schema.ObjectDescriptor,
	base *schema.ClassDescriptor,
) *Cache {
	c := &Cache{
		version:    version,
		dictionary: schema.CloneAttributes(dictionary),
		categories: make(map[string]*schema.Category, len(categories)),
		classes:    make(map[string]*schema.ClassDescriptor, len(classes)),
		objects:    make(map[string]*schema.ObjectDescriptor, len(objects)),
		base:       base.Clone(),
	}
	for k, v := range categories {
		c.categories[k] = v.Clone()
	}
	for k, v := range classes {
		c.classes[k] = v.Clone()
	}
	for k, v := range objects {
		c.objects[k] = v.Clone()
	}
	return c
}

// Version returns the schema version string.
func (c *Cache) Version() string { return c.version }

// Dictionary returns the full merged attribute dictionary.
func (c *Cache) Dictionary() map[string]*schema.Attribute {
	return schema.CloneAttributes(c.dictionary)
}

// Categories returns all categories keyed by name.
func (c *Cache) Categories() map[string]*schema.Category {
	out := make(map[string]*schema.Category, len(c.categories))
	for k, v := range c.categories {
		out[k] = v.Clone()
	}
	return out
}

// CategoryDetail is one category together with the classes filed under
// it. Ordering (e.g. by uid) is the caller's concern.
type CategoryDetail struct {
	schema.Category
	Classes map[string]*schema.ClassDescriptor `json:"classes"`
}

// Category returns one category plus its classes, or not-found.
func (c *Cache) Category(name string) (*CategoryDetail, bool) {
	cat, ok := c.categories[name]
	if !ok {
		return nil, false
	}
	detail := &CategoryDetail{
		Category: *cat,
		Classes:  make(map[string]*schema.ClassDescriptor),
	}
	for n, cls := range c.classes {
		if cls.Category == name {
			detail.Classes[n] = cls.Clone()
		}
	}
	return detail, true
}

// Classes returns all concrete classes keyed by name, without
// query-time attribute enrichment.
func (c *Cache) Classes() map[string]*schema.ClassDescriptor {
	out := make(map[string]*schema.ClassDescriptor, len(c.classes))
	for k, v := range c.classes {
		out[k] = v.Clone()
	}
	return out
}

// Class returns one class with its attribute overrides merged onto the
// dictionary base definitions. The reserved base-class name enriches
// the pre-extends common attribute set directly. Enrichment never
// fails: an attribute missing from the dictionary is logged and passed
// through as-is.
func (c *Cache) Class(name string) (*schema.ClassDescriptor, bool) {
	if name == schema.BaseClassName && c.base != nil {
		return c.enrichClass(c.base), true
	}
	cls, ok := c.classes[name]
	if !ok {
		return nil, false
	}
	return c.enrichClass(cls), true
}

// FindClassByUID linearly searches the resolved classes by numeric uid,
// returning the match enriched identically to Class.
func (c *Cache) FindClassByUID(uid int) (*schema.ClassDescriptor, bool) {
	for _, cls := range c.classes {
		if cls.UID != nil && *cls.UID == uid {
			return c.enrichClass(cls), true
		}
	}
	return nil, false
}

// Objects returns all concrete objects keyed by name.
func (c *Cache) Objects() map[string]*schema.ObjectDescriptor {
	out := make(map[string]*schema.ObjectDescriptor, len(c.objects))
	for k, v := range c.objects {
		out[k] = v.Clone()
	}
	return out
}

// Object returns one object enriched under the same contract as Class,
// without category/event/class-id synthesis.
func (c *Cache) Object(name string) (*schema.ObjectDescriptor, bool) {
	obj, ok := c.objects[name]
	if !ok {
		return nil, false
	}
	out := obj.Clone()
	out.Attributes = c.enrichAttributes(out.Name, out.Attributes)
	return out, true
}

func (c *Cache) enrichClass(cls *schema.ClassDescriptor) *schema.ClassDescriptor {
	out := cls.Clone()
	out.Attributes = c.enrichAttributes(out.Name, out.Attributes)
	return out
}

// enrichAttributes merges each override onto its dictionary base; the
// override wins on conflicting scalar fields and nested enums deep-merge.
func (c *Cache) enrichAttributes(owner string, set schema.AttributeSet) schema.AttributeSet {
	out := make(map[string]*schema.Attribute, len(set.Attrs))
	for name, override := range set.Attrs {
		base, ok := c.dictionary[name]
		if !ok {
			logger.Warning("attribute", name, "of", owner, "has no dictionary entry")
			out[name] = override.Clone()
			continue
		}
		out[name] = merge.Attribute(base, override)
	}
	return schema.AttributeSet{Attrs: out}
}
