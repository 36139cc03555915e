// Package merge implements the deterministic merge semantics shared by
// extension overlays, include fragments, and extends resolution: for
// overlapping mapping keys the override's value wins recursively; for
// non-mapping values the override replaces the base. Merging is
// idempotent and never mutates its inputs.
package merge

import "github.com/taxonhq/taxon/internal/schema"

// Maps deep-merges override onto base and returns a new map. Values
// that are themselves string-keyed maps merge recursively; anything
// else (scalars, lists) is replaced by the override's value.
func Maps(base, override map[string]any) map[string]any {
	if base == nil && override == nil {
		return nil
	}
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		bv, ok := out[k]
		if ok {
			bm, bok := bv.(map[string]any)
			om, ook := v.(map[string]any)
			if bok && ook {
				out[k] = Maps(bm, om)
				continue
			}
		}
		out[k] = v
	}
	return out
}

// Attribute merges a partial override onto a base definition. Scalar
// fields set on the override win; the enum maps merge per entry with
// the override's member fields taking precedence.
func Attribute(base, override *schema.Attribute) *schema.Attribute {
	if base == nil {
		return override.Clone()
	}
	out := base.Clone()
	if override == nil {
		return out
	}
	if override.Caption != "" {
		out.Caption = override.Caption
	}
	if override.Description != "" {
		out.Description = override.Description
	}
	if override.Type != "" {
		out.Type = override.Type
	}
	if override.Requirement != "" {
		out.Requirement = override.Requirement
	}
	if override.Source != "" {
		out.Source = override.Source
	}
	if override.Enum != nil {
		if out.Enum == nil {
			out.Enum = make(map[string]*schema.EnumMember, len(override.Enum))
		}
		for k, m := range override.Enum {
			out.Enum[k] = mergeEnumMember(out.Enum[k], m)
		}
	}
	if override.Extra != nil {
		out.Extra = Maps(out.Extra, override.Extra)
	}
	return out
}

func mergeEnumMember(base, override *schema.EnumMember) *schema.EnumMember {
	if base == nil {
		m := *override
		return &m
	}
	out := *base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.Description != "" {
		out.Description = override.Description
	}
	return &out
}

// Attributes merges an override attribute map onto a base map.
func Attributes(base, override map[string]*schema.Attribute) map[string]*schema.Attribute {
	if base == nil && override == nil {
		return nil
	}
	out := schema.CloneAttributes(base)
	if out == nil {
		out = make(map[string]*schema.Attribute, len(override))
	}
	for k, v := range override {
		out[k] = Attribute(out[k], v)
	}
	return out
}

// AttributeSets merges the attribute entries of two sets. Include
// references are expected to be resolved before this point; the
// override's pending includes, if any, are preserved.
func AttributeSets(base, override schema.AttributeSet) schema.AttributeSet {
	out := schema.AttributeSet{Attrs: Attributes(base.Attrs, override.Attrs)}
	if override.Include != nil {
		out.Include = append(schema.StringList(nil), override.Include...)
	} else if base.Include != nil {
		out.Include = append(schema.StringList(nil), base.Include...)
	}
	return out
}

// Class merges a child (or extension overlay) onto a parent class:
// scalar fields on the child take precedence via a shallow merge,
// attributes deep-merge with the child's entries on top.
func Class(parent, child *schema.ClassDescriptor) *schema.ClassDescriptor {
	out := parent.Clone()
	out.Name = child.Name
	if child.Caption != "" {
		out.Caption = child.Caption
	}
	if child.Description != "" {
		out.Description = child.Description
	}
	if child.UID != nil {
		uid := *child.UID
		out.UID = &uid
	}
	if child.Category != "" {
		out.Category = child.Category
	}
	if child.Extends != "" {
		out.Extends = child.Extends
	}
	if child.Include != nil {
		out.Include = append(schema.StringList(nil), child.Include...)
	}
	if child.SeeAlso != nil {
		out.SeeAlso = append(schema.StringList(nil), child.SeeAlso...)
	}
	out.Attributes = AttributeSets(parent.Attributes, child.Attributes)
	out.Extra = Maps(out.Extra, child.Extra)
	return out
}

// Object merges a child (or extension overlay) onto a parent object.
func Object(parent, child *schema.ObjectDescriptor) *schema.ObjectDescriptor {
	out := parent.Clone()
	out.Name = child.Name
	if child.Caption != "" {
		out.Caption = child.Caption
	}
	if child.Description != "" {
		out.Description = child.Description
	}
	if child.Extends != "" {
		out.Extends = child.Extends
	}
	if child.Include != nil {
		out.Include = append(schema.StringList(nil), child.Include...)
	}
	out.Attributes = AttributeSets(parent.Attributes, child.Attributes)
	out.Extra = Maps(out.Extra, child.Extra)
	return out
}

// Category merges an extension's category entry onto the base entry.
func Category(base, override *schema.Category) *schema.Category {
	out := base.Clone()
	if override.Caption != "" {
		out.Caption = override.Caption
	}
	if override.Description != "" {
		out.Description = override.Description
	}
	if override.UID != 0 {
		out.UID = override.UID
	}
	if override.UIDRange != "" {
		out.UIDRange = override.UIDRange
	}
	return out
}
