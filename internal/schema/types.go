package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Reserved names in descriptor files.
const (
	// IncludeKey is the reserved key carrying attribute-fragment
	// references, either at a descriptor's root or inside its
	// attributes block.
	IncludeKey = "include"

	// AbstractPrefix marks an object descriptor as template-only.
	// Objects whose name starts with it never reach the final set.
	AbstractPrefix = "_"

	// BaseClassName is the class every concrete class ultimately
	// extends. Lookups by this name enrich the pre-extends attribute
	// set directly instead of a flattened descendant.
	BaseClassName = "base_event"

	// DefaultExtensionsDir is the subtree holding extension overlays.
	DefaultExtensionsDir = "extensions"

	// DefaultVersion is served when the tree has no version file.
	DefaultVersion = "0.0.0"
)

// Synthesized attribute names attached to every concrete class.
const (
	AttrClassID    = "class_id"
	AttrCategoryID = "category_id"
	AttrEventUID   = "event_uid"

	// AttrDispositionID seeds the event_uid enumeration when present.
	AttrDispositionID = "disposition_id"
)

// EventUIDMultiplier spaces per-class event codes: code = uid*1000 + k.
const EventUIDMultiplier = 1000

// EventUIDOther is the sentinel code injected into every event_uid enum.
const EventUIDOther = -1

// IsAbstractName reports whether an object name uses the reserved
// template-only prefix.
func IsAbstractName(name string) bool {
	return len(name) > 0 && name[:1] == AbstractPrefix
}

// EnumMember is one entry of an enumeration attribute.
type EnumMember struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description"`
}

// Attribute is a single attribute definition. The dictionary holds full
// base definitions; class and object descriptors hold partial overrides
// of the same shape. Overrides are merged onto their dictionary base
// only at query time.
type Attribute struct {
	Caption     string                 `json:"caption,omitempty" yaml:"caption"`
	Description string                 `json:"description,omitempty" yaml:"description"`
	Type        string                 `json:"type,omitempty" yaml:"type"`
	Requirement string                 `json:"requirement,omitempty" yaml:"requirement"`
	Enum        map[string]*EnumMember `json:"enum,omitempty" yaml:"enum"`

	// Source names the descriptor that introduced or last overrode
	// this attribute (provenance marker).
	Source string `json:"_source,omitempty" yaml:"_source"`

	// Extra holds dynamic keys not covered by the named fields.
	Extra map[string]any `json:"extra,omitempty" yaml:",inline"`
}

// Clone returns a deep copy.
func (a *Attribute) Clone() *Attribute {
	if a == nil {
		return nil
	}
	out := &Attribute{
		Caption:     a.Caption,
		Description: a.Description,
		Type:        a.Type,
		Requirement: a.Requirement,
		Source:      a.Source,
	}
	if a.Enum != nil {
		out.Enum = make(map[string]*EnumMember, len(a.Enum))
		for k, v := range a.Enum {
			m := *v
			out.Enum[k] = &m
		}
	}
	out.Extra = cloneValueMap(a.Extra)
	return out
}

// CloneAttributes deep-copies an attribute map.
func CloneAttributes(attrs map[string]*Attribute) map[string]*Attribute {
	if attrs == nil {
		return nil
	}
	out := make(map[string]*Attribute, len(attrs))
	for k, v := range attrs {
		out[k] = v.Clone()
	}
	return out
}

func cloneValueMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if mv, ok := v.(map[string]any); ok {
			out[k] = cloneValueMap(mv)
			continue
		}
		out[k] = v
	}
	return out
}

// StringList decodes the include key's value: either one string or an
// ordered list of strings.
type StringList []string

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (l *StringList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		var s string
		if err := n.Decode(&s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	case yaml.SequenceNode:
		var ss []string
		if err := n.Decode(&ss); err != nil {
			return err
		}
		*l = StringList(ss)
		return nil
	default:
		return fmt.Errorf("expected string or list of strings, got %s", n.Tag)
	}
}

// AttributeSet is a descriptor's attribute block. The reserved include
// key is captured separately so attribute names stay a uniform map.
type AttributeSet struct {
	Include StringList
	Attrs   map[string]*Attribute
}

// UnmarshalYAML splits the reserved include key from attribute entries.
func (s *AttributeSet) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("attributes: expected mapping, got %s", n.Tag)
	}
	s.Attrs = make(map[string]*Attribute, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		val := n.Content[i+1]
		if key == IncludeKey {
			var refs StringList
			if err := val.Decode(&refs); err != nil {
				return fmt.Errorf("attributes.%s: %w", IncludeKey, err)
			}
			s.Include = append(s.Include, refs...)
			continue
		}
		attr := &Attribute{}
		if err := val.Decode(attr); err != nil {
			return fmt.Errorf("attribute %q: %w", key, err)
		}
		s.Attrs[key] = attr
	}
	return nil
}

// MarshalJSON renders only the attribute entries; include references
// are resolved away before anything is serialized.
func (s AttributeSet) MarshalJSON() ([]byte, error) {
	if s.Attrs == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.Attrs)
}

// UnmarshalJSON restores a serialized attribute map (snapshot
// read-back); includes never survive into serialized form.
func (s *AttributeSet) UnmarshalJSON(data []byte) error {
	s.Include = nil
	return json.Unmarshal(data, &s.Attrs)
}

// Len returns the number of attribute entries.
func (s AttributeSet) Len() int { return len(s.Attrs) }

// Clone returns a deep copy.
func (s AttributeSet) Clone() AttributeSet {
	out := AttributeSet{Attrs: CloneAttributes(s.Attrs)}
	if s.Include != nil {
		out.Include = append(StringList(nil), s.Include...)
	}
	return out
}

// Category is one entry of the category set.
type Category struct {
	Name        string `json:"name" yaml:"-"`
	Caption     string `json:"caption,omitempty" yaml:"caption"`
	Description string `json:"description,omitempty" yaml:"description"`
	UID         int    `json:"uid" yaml:"uid"`

	// UIDRange is the reserved numeric id-range marker. It is carried
	// on the category record but stripped when the record is embedded
	// into a class's category_id enumeration.
	UIDRange string `json:"uid_range,omitempty" yaml:"uid_range"`
}

// Clone returns a copy.
func (c *Category) Clone() *Category {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

// SeeAlsoRef is a resolved cross-reference to another class.
type SeeAlsoRef struct {
	Name    string `json:"name"`
	Caption string `json:"caption"`
}

// ClassDescriptor is one class (event) descriptor. The declared type
// field is the descriptor's key in the class map and doubles as its
// name. A nil UID marks the class abstract: it exists only to be
// extended from and never reaches the final class set.
type ClassDescriptor struct {
	Name        string       `json:"name" yaml:"type"`
	Caption     string       `json:"caption,omitempty" yaml:"caption"`
	Description string       `json:"description,omitempty" yaml:"description"`
	UID         *int         `json:"uid,omitempty" yaml:"uid"`
	Category    string       `json:"category,omitempty" yaml:"category"`
	Extends     string       `json:"extends,omitempty" yaml:"extends"`
	Include     StringList   `json:"-" yaml:"include"`
	Attributes  AttributeSet `json:"attributes" yaml:"attributes"`
	SeeAlso     StringList   `json:"-" yaml:"see_also"`
	SeeAlsoRefs []SeeAlsoRef `json:"see_also,omitempty" yaml:"-"`

	// Extra holds dynamic root keys (profiles, annotations, ...).
	Extra map[string]any `json:"extra,omitempty" yaml:",inline"`
}

// Clone returns a deep copy.
func (c *ClassDescriptor) Clone() *ClassDescriptor {
	if c == nil {
		return nil
	}
	out := &ClassDescriptor{
		Name:        c.Name,
		Caption:     c.Caption,
		Description: c.Description,
		Category:    c.Category,
		Extends:     c.Extends,
		Attributes:  c.Attributes.Clone(),
		Extra:       cloneValueMap(c.Extra),
	}
	if c.UID != nil {
		uid := *c.UID
		out.UID = &uid
	}
	if c.Include != nil {
		out.Include = append(StringList(nil), c.Include...)
	}
	if c.SeeAlso != nil {
		out.SeeAlso = append(StringList(nil), c.SeeAlso...)
	}
	if c.SeeAlsoRefs != nil {
		out.SeeAlsoRefs = append([]SeeAlsoRef(nil), c.SeeAlsoRefs...)
	}
	return out
}

// ObjectDescriptor is one object descriptor. A name starting with the
// abstract prefix marks it template-only.
type ObjectDescriptor struct {
	Name        string       `json:"name" yaml:"type"`
	Caption     string       `json:"caption,omitempty" yaml:"caption"`
	Description string       `json:"description,omitempty" yaml:"description"`
	Extends     string       `json:"extends,omitempty" yaml:"extends"`
	Include     StringList   `json:"-" yaml:"include"`
	Attributes  AttributeSet `json:"attributes" yaml:"attributes"`

	Extra map[string]any `json:"extra,omitempty" yaml:",inline"`
}

// Clone returns a deep copy.
func (o *ObjectDescriptor) Clone() *ObjectDescriptor {
	if o == nil {
		return nil
	}
	out := &ObjectDescriptor{
		Name:        o.Name,
		Caption:     o.Caption,
		Description: o.Description,
		Extends:     o.Extends,
		Attributes:  o.Attributes.Clone(),
		Extra:       cloneValueMap(o.Extra),
	}
	if o.Include != nil {
		out.Include = append(StringList(nil), o.Include...)
	}
	return out
}

// Fragment is an attribute-fragment file referenced by an include key.
type Fragment struct {
	Caption     string       `yaml:"caption"`
	Description string       `yaml:"description"`
	Attributes  AttributeSet `yaml:"attributes"`

	// Annotations merge into the including descriptor's Extra.
	Annotations map[string]any `yaml:"annotations"`
}
