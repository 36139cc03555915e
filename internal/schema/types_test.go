package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestStringListSingleReference(t *testing.T) {
	var l StringList
	require.NoError(t, yaml.Unmarshal([]byte(`"includes/occurrence.json"`), &l))
	assert.Equal(t, StringList{"includes/occurrence.json"}, l)
}

func TestStringListOrderedReferences(t *testing.T) {
	var l StringList
	require.NoError(t, yaml.Unmarshal([]byte(`["a.json", "b.json"]`), &l))
	assert.Equal(t, StringList{"a.json", "b.json"}, l)
}

func TestStringListRejectsMapping(t *testing.T) {
	var l StringList
	assert.Error(t, yaml.Unmarshal([]byte(`{"a": 1}`), &l))
}

func TestAttributeSetSplitsIncludeKey(t *testing.T) {
	doc := `
include: "includes/classification.json"
severity:
  description: How bad it is
  requirement: required
`
	var set AttributeSet
	require.NoError(t, yaml.Unmarshal([]byte(doc), &set))

	assert.Equal(t, StringList{"includes/classification.json"}, set.Include)
	require.Contains(t, set.Attrs, "severity")
	assert.Equal(t, "How bad it is", set.Attrs["severity"].Description)
	assert.NotContains(t, set.Attrs, IncludeKey, "include never becomes an attribute")
}

func TestClassDescriptorDecodeFromJSON(t *testing.T) {
	doc := `{
		"type": "file_activity",
		"caption": "File Activity",
		"uid": 7,
		"category": "system",
		"extends": "base_event",
		"see_also": ["process_activity"],
		"profiles": ["host"],
		"attributes": {
			"file_name": {"requirement": "required"}
		}
	}`
	var cls ClassDescriptor
	require.NoError(t, yaml.Unmarshal([]byte(doc), &cls))

	assert.Equal(t, "file_activity", cls.Name, "the type key is the descriptor name")
	require.NotNil(t, cls.UID)
	assert.Equal(t, 7, *cls.UID)
	assert.Equal(t, "base_event", cls.Extends)
	assert.Equal(t, StringList{"process_activity"}, cls.SeeAlso)
	assert.Contains(t, cls.Extra, "profiles", "unknown root keys land in Extra")
	assert.Equal(t, "required", cls.Attributes.Attrs["file_name"].Requirement)
}

func TestAttributeCloneIsDeep(t *testing.T) {
	attr := &Attribute{
		Caption: "Severity",
		Enum:    map[string]*EnumMember{"1": {Name: "Low"}},
		Extra:   map[string]any{"group": "context"},
	}
	clone := attr.Clone()
	clone.Enum["1"].Name = "Changed"
	clone.Extra["group"] = "changed"

	assert.Equal(t, "Low", attr.Enum["1"].Name)
	assert.Equal(t, "context", attr.Extra["group"])
}

func TestIsAbstractName(t *testing.T) {
	assert.True(t, IsAbstractName("_entity"))
	assert.False(t, IsAbstractName("device"))
	assert.False(t, IsAbstractName(""))
}

func TestDeriveCaption(t *testing.T) {
	assert.Equal(t, "Process Activity", DeriveCaption("process_activity"))
	assert.Equal(t, "Entity", DeriveCaption("_entity"), "abstract prefix is stripped")
}

func TestMarshalCanonicalSortsMapKeys(t *testing.T) {
	a, err := MarshalCanonical(map[string]int{"b": 2, "a": 1, "c": 3})
	require.NoError(t, err)
	b, err := MarshalCanonical(map[string]int{"c": 3, "a": 1, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
