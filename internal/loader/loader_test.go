package loader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxonhq/taxon/internal/schema"
	"github.com/taxonhq/taxon/internal/testutil"
)

// fixtureTree is a small but complete descriptor tree: base entities,
// an include fragment, and one extension overlaying a base class.
func fixtureTree() map[string]string {
	return map[string]string{
		"version.json": `{"version": "1.2.3"}`,
		"categories.json": `{
			"caption": "Categories",
			"attributes": {
				"system":  {"uid": 1, "caption": "System Activity", "uid_range": "1000-1999"},
				"network": {"uid": 4, "description": "Network events."}
			}
		}`,
		"dictionary.json": `{
			"caption": "Dictionary",
			"attributes": {
				"severity":  {"caption": "Severity", "type": "string_t", "description": "Y", "requirement": "optional"},
				"message":   {"caption": "Message", "type": "string_t"},
				"file_name": {"caption": "File Name", "type": "string_t"},
				"timestamp": {"caption": "Timestamp", "type": "timestamp_t"},
				"hostname":  {"caption": "Hostname", "type": "string_t"}
			}
		}`,
		"includes/occurrence.json": `{
			"caption": "Occurrence",
			"attributes": {
				"timestamp": {"requirement": "recommended"},
				"severity":  {"requirement": "optional", "description": "fragment description"}
			}
		}`,
		"events/base_event.json": `{
			"type": "base_event",
			"caption": "Base Event",
			"attributes": {
				"include": "includes/occurrence.json",
				"severity": {"requirement": "recommended"},
				"message":  {"requirement": "optional"}
			}
		}`,
		"events/file_activity.json": `{
			"type": "file_activity",
			"uid": 7,
			"category": "system",
			"extends": "base_event",
			"see_also": ["network_activity", "missing_class"],
			"attributes": {
				"file_name": {"requirement": "required"},
				"disposition_id": {"caption": "Disposition ID", "enum": {"1": {"name": "Blocked"}}}
			}
		}`,
		"events/network_activity.json": `{
			"type": "network_activity",
			"uid": 12,
			"caption": "Network Activity",
			"category": "network",
			"extends": "base_event",
			"attributes": {}
		}`,
		"objects/_entity.json": `{
			"type": "_entity",
			"attributes": {"name": {"caption": "Name"}, "uid": {"caption": "UID"}}
		}`,
		"objects/device.json": `{
			"type": "device",
			"extends": "_entity",
			"attributes": {"hostname": {"requirement": "recommended"}}
		}`,
		"extensions/ext1/dictionary.json": `{
			"attributes": {"ext_attr": {"caption": "Ext Attr", "type": "string_t"}}
		}`,
		"extensions/ext1/events/file_activity.json": `{
			"type": "file_activity",
			"description": "Extended description",
			"attributes": {"ext_attr": {"requirement": "optional"}}
		}`,
	}
}

func TestDiscover(t *testing.T) {
	root := testutil.WriteTree(t, fixtureTree())

	set, err := Discover(root, schema.DefaultExtensionsDir)
	require.NoError(t, err)

	assert.NotEmpty(t, set.Version)
	assert.Len(t, set.Categories, 1)
	assert.Len(t, set.Dictionary, 2, "base dictionary plus one extension overlay")
	assert.Len(t, set.Classes, 4)
	assert.Len(t, set.Objects, 2)
	assert.Equal(t, []string{"ext1"}, set.Extensions)
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := Discover("/nonexistent/schema/root", schema.DefaultExtensionsDir)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNoRoot, loadErr.Code)
}

func TestLoadBasicTree(t *testing.T) {
	root := testutil.WriteTree(t, fixtureTree())

	raw, err := Load(Options{Root: root})
	require.NoError(t, err)

	assert.Equal(t, "1.2.3", raw.Version)
	assert.False(t, raw.VersionDefaulted)
	assert.Len(t, raw.Categories, 2)
	assert.Len(t, raw.Classes, 3)
	assert.Len(t, raw.Objects, 2)
	assert.Contains(t, raw.Dictionary, "severity")
	assert.Contains(t, raw.Dictionary, "ext_attr", "extension dictionary entries merge in")
}

func TestLoadExtensionOverlaysBase(t *testing.T) {
	root := testutil.WriteTree(t, fixtureTree())

	raw, err := Load(Options{Root: root})
	require.NoError(t, err)

	cls := raw.Classes["file_activity"]
	require.NotNil(t, cls)
	assert.Equal(t, "Extended description", cls.Description, "extension scalar wins")
	require.NotNil(t, cls.UID)
	assert.Equal(t, 7, *cls.UID, "base scalar survives when the extension leaves it unset")

	extAttr := cls.Attributes.Attrs["ext_attr"]
	require.NotNil(t, extAttr)
	assert.Equal(t, "ext1", extAttr.Source, "extension-introduced attributes carry extension provenance")
	assert.NotNil(t, cls.Attributes.Attrs["file_name"], "base attributes survive the overlay")
}

func TestLoadResolvesIncludes(t *testing.T) {
	root := testutil.WriteTree(t, fixtureTree())

	raw, err := Load(Options{Root: root})
	require.NoError(t, err)

	base := raw.Classes["base_event"]
	require.NotNil(t, base)
	assert.Nil(t, base.Include)
	assert.Nil(t, base.Attributes.Include)

	sev := base.Attributes.Attrs["severity"]
	require.NotNil(t, sev)
	assert.Equal(t, "recommended", sev.Requirement, "local override wins over the fragment")
	assert.Equal(t, "fragment description", sev.Description, "non-conflicting fragment fields survive")
	assert.NotNil(t, base.Attributes.Attrs["timestamp"], "fragment-only attributes merge in")
}

func TestLoadMissingIncludeIsFatal(t *testing.T) {
	files := fixtureTree()
	files["events/base_event.json"] = `{
		"type": "base_event",
		"attributes": {"include": "includes/nope.json"}
	}`
	root := testutil.WriteTree(t, files)

	_, err := Load(Options{Root: root})

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeMissing, loadErr.Code)
}

func TestLoadEscapingIncludeIsFatal(t *testing.T) {
	files := fixtureTree()
	files["events/base_event.json"] = `{
		"type": "base_event",
		"attributes": {"include": "../outside/fragment.json"}
	}`
	root := testutil.WriteTree(t, files)

	_, err := Load(Options{Root: root})

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeStructure, loadErr.Code)
}

func TestLoadMalformedDescriptorIsFatal(t *testing.T) {
	files := fixtureTree()
	files["events/broken.json"] = `{"type": "broken", `
	root := testutil.WriteTree(t, files)

	_, err := Load(Options{Root: root})

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeDecode, loadErr.Code)
}

func TestLoadStructuralVetIsFatal(t *testing.T) {
	files := fixtureTree()
	files["events/untyped.json"] = `{"caption": "No Type Key"}`
	root := testutil.WriteTree(t, files)

	_, err := Load(Options{Root: root})

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeStructure, loadErr.Code)
}

func TestLoadNonIntegerUIDIsFatal(t *testing.T) {
	files := fixtureTree()
	files["events/baduid.json"] = `{"type": "baduid", "uid": "seven"}`
	root := testutil.WriteTree(t, files)

	_, err := Load(Options{Root: root})

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeStructure, loadErr.Code)
}

func TestLoadDefaultsMissingVersion(t *testing.T) {
	files := fixtureTree()
	delete(files, "version.json")
	root := testutil.WriteTree(t, files)

	raw, err := Load(Options{Root: root})
	require.NoError(t, err)

	assert.Equal(t, schema.DefaultVersion, raw.Version)
	assert.True(t, raw.VersionDefaulted)
}

func TestLoadDerivesMissingCaptions(t *testing.T) {
	root := testutil.WriteTree(t, fixtureTree())

	raw, err := Load(Options{Root: root})
	require.NoError(t, err)

	assert.Equal(t, "File Activity", raw.Classes["file_activity"].Caption)
	assert.Equal(t, "Network", raw.Categories["network"].Caption)
	assert.Equal(t, "Device", raw.Objects["device"].Caption)
}

func TestLoadAcceptsYAMLDescriptors(t *testing.T) {
	files := fixtureTree()
	files["events/dns_activity.yaml"] = `
type: dns_activity
uid: 13
category: network
extends: base_event
attributes:
  message:
    requirement: required
`
	root := testutil.WriteTree(t, files)

	raw, err := Load(Options{Root: root})
	require.NoError(t, err)
	assert.Contains(t, raw.Classes, "dns_activity")
}

func TestCheckFileUnknownKind(t *testing.T) {
	err := CheckFile("whatever.json", Kind("bogus"))
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeGeneric, loadErr.Code)
}
