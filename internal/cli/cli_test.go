package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxonhq/taxon/internal/snapshot"
	"github.com/taxonhq/taxon/internal/testutil"
)

func fixtureTree() map[string]string {
	return map[string]string{
		"version.json": `{"version": "1.2.3"}`,
		"categories.json": `{
			"attributes": {"system": {"uid": 1, "caption": "System Activity"}}
		}`,
		"dictionary.json": `{
			"attributes": {
				"severity": {"caption": "Severity", "type": "string_t"},
				"hostname": {"caption": "Hostname", "type": "string_t"}
			}
		}`,
		"events/base_event.json": `{
			"type": "base_event",
			"attributes": {"severity": {"requirement": "recommended"}}
		}`,
		"events/file_activity.json": `{
			"type": "file_activity",
			"uid": 7,
			"category": "system",
			"extends": "base_event",
			"attributes": {}
		}`,
		"objects/device.json": `{
			"type": "device",
			"attributes": {"hostname": {"requirement": "recommended"}}
		}`,
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCompileCommandText(t *testing.T) {
	root := testutil.WriteTree(t, fixtureTree())

	out, err := execute(t, "compile", root)
	require.NoError(t, err)

	assert.Contains(t, out, "schema 1.2.3")
	assert.Contains(t, out, "1 classes")
	assert.Contains(t, out, "1 objects")
}

func TestCompileCommandJSON(t *testing.T) {
	root := testutil.WriteTree(t, fixtureTree())

	out, err := execute(t, "--format", "json", "compile", root)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1.2.3", data["version"])
	assert.Equal(t, float64(1), data["classes"])
}

func TestCompileCommandWritesSnapshot(t *testing.T) {
	root := testutil.WriteTree(t, fixtureTree())
	dbPath := filepath.Join(t.TempDir(), "taxon.db")

	out, err := execute(t, "compile", root, "--snapshot", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "snapshot build")

	snap, err := snapshot.Open(dbPath)
	require.NoError(t, err)
	defer snap.Close()

	m, err := snap.Read()
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", m.Version)
	assert.Contains(t, m.Classes, "file_activity")
}

func TestCompileCommandFailure(t *testing.T) {
	out, err := execute(t, "compile", "/nonexistent/schema/root")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error:")
}

func TestCompileCommandFailureJSON(t *testing.T) {
	_, err := execute(t, "--format", "json", "compile", "/nonexistent/schema/root")
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitFailure, exitErr.Code)
}

func TestValidateCommandValidTree(t *testing.T) {
	root := testutil.WriteTree(t, fixtureTree())

	out, err := execute(t, "validate", root)
	require.NoError(t, err)
	assert.Contains(t, out, "valid")
}

func TestValidateCommandFailsFast(t *testing.T) {
	files := fixtureTree()
	files["events/broken.json"] = `{"type": "broken", `
	files["events/untyped.json"] = `{"caption": "No Type"}`
	root := testutil.WriteTree(t, files)

	out, err := execute(t, "validate", root)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "1 problem(s) found")
}

func TestValidateCommandCollectAll(t *testing.T) {
	files := fixtureTree()
	files["events/broken.json"] = `{"type": "broken", `
	files["events/untyped.json"] = `{"caption": "No Type"}`
	root := testutil.WriteTree(t, files)

	out, err := execute(t, "validate", root, "--collect-all")
	require.Error(t, err)
	assert.Contains(t, out, "2 problem(s) found")
}

func TestValidateTreeCollectsGraphErrors(t *testing.T) {
	files := fixtureTree()
	files["events/orphan.json"] = `{"type": "orphan", "uid": 9, "category": "system", "extends": "ghost", "attributes": {}}`
	root := testutil.WriteTree(t, files)

	errs := ValidateTree(root, "extensions", true)
	require.Len(t, errs, 1, "graph resolution runs once all files decode")
	assert.Contains(t, errs[0].Error(), "ghost")
}

func TestInvalidFormatRejected(t *testing.T) {
	root := testutil.WriteTree(t, fixtureTree())

	_, err := execute(t, "--format", "yaml", "compile", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "boom", nil)))
}

func TestOutputFormatterText(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, f.Success("all good"))
	assert.Equal(t, "all good\n", buf.String())

	buf.Reset()
	require.NoError(t, f.Error("bad tree", []string{"detail one", "detail two"}))
	assert.Contains(t, buf.String(), "Error: bad tree")
	assert.Contains(t, buf.String(), "detail one")
}

func TestOutputFormatterJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Error("bad tree", []string{"detail"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "bad tree", resp.Error.Message)
	assert.Equal(t, []string{"detail"}, resp.Error.Details)
}
