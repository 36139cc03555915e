// Package testutil provides small deterministic helpers for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteTree materializes a descriptor tree in a fresh temp directory:
// keys are slash-separated paths relative to the root, values are file
// contents. Returns the root path.
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}
