// Package testutil provides helpers for building Python source trees in tests.
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// WriteTree creates files under root, failing the test on error. Keys are
// slash-separated relative paths; a key ending in "/" creates an empty
// directory. Returns root.
func WriteTree(t *testing.T, root string, files map[string]string) string {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			if err := os.MkdirAll(path, 0o755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", path, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(files[name]), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}

	return root
}

// PythonTree creates empty files in a fresh temp directory and returns it.
func PythonTree(t *testing.T, paths ...string) string {
	t.Helper()

	files := make(map[string]string, len(paths))
	for _, p := range paths {
		files[p] = ""
	}
	return WriteTree(t, t.TempDir(), files)
}
