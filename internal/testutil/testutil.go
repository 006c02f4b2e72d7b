// Package testutil provides shared test helpers for setting up content trees.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/folio/internal/storage"
)

// ModTime is the modification time stamped on every file written by
// ContentTree, so document timestamps are predictable.
var ModTime = time.Date(2024, time.March, 5, 14, 7, 0, 0, time.Local)

// ContentTree creates a temporary content directory from files, keyed by
// slash-separated relative path. A key ending in "/" creates an empty
// directory.
func ContentTree(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if rel[len(rel)-1] == '/' {
			if err := os.MkdirAll(p, 0o755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(p, ModTime, ModTime); err != nil {
			t.Fatal(err)
		}
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}
