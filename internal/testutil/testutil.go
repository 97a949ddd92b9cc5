// Package testutil provides shared test helpers for setting up corpora,
// asset stores, and cache databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hallgrim/notelint/internal/cache"
	"github.com/hallgrim/notelint/internal/storage"
)

// TestCorpus creates a temporary corpus directory with a storage provider.
func TestCorpus(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteNote writes a note file under root, creating parent directories.
func WriteNote(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// WriteAsset writes an asset file under dir, creating parent directories.
func WriteAsset(t *testing.T, dir, rel string) {
	t.Helper()
	abs := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte{0x89, 'P', 'N', 'G'}, 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestCache creates a temporary SQLite cache that is automatically cleaned up.
func TestCache(t *testing.T) *cache.DB {
	t.Helper()
	f, err := os.CreateTemp("", "notelint-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := cache.Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// SessionNote returns a minimal well-formed session note with the given
// title and extra body appended after the first heading.
func SessionNote(title, body string) string {
	return "---\ntitle: " + title + "\nkind: session\nyear: 2023\nsession: 101\n---\n# " + title + "\n" + body
}
