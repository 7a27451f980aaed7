// Package testutil provides shared test helpers for notes directories and databases.
package testutil

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/starford/tilog/internal/index"
	"github.com/starford/tilog/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "tilog-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestNotes creates a temporary notes directory with a storage.Provider.
func TestNotes(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteNote writes content to dir/name.
func WriteNote(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// Note returns a minimal valid note document.
func Note(title string, tags ...string) string {
	s := "---\ntitle: " + title + "\n"
	if len(tags) > 0 {
		s += "tags:\n"
		for _, tag := range tags {
			s += "  - " + tag + "\n"
		}
	}
	return s + "---\nBody of " + title + "\n"
}

// CountingProvider wraps a Provider and counts directory listings.
type CountingProvider struct {
	storage.Provider
	lists atomic.Int64
}

// NewCountingProvider wraps p.
func NewCountingProvider(p storage.Provider) *CountingProvider {
	return &CountingProvider{Provider: p}
}

// List counts and delegates.
func (c *CountingProvider) List() ([]string, error) {
	c.lists.Add(1)
	return c.Provider.List()
}

// Lists returns how many times List was called.
func (c *CountingProvider) Lists() int {
	return int(c.lists.Load())
}
