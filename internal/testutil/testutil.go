// Package testutil provides shared test helpers for services backed by temp files.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/starford/jera/internal/noteservice"
	"github.com/starford/jera/internal/notestore"
	"github.com/starford/jera/internal/storage"
)

// TestFile returns a JSON provider for a file inside a fresh temp directory.
func TestFile(t *testing.T) *storage.JSONFile {
	t.Helper()
	return storage.NewJSONFile(filepath.Join(t.TempDir(), "notes.json"))
}

// TestService creates an empty service persisting to a temp JSON file.
func TestService(t *testing.T, opts ...noteservice.Option) (*noteservice.Service, *storage.JSONFile) {
	t.Helper()
	file := TestFile(t)
	return noteservice.NewService(notestore.New(nil), file, opts...), file
}
