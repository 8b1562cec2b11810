// Package testutil holds helpers shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/onnwee/slot-tender/slots"
)

// NewFileStore returns a store backed by a document in a per-test temp dir,
// along with the document path.
func NewFileStore(t *testing.T) (*slots.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "states.json")
	return slots.NewStore(slots.NewFileBackend(path)), path
}

// WriteDocument replaces the document at path with raw content, bypassing the store.
func WriteDocument(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write document: %v", err)
	}
}
