package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/boutinf/internal/ir"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedStore creates a store holding msgs.
func seedStore(t *testing.T, msgs []ir.Message) *Store {
	t.Helper()
	s := createTestStore(t)
	if err := s.AddMessages(context.Background(), msgs); err != nil {
		t.Fatalf("AddMessages() failed: %v", err)
	}
	return s
}
