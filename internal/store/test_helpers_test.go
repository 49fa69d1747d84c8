package store

import (
	"path/filepath"
	"testing"

	"envgate/internal/envdef"
)

// newTestStore opens a store on a throwaway database.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testDefinition builds a definition from a raw JSON payload.
func testDefinition(t *testing.T, rawPayload string) envdef.Definition {
	t.Helper()
	p, err := envdef.ParsePayload([]byte(rawPayload))
	if err != nil {
		t.Fatalf("ParsePayload() failed: %v", err)
	}
	def, err := envdef.New(p)
	if err != nil {
		t.Fatalf("envdef.New() failed: %v", err)
	}
	return def
}
