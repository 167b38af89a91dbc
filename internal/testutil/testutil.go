// Package testutil provides shared test helpers for setting up document
// stores and databases.
package testutil

import (
	"os"
	"testing"

	"github.com/mbreeze/inkwell/internal/docstore"
	"github.com/mbreeze/inkwell/internal/index"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "inkwell-test-*.db")
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

// TestStore creates a temporary data directory with a record store.
func TestStore(t *testing.T) (string, *docstore.Store) {
	t.Helper()
	dataDir := t.TempDir()
	p, err := docstore.NewFS(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	return dataDir, docstore.NewStore(p)
}
