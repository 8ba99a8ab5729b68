// Package testutil provides shared test helpers: in-memory databases and
// deterministic stand-ins for the embedding and generation services.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/creditrag/internal/storage"
)

// SetupTestDB creates a migrated in-memory SQLite storage that is closed
// when the test finishes.
//
// Example:
//
//	store := testutil.SetupTestDB(t)
//	idx := regindex.NewIndex(testutil.NewFakeEmbedder(64), store, opts, nil)
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}
