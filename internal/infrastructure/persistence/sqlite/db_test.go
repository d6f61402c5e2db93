package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// newTestDB opens a migrated in-memory database closed at test end.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migration: %v", err)
	}
	return db
}

func TestNewDB_InMemory(t *testing.T) {
	db, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create in-memory database: %v", err)
	}
	defer db.Close()

	if db.Path() != ":memory:" {
		t.Errorf("expected path :memory:, got %s", db.Path())
	}
}

func TestNewDB_FileCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	db, err := NewDB(dbPath)
	if err != nil {
		t.Fatalf("failed to create file database: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestDB_Migrate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tables := []string{"schema_version", "sessions", "session_events", "processed_events"}
	for _, table := range tables {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s was not created: %v", table, err)
		}
	}

	var version int
	if err := db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		t.Fatalf("failed to query schema version: %v", err)
	}
	if version != 1 {
		t.Errorf("expected schema version 1, got %d", version)
	}
}

func TestDB_MigrateIdempotent(t *testing.T) {
	db := newTestDB(t)

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestDB_Ping(t *testing.T) {
	db := newTestDB(t)

	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("ping failed: %v", err)
	}
}
