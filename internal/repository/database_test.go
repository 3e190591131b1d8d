package repository

import (
	"context"
	"path/filepath"
	"testing"
)

func TestNewDatabaseMigratesAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "test.db")

	db, err := NewDatabase(path)
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	if db.SafeMode {
		t.Fatalf("unexpected safe mode: %s", db.MigrationError)
	}
	if db.SchemaVersion != latestSchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", db.SchemaVersion, latestSchemaVersion)
	}

	// usable right away
	tasks := NewTaskRepository(db.DB)
	if _, err := tasks.FindOrCreate(context.Background(), "Tile Frenzy"); err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// reopening keeps the version and the data
	db2, err := NewDatabase(path)
	if err != nil {
		t.Fatalf("NewDatabase reopen: %v", err)
	}
	defer db2.Close()
	if db2.SafeMode || db2.SchemaVersion != latestSchemaVersion {
		t.Fatalf("reopen: safeMode=%v version=%d", db2.SafeMode, db2.SchemaVersion)
	}

	task, err := NewTaskRepository(db2.DB).GetByName(context.Background(), "Tile Frenzy")
	if err != nil || task == nil {
		t.Fatalf("data lost across reopen: err=%v task=%v", err, task)
	}
}
