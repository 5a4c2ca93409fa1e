// Package db tests for database connection management.
package db

import (
	"os"
	"path/filepath"
	"testing"
)

// openTestDB opens a migrated database in a temporary directory.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	return db
}

// TestOpen verifies database opening with proper configuration.
func TestOpen(t *testing.T) {
	tmpDir := t.TempDir()

	db, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer db.Close()

	// Verify database file was created
	dbPath := filepath.Join(tmpDir, FileName)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}

	var result int
	if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
		t.Errorf("Database query failed: %v", err)
	}
	if result != 1 {
		t.Errorf("Expected 1, got %d", result)
	}

	var walMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&walMode); err != nil {
		t.Errorf("Failed to check WAL mode: %v", err)
	}
	if walMode != "wal" {
		t.Errorf("WAL mode not enabled, got: %s", walMode)
	}

	var busyTimeout int
	if err := db.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout); err != nil {
		t.Errorf("Failed to check busy timeout: %v", err)
	}
	if busyTimeout != 5000 {
		t.Errorf("busy_timeout = %d, want 5000", busyTimeout)
	}
}

// TestOpen_nestedDataDir verifies missing parent directories are created.
func TestOpen_nestedDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
		t.Errorf("Database file not created in nested dir: %v", err)
	}
}

// TestOpen_invalidDataDir verifies error when data directory cannot be created.
func TestOpen_invalidDataDir(t *testing.T) {
	invalidPath := "/dev/null/invalid_path/that/cannot/be/created"

	if _, err := Open(invalidPath); err == nil {
		t.Error("Open() with invalid path should return error")
	}
}

// TestMigrate_createsArticlesTable verifies the schema is in place after Migrate.
func TestMigrate_createsArticlesTable(t *testing.T) {
	db := openTestDB(t)

	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='articles'").Scan(&name)
	if err != nil {
		t.Fatalf("articles table not found: %v", err)
	}

	// Running again must be a no-op.
	if err := db.Migrate(); err != nil {
		t.Errorf("second Migrate() failed: %v", err)
	}
}

// TestMigrate_persistsAcrossReopen verifies rows survive closing the database.
func TestMigrate_persistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO articles (title, content, created_at, updated_at) VALUES ('t', 'c', 1, 1)`); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	db.Close()

	db, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() after reopen failed: %v", err)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&n); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}
