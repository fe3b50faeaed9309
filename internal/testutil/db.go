// Package testutil provides helpers for setting up tests.
package testutil

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/spectrack/spectrack-go/internal/db"
)

// SetupTestDB creates an in-memory SQLite database with the full schema
// applied. The connection is closed automatically when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	// An in-memory database exists per connection; more than one would see
	// an empty schema.
	conn.SetMaxOpenConns(1)

	if err := db.RunMigrations(conn); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}
