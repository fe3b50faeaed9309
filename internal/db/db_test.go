package db

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestRunMigrations(t *testing.T) {
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	defer conn.Close()

	if err := RunMigrations(conn); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	tables := []string{"tracking_runs", "run_logs", "results", "subscriptions", "users", "sessions"}
	for _, table := range tables {
		var name string
		err := conn.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("expected table %q to exist after migrations: %v", table, err)
		}
	}

	// Running migrations a second time must be a no-op.
	if err := RunMigrations(conn); err != nil {
		t.Fatalf("RunMigrations was not idempotent: %v", err)
	}
}
