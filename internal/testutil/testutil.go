package testutil

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// schema mirrors the Postgres migrations in sqlite dialect so store-backed
// tests run against an in-memory database.
const schema = `
CREATE TABLE users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE contacts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    email TEXT NOT NULL
);
`

// OpenInMemoryDB opens an in-memory SQLite database with the application
// schema applied. Closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	// Shared cache so multiple connections from the pool see the same DB.
	d, err := sql.Open("sqlite3", "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	if err := d.Ping(); err != nil {
		t.Fatalf("ping test db: %v", err)
	}
	if _, err := d.Exec(schema); err != nil {
		t.Fatalf("apply test schema: %v", err)
	}
	return d
}
