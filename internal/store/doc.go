// Package store provides SQLite-backed storage for todos.
//
// A Store owns exactly one database handle. The handle is not created by New;
// it is opened lazily by the first operation (or an explicit Open) and reused
// until Close. Opening an open store is a no-op.
//
// # Schema
//
//	todo(id INTEGER PRIMARY KEY AUTOINCREMENT, text TEXT, active BOOLEAN)
//
// The table is created with CREATE TABLE IF NOT EXISTS whenever a handle is
// opened, so opening is idempotent against an existing database file.
//
// # Not found
//
// UpdateTodo and DeleteTodo detect a missing id by the affected-row count the
// engine reports for the statement. Zero rows affected is the only signal; it
// is returned as an apperr not_found error.
//
// # Drivers
//
//   - sqlite3: github.com/mattn/go-sqlite3 (cgo, default)
//   - sqlite:  modernc.org/sqlite (pure Go)
//
// # Database Configuration
//
//   - WAL mode for file databases
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - a single pooled connection, so ":memory:" databases survive between calls
package store
