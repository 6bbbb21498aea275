package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/roach88/todos/internal/apperr"
	"github.com/roach88/todos/internal/logger"
)

//go:embed schema.sql
var schemaSQL string

// Driver names registered with database/sql.
const (
	DriverMattn   = "sqlite3" // github.com/mattn/go-sqlite3
	DriverModernc = "sqlite"  // modernc.org/sqlite
)

// MemoryPath opens an ephemeral in-memory database.
const MemoryPath = ":memory:"

// Config locates the backing database.
type Config struct {
	// Path is a file path or MemoryPath.
	Path string

	// Driver is DriverMattn or DriverModernc. Empty means DriverMattn.
	Driver string
}

// Store provides durable storage for todos.
type Store struct {
	cfg Config

	// mu guards creation and release of db only. Statements run without it;
	// SQLite serializes conflicting writes itself.
	mu sync.Mutex
	db *sql.DB
}

// New creates a Store for cfg. No connection is made until the first
// operation or an explicit Open.
func New(cfg Config) *Store {
	if cfg.Path == "" {
		cfg.Path = MemoryPath
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverMattn
	}
	return &Store{cfg: cfg}
}

// Path returns the configured database location.
func (s *Store) Path() string {
	return s.cfg.Path
}

// Open creates the database handle and ensures the todo table exists.
// If a handle is already open, Open does nothing.
func (s *Store) Open(ctx context.Context, log *logger.Logger) error {
	_, err := s.handle(ctx, log)
	return err
}

// Close releases the database handle. Later operations re-open it.
// Closing a closed store is a no-op.
func (s *Store) Close(log *logger.Logger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	log.Log("Closing sqlite database:", s.cfg.Path)
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return apperr.Store("close database", err)
	}
	return nil
}

// handle returns the open database, opening it first if needed.
func (s *Store) handle(ctx context.Context, log *logger.Logger) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	log.Log("Opening sqlite database:", s.cfg.Path)
	db, err := openDB(ctx, s.cfg)
	if err != nil {
		return nil, err
	}
	s.db = db
	return db, nil
}

func openDB(ctx context.Context, cfg Config) (*sql.DB, error) {
	switch cfg.Driver {
	case DriverMattn, DriverModernc:
	default:
		return nil, apperr.Store("open database", fmt.Errorf("unknown driver %q", cfg.Driver))
	}

	db, err := sql.Open(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, apperr.Store("open database", err)
	}

	// SQLite only supports one writer at a time, and every connection to
	// ":memory:" is a separate database, so keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperr.Store("connect to database", err)
	}

	if err := applyPragmas(ctx, db, cfg.Path); err != nil {
		db.Close()
		return nil, apperr.Store("apply pragmas", err)
	}

	if err := applySchema(ctx, db); err != nil {
		db.Close()
		return nil, apperr.Store("apply schema", err)
	}

	return db, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB, path string) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
	}
	if path != MemoryPath {
		pragmas = append(pragmas,
			"PRAGMA journal_mode = WAL",
			"PRAGMA synchronous = NORMAL",
		)
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates the todo table if it doesn't exist.
func applySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// isOpen reports whether a handle is currently held. Used for testing.
func (s *Store) isOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db != nil
}
