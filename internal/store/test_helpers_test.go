package store

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/todos/internal/logger"
)

// drivers lists every driver the store tests run against.
var drivers = []string{DriverMattn, DriverModernc}

// createTestStore creates a file-backed store in a temp dir.
// The store is not opened; the first operation opens it.
func createTestStore(t *testing.T, driver string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todos.db")
	s := New(Config{Path: path, Driver: driver})
	t.Cleanup(func() { s.Close(nil) })
	return s
}

// newTestLogger returns a logger whose output is captured in the returned buffer.
func newTestLogger() (*logger.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return logger.New("test", logger.WithOutput(buf, buf)), buf
}

// forEachDriver runs fn as a subtest once per driver.
func forEachDriver(t *testing.T, fn func(t *testing.T, driver string)) {
	t.Helper()
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			fn(t, driver)
		})
	}
}

// mustAdd inserts a todo or fails the test.
func mustAdd(t *testing.T, s *Store, text string, active bool) Todo {
	t.Helper()
	todo, err := s.AddTodo(context.Background(), nil, NewTodo{Text: text, Active: active})
	if err != nil {
		t.Fatalf("AddTodo(%q) failed: %v", text, err)
	}
	return todo
}
