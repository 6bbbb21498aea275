package store

import (
	"context"

	"github.com/roach88/todos/internal/apperr"
	"github.com/roach88/todos/internal/logger"
)

// AddTodo inserts a todo and returns it with its generated id.
func (s *Store) AddTodo(ctx context.Context, log *logger.Logger, todo NewTodo) (Todo, error) {
	db, err := s.handle(ctx, log)
	if err != nil {
		return Todo{}, err
	}

	res, err := db.ExecContext(ctx, `INSERT INTO todo (text, active) VALUES (?, ?)`, todo.Text, todo.Active)
	if err != nil {
		return Todo{}, apperr.Store("insert todo", err)
	}

	// The id comes from the statement result, not a second
	// last_insert_rowid() query, so concurrent inserts cannot swap ids.
	id, err := res.LastInsertId()
	if err != nil {
		return Todo{}, apperr.Store("read inserted id", err)
	}

	return Todo{ID: id, Text: todo.Text, Active: todo.Active}, nil
}

// UpdateTodo overwrites text and active of the todo with todo.ID.
// Returns the number of affected rows, which is 1 on success.
// Returns an apperr not_found error if no row has that id.
func (s *Store) UpdateTodo(ctx context.Context, log *logger.Logger, todo Todo) (int64, error) {
	db, err := s.handle(ctx, log)
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx, `UPDATE todo SET text = ?, active = ? WHERE id = ?`, todo.Text, todo.Active, todo.ID)
	if err != nil {
		return 0, apperr.Store("update todo", err)
	}

	updated, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Store("read affected rows", err)
	}
	if updated == 0 {
		return 0, apperr.NotFound("Failed to update todo with id=%d", todo.ID)
	}

	return updated, nil
}

// DeleteTodo removes the todo with the given id.
// Returns the number of affected rows, which is 1 on success.
// Returns an apperr not_found error if no row has that id.
func (s *Store) DeleteTodo(ctx context.Context, log *logger.Logger, id int64) (int64, error) {
	db, err := s.handle(ctx, log)
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx, `DELETE FROM todo WHERE id = ?`, id)
	if err != nil {
		return 0, apperr.Store("delete todo", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Store("read affected rows", err)
	}
	if deleted == 0 {
		return 0, apperr.NotFound("Failed to delete todo with id=%d", id)
	}

	return deleted, nil
}
