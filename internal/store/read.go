package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/todos/internal/apperr"
	"github.com/roach88/todos/internal/logger"
)

// GetTodos returns all todos in natural row order.
//
// Returns an empty slice (not nil) if the table is empty.
func (s *Store) GetTodos(ctx context.Context, log *logger.Logger) ([]Todo, error) {
	db, err := s.handle(ctx, log)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT id, text, active FROM todo`)
	if err != nil {
		return nil, apperr.Store("query todos", err)
	}
	defer rows.Close()

	todos := []Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, apperr.Store("scan todo", err)
		}
		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Store("iterate todos", err)
	}

	return todos, nil
}

func scanTodo(rows *sql.Rows) (Todo, error) {
	var (
		todo   Todo
		active any
	)
	if err := rows.Scan(&todo.ID, &todo.Text, &active); err != nil {
		return Todo{}, err
	}

	var err error
	todo.Active, err = normalizeActive(active)
	if err != nil {
		return Todo{}, fmt.Errorf("todo %d: %w", todo.ID, err)
	}
	return todo, nil
}
