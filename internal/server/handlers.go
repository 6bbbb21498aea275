package server

import (
	"context"
	"io"
	"net/http"

	"github.com/roach88/todos/internal/apperr"
	"github.com/roach88/todos/internal/logger"
	"github.com/roach88/todos/internal/schema"
	"github.com/roach88/todos/internal/store"
)

// handlerFunc is a route handler. It sends its own success response and
// returns any failure to the error stages.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts a route handler, running the error stages on failure.
func (s *Server) handle(h handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.handleError(w, r, err)
		}
	})
}

// handleError runs the validation stage, then the catch-all stage.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if verr, ok := apperr.AsValidation(err); ok {
		send(w, r, http.StatusBadRequest, errorResponse{
			Code:     http.StatusBadRequest,
			Location: string(verr.Location),
			Error:    verr.Message,
		})
		return
	}

	// Not-found store errors deliberately share the generic 500 path.
	logger.FromContext(r.Context()).Error(err)
	send(w, r, http.StatusInternalServerError, errorResponse{
		Code:  http.StatusInternalServerError,
		Error: err.Error(),
	})
}

// storeContext detaches store calls from request cancellation: a dispatched
// operation runs to completion even if the client goes away.
func storeContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) error {
	send(w, r, http.StatusOK, resourcesResponse{Resources: []string{"/todos"}})
	return nil
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) error {
	log := logger.FromContext(r.Context())

	todos, err := s.store.GetTodos(storeContext(r), log)
	if err != nil {
		return err
	}
	if todos == nil {
		todos = []store.Todo{}
	}

	send(w, r, http.StatusOK, todosResponse{Todos: todos})
	return nil
}

func (s *Server) handleAddTodo(w http.ResponseWriter, r *http.Request) error {
	log := logger.FromContext(r.Context())

	body, err := s.readTodoBody(r)
	if err != nil {
		return err
	}

	todo, err := s.store.AddTodo(storeContext(r), log, store.NewTodo{
		Text:   body.Text,
		Active: body.Active,
	})
	if err != nil {
		return err
	}

	send(w, r, http.StatusOK, todoResponse{Todo: todo})
	return nil
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) error {
	log := logger.FromContext(r.Context())

	body, err := s.readTodoBody(r)
	if err != nil {
		return err
	}
	id, err := s.validator.TodoID(r.PathValue("id"))
	if err != nil {
		return err
	}

	updated, err := s.store.UpdateTodo(storeContext(r), log, store.Todo{
		ID:     id,
		Text:   body.Text,
		Active: body.Active,
	})
	if err != nil {
		return err
	}

	send(w, r, http.StatusOK, updatedResponse{ID: id, Updated: updated})
	return nil
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) error {
	log := logger.FromContext(r.Context())

	id, err := s.validator.TodoID(r.PathValue("id"))
	if err != nil {
		return err
	}

	deleted, err := s.store.DeleteTodo(storeContext(r), log, id)
	if err != nil {
		return err
	}

	send(w, r, http.StatusOK, deletedResponse{ID: id, Deleted: deleted})
	return nil
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	send(w, r, http.StatusNotFound, errorResponse{
		Code:  http.StatusNotFound,
		Error: "Not found",
	})
}

// readTodoBody reads the request body and validates it against #Todo.
func (s *Server) readTodoBody(r *http.Request) (schema.TodoBody, error) {
	var raw []byte
	if r.Body != nil {
		var err error
		raw, err = io.ReadAll(r.Body)
		if err != nil {
			return schema.TodoBody{}, apperr.Validation(apperr.LocationBody, err.Error())
		}
	}
	return s.validator.Todo(raw)
}
