// Package server implements the HTTP request pipeline for the todo service.
//
// Every request passes through the same ordered chain:
//
//	RequestID → CORS → RequestLogger → RecoverPanic → route
//
// A route handler validates its input, calls the store and returns either a
// success envelope or an error. Errors go through two stages: validation
// errors become 400 with their location; everything else is logged on the
// request logger and becomes 500. Unmatched routes get the 404 envelope.
// Exactly one response is sent per request and it is logged before it is
// written.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/roach88/todos/internal/logger"
	"github.com/roach88/todos/internal/schema"
	"github.com/roach88/todos/internal/store"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 5 * time.Second

// TodoStore is the persistence the pipeline dispatches to.
type TodoStore interface {
	AddTodo(ctx context.Context, log *logger.Logger, todo store.NewTodo) (store.Todo, error)
	UpdateTodo(ctx context.Context, log *logger.Logger, todo store.Todo) (int64, error)
	DeleteTodo(ctx context.Context, log *logger.Logger, id int64) (int64, error)
	GetTodos(ctx context.Context, log *logger.Logger) ([]store.Todo, error)
}

// Config wires a Server.
type Config struct {
	// Store is required.
	Store TodoStore

	// Validator defaults to schema.MustNew().
	Validator *schema.Validator

	// Logger is the base logger request loggers derive from.
	// Defaults to logger.New(logger.DefaultID).
	Logger *logger.Logger

	// IDs generates correlation ids. Defaults to UUIDv7Generator.
	IDs IDGenerator
}

// Server is the HTTP front of the todo store.
type Server struct {
	store     TodoStore
	validator *schema.Validator
	log       *logger.Logger
	ids       IDGenerator
	handler   http.Handler
}

// New creates a Server.
func New(cfg Config) *Server {
	if cfg.Validator == nil {
		cfg.Validator = schema.MustNew()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.New(logger.DefaultID)
	}
	if cfg.IDs == nil {
		cfg.IDs = UUIDv7Generator{}
	}

	s := &Server{
		store:     cfg.Store,
		validator: cfg.Validator,
		log:       cfg.Logger,
		ids:       cfg.IDs,
	}
	s.handler = Chain(s.routes(),
		RequestID(s.ids),
		CORS(),
		RequestLogger(s.log),
		RecoverPanic(),
	)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /{$}", s.handle(s.handleIndex))
	mux.Handle("GET /todos", s.handle(s.handleListTodos))
	mux.Handle("POST /todos", s.handle(s.handleAddTodo))
	mux.Handle("PUT /todos/{id}", s.handle(s.handleUpdateTodo))
	mux.Handle("DELETE /todos/{id}", s.handle(s.handleDeleteTodo))
	// "/" matches every method and path, so unmatched methods on known
	// paths land here too instead of producing a 405.
	mux.Handle("/", http.HandlerFunc(s.handleNotFound))
	return mux
}
