package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/roach88/todos/internal/logger"
)

// RequestIDHeader carries the correlation id on requests and responses.
const RequestIDHeader = "X-Request-Id"

// maxBodyBytes bounds how much of a request body is read.
const maxBodyBytes = 100 << 10

// Middleware wraps an HTTP handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middleware in declaration order: the first middleware sees
// the request first.
func Chain(handler http.Handler, middleware ...Middleware) http.Handler {
	if handler == nil {
		handler = http.NotFoundHandler()
	}
	wrapped := handler
	for idx := len(middleware) - 1; idx >= 0; idx-- {
		if middleware[idx] == nil {
			continue
		}
		wrapped = middleware[idx](wrapped)
	}
	return wrapped
}

type requestIDKey struct{}

// RequestIDFromContext returns the correlation id assigned to the request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestID assigns a correlation id to every request. An incoming
// X-Request-Id header is kept; otherwise gen supplies one. The id is echoed
// in the response header and never in the body.
func RequestID(gen IDGenerator) Middleware {
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
			if id == "" {
				id = gen.Generate()
				r.Header.Set(RequestIDHeader, id)
			}
			w.Header().Set(RequestIDHeader, id)
			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CORS allows any origin. OPTIONS requests are answered as preflights with
// 204 and never reach the rest of the chain.
func CORS() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			h.Set("Access-Control-Allow-Methods", "GET,HEAD,PUT,PATCH,POST,DELETE")
			if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
				h.Set("Access-Control-Allow-Headers", reqHeaders)
				h.Add("Vary", "Access-Control-Request-Headers")
			}
			h.Set("Content-Length", "0")
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

// RequestLogger attaches a logger tagged with the request's correlation id
// to the request context and logs the method, URL and body.
//
// The body is buffered so handlers can still read it.
func RequestLogger(base *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := base.With(RequestIDFromContext(r.Context()))

			body, readErr := readBody(w, r)
			if readErr != nil {
				r.Body = io.NopCloser(errReader{readErr})
			} else {
				r.Body = io.NopCloser(bytes.NewReader(body))
			}

			log.Log(fmt.Sprintf("%s %s body=%s", r.Method, r.URL.RequestURI(), formatBody(body, readErr)))

			ctx := logger.WithContext(r.Context(), log)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RecoverPanic converts panics into the 500 envelope.
func RecoverPanic() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := &trackingWriter{ResponseWriter: w}
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}
				log := logger.FromContext(r.Context())
				log.Error(fmt.Sprintf("panic recovered: %v", recovered), strings.TrimSpace(string(debug.Stack())))
				if tw.wroteHeader {
					return
				}
				send(tw, r, http.StatusInternalServerError, errorResponse{
					Code:  http.StatusInternalServerError,
					Error: fmt.Sprint(recovered),
				})
			}()
			next.ServeHTTP(tw, r)
		})
	}
}

// trackingWriter records whether a response has started.
type trackingWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *trackingWriter) WriteHeader(status int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *trackingWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *trackingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	defer r.Body.Close()
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

// formatBody renders a request body for the request log line: compact JSON
// when possible, {} when empty, quoted otherwise.
func formatBody(body []byte, readErr error) string {
	if readErr != nil {
		return strconv.Quote("<unreadable: " + readErr.Error() + ">")
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return strconv.Quote(string(trimmed))
	}
	return buf.String()
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
