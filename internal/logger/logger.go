// Package logger provides the correlation-tagged line logger used on the
// request path.
//
// Every line has the form
//
//	2024-05-01T12:00:00.000Z [<id>] <values...>
//
// where id is the request's correlation id, or DefaultID outside a request.
// Log writes to the informational channel and Error to the error channel.
// Each call is a single write so lines from concurrent requests never
// interleave within a line.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// DefaultID tags lines that are not tied to a request.
const DefaultID = "main"

// timeFormat is ISO-8601 in UTC with millisecond precision.
const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// Logger writes timestamped, correlation-tagged lines.
// A nil *Logger discards everything.
type Logger struct {
	id  string
	out *lineWriter
	err *lineWriter
	now func() time.Time
}

// Option configures a Logger.
type Option func(*Logger)

// WithOutput sets the informational and error channels.
func WithOutput(out, errOut io.Writer) Option {
	return func(l *Logger) {
		l.out = newLineWriter(out)
		l.err = newLineWriter(errOut)
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		l.now = now
	}
}

// New creates a logger tagged with id. An empty id means DefaultID.
// Without WithOutput, lines go to os.Stdout and os.Stderr.
func New(id string, opts ...Option) *Logger {
	if id == "" {
		id = DefaultID
	}
	l := &Logger{
		id:  id,
		out: newLineWriter(os.Stdout),
		err: newLineWriter(os.Stderr),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// With returns a logger tagged with id that shares l's channels and clock.
func (l *Logger) With(id string) *Logger {
	if l == nil {
		return New(id)
	}
	if id == "" {
		id = DefaultID
	}
	return &Logger{id: id, out: l.out, err: l.err, now: l.now}
}

// ID returns the correlation id this logger tags lines with.
func (l *Logger) ID() string {
	if l == nil {
		return DefaultID
	}
	return l.id
}

// Log writes one line to the informational channel.
func (l *Logger) Log(args ...any) {
	if l == nil {
		return
	}
	l.output(l.out, args)
}

// Error writes one line to the error channel.
func (l *Logger) Error(args ...any) {
	if l == nil {
		return
	}
	l.output(l.err, args)
}

func (l *Logger) output(w *lineWriter, args []any) {
	var b strings.Builder
	b.WriteString(l.now().UTC().Format(timeFormat))
	b.WriteString(" [")
	b.WriteString(l.id)
	b.WriteString("]")
	for _, arg := range args {
		b.WriteByte(' ')
		fmt.Fprint(&b, arg)
	}
	b.WriteByte('\n')
	w.writeLine(b.String())
}

// lineWriter serializes whole-line writes to a shared writer.
type lineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newLineWriter(w io.Writer) *lineWriter {
	if w == nil {
		w = io.Discard
	}
	return &lineWriter{w: w}
}

func (lw *lineWriter) writeLine(line string) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	// Write errors are dropped; logging must never fail the caller.
	_, _ = io.WriteString(lw.w, line)
}

type ctxKey struct{}

// WithContext returns a copy of ctx carrying l.
func WithContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or a DefaultID logger.
func FromContext(ctx context.Context) *Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*Logger); ok && l != nil {
			return l
		}
	}
	return New(DefaultID)
}
