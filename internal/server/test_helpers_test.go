package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todos/internal/logger"
	"github.com/roach88/todos/internal/store"
	"github.com/roach88/todos/internal/testutil"
)

// testTime is the fixed clock used for all request log lines.
var testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

const testStamp = "2024-05-01T12:00:00.000Z"

type testEnv struct {
	srv    *Server
	store  *store.Store
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

// newTestEnv builds a server over a fresh in-memory store.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.New(store.Config{Path: store.MemoryPath})
	t.Cleanup(func() { st.Close(nil) })
	return newTestEnvWithStore(t, st, st)
}

func newTestEnvWithStore(t *testing.T, ts TodoStore, st *store.Store) *testEnv {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	log := logger.New("", logger.WithOutput(out, errOut), logger.WithClock(testutil.NewClock(testTime, 0).Now))
	srv := New(Config{Store: ts, Logger: log, IDs: testutil.NewSequentialIDs("req")})
	return &testEnv{srv: srv, store: st, out: out, errOut: errOut}
}

// do sends one request through the full pipeline.
func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.srv.ServeHTTP(rr, req)
	return rr
}

// outLines returns the informational log lines.
func (e *testEnv) outLines() []string {
	return splitLines(e.out.String())
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// assertGolden compares a response body with testdata/golden/<name>.golden.
func assertGolden(t *testing.T, name string, body []byte) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, body)
}

// requireStatus fails the test if rr has a different status.
func requireStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rr.Code, "body: %s", rr.Body.String())
}

// fakeStore lets tests inject store behaviour.
type fakeStore struct {
	add    func(store.NewTodo) (store.Todo, error)
	update func(store.Todo) (int64, error)
	del    func(int64) (int64, error)
	get    func() ([]store.Todo, error)
}

func (f *fakeStore) AddTodo(_ context.Context, _ *logger.Logger, todo store.NewTodo) (store.Todo, error) {
	return f.add(todo)
}

func (f *fakeStore) UpdateTodo(_ context.Context, _ *logger.Logger, todo store.Todo) (int64, error) {
	return f.update(todo)
}

func (f *fakeStore) DeleteTodo(_ context.Context, _ *logger.Logger, id int64) (int64, error) {
	return f.del(id)
}

func (f *fakeStore) GetTodos(_ context.Context, _ *logger.Logger) ([]store.Todo, error) {
	return f.get()
}
