// Package schema validates request input against the CUE definitions in
// todo.cue.
//
// Definitions are closed, so unknown fields are rejected. Failures are
// returned as apperr validation errors carrying the request location.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/todos/internal/apperr"
)

//go:embed todo.cue
var todoCUE string

// TodoBody is a validated request body.
type TodoBody struct {
	Text   string `json:"text"`
	Active bool   `json:"active"`
}

// Validator checks input against the compiled definitions.
// Safe for concurrent use.
type Validator struct {
	// mu serializes access to ctx; CUE values are not safe for concurrent use.
	mu     sync.Mutex
	ctx    *cue.Context
	todo   cue.Value
	todoID cue.Value
}

// New compiles the embedded definitions.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(todoCUE, cue.Filename("todo.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	todo := v.LookupPath(cue.ParsePath("#Todo"))
	if !todo.Exists() {
		return nil, fmt.Errorf("compile schema: #Todo not defined")
	}
	todoID := v.LookupPath(cue.ParsePath("#TodoID"))
	if !todoID.Exists() {
		return nil, fmt.Errorf("compile schema: #TodoID not defined")
	}

	return &Validator{ctx: ctx, todo: todo, todoID: todoID}, nil
}

// MustNew is like New but panics on error. The definitions are embedded, so
// an error here is a build defect.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Todo validates a JSON request body against #Todo.
// An empty body is treated as an empty object.
func (v *Validator) Todo(body []byte) (TodoBody, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		trimmed = []byte("{}")
	}

	var raw any
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return TodoBody{}, apperr.Validation(apperr.LocationBody, fmt.Sprintf("invalid JSON: %v", err))
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return TodoBody{}, apperr.Validation(apperr.LocationBody, `"value" must be of type object`)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	unified := v.todo.Unify(v.ctx.Encode(obj))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return TodoBody{}, apperr.Validation(apperr.LocationBody, describe(err))
	}

	var out TodoBody
	if err := unified.Decode(&out); err != nil {
		return TodoBody{}, apperr.Validation(apperr.LocationBody, describe(err))
	}
	return out, nil
}

// TodoID validates a raw id path parameter against #TodoID.
func (v *Validator) TodoID(raw string) (int64, error) {
	var param any = raw
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		param = n
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	field := v.todoID.LookupPath(cue.ParsePath("id")).Unify(v.ctx.Encode(param))
	if err := field.Validate(cue.Concrete(true)); err != nil {
		return 0, apperr.Validation(apperr.LocationParams, fmt.Sprintf("%q: %s", "id", message(err)))
	}

	id, err := field.Int64()
	if err != nil {
		return 0, apperr.Validation(apperr.LocationParams, fmt.Sprintf("%q: %s", "id", message(err)))
	}
	return id, nil
}

// message renders the first CUE error without its path.
func message(err error) string {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}
	format, args := errs[0].Msg()
	return fmt.Sprintf(format, args...)
}

// describe renders CUE errors as `"field": message` joined by "; ".
func describe(err error) string {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}

	parts := make([]string, 0, len(errs))
	seen := map[string]bool{}
	for _, e := range errs {
		msg := message(e)
		if field := fieldName(e.Path()); field != "" {
			msg = fmt.Sprintf("%q: %s", field, msg)
		}
		if seen[msg] {
			continue
		}
		seen[msg] = true
		parts = append(parts, msg)
	}
	return strings.Join(parts, "; ")
}

// fieldName drops definition selectors (#Todo, #TodoID) from a CUE path.
func fieldName(path []string) string {
	var fields []string
	for _, p := range path {
		if strings.HasPrefix(p, "#") {
			continue
		}
		fields = append(fields, p)
	}
	return strings.Join(fields, ".")
}
