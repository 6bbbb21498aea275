// Package apperr defines the error taxonomy shared by the store and the HTTP
// pipeline.
//
// Every failure that reaches a caller is one of three kinds:
//   - validation: the request body or path params failed their schema
//   - not_found:  an update or delete touched zero rows
//   - store:      any other persistence failure (open, statement, scan)
//
// The pipeline branches on Kind, never on message text.
package apperr

import (
	"errors"
	"fmt"
)

// Kind categorizes an Error.
type Kind string

const (
	// KindValidation marks input that failed its declared schema.
	KindValidation Kind = "validation"

	// KindNotFound marks an update or delete that affected zero rows.
	KindNotFound Kind = "not_found"

	// KindStore marks any other persistence failure.
	KindStore Kind = "store"
)

// Location names the part of a request a validation error refers to.
type Location string

const (
	LocationBody   Location = "body"
	LocationParams Location = "params"
)

// Error is a tagged application error.
type Error struct {
	// Kind identifies the error category.
	Kind Kind

	// Message is the human-readable description sent to clients.
	Message string

	// Location is set for validation errors only.
	Location Location

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a validation error for the given request location.
func Validation(loc Location, message string) *Error {
	return &Error{Kind: KindValidation, Location: loc, Message: message}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Store wraps a persistence failure.
func Store(message string, err error) *Error {
	return &Error{Kind: KindStore, Message: message, Err: err}
}

// KindOf returns the Kind of err, or "" if err is not an *Error.
// Uses errors.As to handle wrapped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsStore reports whether err is a store error.
func IsStore(err error) bool {
	return KindOf(err) == KindStore
}

// AsValidation returns the validation error in err's chain, if any.
func AsValidation(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindValidation {
		return e, true
	}
	return nil, false
}
