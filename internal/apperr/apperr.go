// Package apperr defines the error taxonomy shared by all layers.
// Every user-visible failure is one of four kinds; the HTTP layer maps
// kinds to status codes and never exposes wrapped driver errors.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable error category.
type Kind string

const (
	KindValidation Kind = "ValidationError"
	KindNotFound   Kind = "NotFound"
	KindConflict   Kind = "Conflict"
	KindInternal   Kind = "InternalError"
)

// Error is a categorized application error.
type Error struct {
	Kind    Kind
	Message string
	Field   string // offending field, when known
	Err     error  // wrapped cause, never surfaced to clients
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field %s)", e.Kind, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a ValidationError for the given field.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Field: field}
}

// NotFound returns a NotFound error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict returns a Conflict error for the given field.
func Conflict(field, message string) *Error {
	return &Error{Kind: KindConflict, Message: message, Field: field}
}

// Internal wraps an unexpected failure. The cause is retained for logs
// but the client-facing message is generic.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf returns the kind of err, or KindInternal for uncategorized errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// As extracts the *Error from err, wrapping uncategorized errors as internal.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsConflict reports whether err is a Conflict error.
func IsConflict(err error) bool {
	return KindOf(err) == KindConflict
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}
