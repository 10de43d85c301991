// Package apperr defines the error kinds the HTTP layer maps to status codes.
package apperr

import "errors"

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// Error carries a client-facing message and the kind it belongs to.
type Error struct {
	kind    error
	message string
	field   string
}

func (e *Error) Error() string { return e.message }

func (e *Error) Unwrap() error { return e.kind }

// Field names the request field at fault, if any.
func (e *Error) Field() string { return e.field }

func Validation(message string) *Error {
	return &Error{kind: ErrValidation, message: message}
}

func FieldInvalid(field, message string) *Error {
	return &Error{kind: ErrValidation, message: message, field: field}
}

func NotFound(message string) *Error {
	return &Error{kind: ErrNotFound, message: message}
}

func Conflict(message string) *Error {
	return &Error{kind: ErrConflict, message: message}
}
