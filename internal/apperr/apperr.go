// Package apperr provides coded errors shared by the event core and the
// transports that expose it.
package apperr

import (
	"errors"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	// Input errors
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeInvalidPattern   Code = "INVALID_PATTERN"
	CodeUnauthorized     Code = "UNAUTHORIZED"

	// Storage errors
	CodeNotFound            Code = "NOT_FOUND"
	CodePersistenceConflict Code = "PERSISTENCE_CONFLICT"
	CodePersistenceFailure  Code = "PERSISTENCE_FAILURE"

	// Rotation errors
	CodeRotationOverflow Code = "ROTATION_OVERFLOW"
)

// HTTPStatus maps a code onto the status returned by the HTTP layer.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidationFailed, CodeInvalidPattern:
		return http.StatusUnprocessableEntity
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodePersistenceConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is the domain error type.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Wrapped underlying error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is checks. Any error carrying the same code matches.
var (
	ErrNotFound   = New(CodeNotFound, "not found")
	ErrConflict   = New(CodePersistenceConflict, "record changed concurrently")
	ErrValidation = New(CodeValidationFailed, "validation failed")
	ErrOverflow   = New(CodeRotationOverflow, "rotation overflow")
)

// New creates an error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
