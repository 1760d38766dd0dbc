// Package apperr holds the error values handlers raise and the rules that
// turn any failure into an HTTP status and a client-safe message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

const GenericMessage = "Something went very wrong!"

// Error is an error with a known HTTP status. Operational errors are
// expected and their message is safe to show to clients.
type Error struct {
	Status      int
	Message     string
	Operational bool

	cause error
	stack error
}

func New(status int, message string) *Error {
	return &Error{
		Status:      status,
		Message:     message,
		Operational: true,
		stack:       pkgerrors.New(message),
	}
}

// Internal wraps an unexpected failure. It renders as a generic 500.
func Internal(err error) *Error {
	msg := GenericMessage
	if err != nil {
		msg = err.Error()
	}

	return &Error{
		Status:      http.StatusInternalServerError,
		Message:     msg,
		Operational: false,
		cause:       err,
		stack:       pkgerrors.WithStack(errOrNew(err, msg)),
	}
}

func BadRequest(message string) *Error   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error    { return New(http.StatusForbidden, message) }
func NotFound(message string) *Error     { return New(http.StatusNotFound, message) }

func (e *Error) Error() string {
	if e.cause != nil && !e.Operational {
		return e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// StatusText is "fail" for client errors and "error" otherwise.
func (e *Error) StatusText() string {
	return StatusText(e.Status)
}

func (e *Error) Stack() string {
	if e.stack == nil {
		return ""
	}
	return fmt.Sprintf("%+v", e.stack)
}

func StatusText(status int) string {
	if status >= 400 && status < 500 {
		return "fail"
	}
	return "error"
}

// CastError reports a value that could not be converted to the field's
// type, such as a malformed identifier.
type CastError struct {
	Path  string
	Value string
}

func (e *CastError) Error() string {
	return fmt.Sprintf("cast to %s failed for value %q", e.Path, e.Value)
}

// DuplicateKeyError reports a unique constraint violation.
type DuplicateKeyError struct {
	Field string
	Value string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %s=%q", e.Field, e.Value)
}

func (e *DuplicateKeyError) Unwrap() error {
	return e.Err
}

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError collects every failed field constraint of one record.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), ". ")
}

func (e *ValidationError) Messages() []string {
	out := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		out = append(out, fe.Message)
	}
	return out
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func errOrNew(err error, msg string) error {
	if err != nil {
		return err
	}
	return errors.New(msg)
}
