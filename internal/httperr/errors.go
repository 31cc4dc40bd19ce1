// Package httperr defines the service's error taxonomy: structured HTTP
// errors with a stable machine-readable code plus a human-readable
// message. Handlers return errors; the HTTP layer renders them as a JSON
// envelope. No failure is swallowed on the way out.
package httperr

import (
	"errors"
	"net/http"
)

// Stable machine-readable error codes.
const (
	CodeUnauthorized = "unauthorized"
	CodeBadRequest   = "bad_request"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeInternal     = "internal_error"
)

// HTTPError represents a request-terminal failure with everything needed
// to render a machine-readable error response.
type HTTPError struct {
	// Err is the underlying cause (for logging, never exposed to callers).
	Err error

	// Message is the caller-facing error message.
	Message string

	// Code is the stable machine-readable error code.
	Code string

	// Status is the HTTP status code.
	Status int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Option configures an HTTPError.
type Option func(*HTTPError)

// WithError attaches the underlying cause for logging.
func WithError(err error) Option {
	return func(e *HTTPError) {
		e.Err = err
	}
}

// WithCode overrides the default machine-readable code.
func WithCode(code string) Option {
	return func(e *HTTPError) {
		e.Code = code
	}
}

func newError(status int, code, message string, opts ...Option) *HTTPError {
	e := &HTTPError{Status: status, Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Convenience constructors for the taxonomy.

func ErrUnauthorized(message string, opts ...Option) *HTTPError {
	return newError(http.StatusUnauthorized, CodeUnauthorized, message, opts...)
}

func ErrBadRequest(message string, opts ...Option) *HTTPError {
	return newError(http.StatusBadRequest, CodeBadRequest, message, opts...)
}

func ErrForbidden(message string, opts ...Option) *HTTPError {
	return newError(http.StatusForbidden, CodeForbidden, message, opts...)
}

func ErrNotFound(message string, opts ...Option) *HTTPError {
	return newError(http.StatusNotFound, CodeNotFound, message, opts...)
}

func ErrConflict(message string, opts ...Option) *HTTPError {
	return newError(http.StatusConflict, CodeConflict, message, opts...)
}

func ErrInternal(message string, opts ...Option) *HTTPError {
	return newError(http.StatusInternalServerError, CodeInternal, message, opts...)
}

// As extracts the HTTPError from an error chain. Returns nil when the
// error is not an HTTPError.
func As(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}
