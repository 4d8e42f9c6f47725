// Package apperror defines the error taxonomy shared by all handlers and
// services. Every error that reaches a client is one of these kinds; the
// error middleware maps the kind to a status code and serializes the
// user-safe message only, never the wrapped internal error.
package apperror

import (
	"errors"
	"net/http"
)

type Kind int

const (
	// Validation covers malformed or missing input, including an address
	// the geocoder cannot resolve and a duplicate vendor email.
	Validation Kind = iota
	NotFound
	// Unauthorized covers both failed authentication and ownership
	// violations (editing another vendor's event).
	Unauthorized
	// Upstream covers geocoder and blob-store failures.
	Upstream
	// Persistence covers database failures, including a rolled-back
	// vendor/event transaction.
	Persistence
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case Validation:
		return http.StatusUnprocessableEntity
	case NotFound:
		return http.StatusNotFound
	case Unauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches an internal cause to a user-safe message. The cause is
// available for logging but is never serialized to the client.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// From extracts an *Error from err's chain, or nil.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
