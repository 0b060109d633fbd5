// Package apperr is the error taxonomy shared by services and controllers.
//
// Services return *Error values (or wrap them); controllers turn any error
// into an HTTP status and a client-safe message with Status and Message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind string

const (
	KindInvalid   Kind = "InvalidRequest"
	KindNotFound  Kind = "NotFound"
	KindUpstream  Kind = "UpstreamError"
	KindMalformed Kind = "MalformedMessage"
)

// Error is a classified error. Message is safe to show to clients; Err is the
// underlying cause and is never rendered.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the kind to a response code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalid:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Invalid reports missing or unusable client input.
func Invalid(message string) *Error {
	return &Error{Kind: KindInvalid, Message: message}
}

// NotFound reports a referenced entity that does not exist.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Upstream wraps a failed store, queue, storage or notification call.
func Upstream(op string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: op, Err: err}
}

// Malformed marks a queue message that cannot be decoded. The batch consumer
// logs and skips these; they never reach a client.
func Malformed(reason string, err error) *Error {
	return &Error{Kind: KindMalformed, Message: reason, Err: err}
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Status returns the HTTP status for err. Unclassified errors are 500.
func Status(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Message returns the client-facing text for err.
// Upstream and unclassified errors collapse to a generic message.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && (e.Kind == KindInvalid || e.Kind == KindNotFound) {
		return e.Message
	}
	return "Internal Server Error"
}
