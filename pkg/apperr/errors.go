// Package apperr defines the error kinds that domain operations return to the
// HTTP layer. Handlers map a Kind to a status code; the Message is safe to show
// to clients, the wrapped cause is kept for logs.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for clients
type Kind int

const (
	Internal Kind = iota
	BadRequest
	Unauthorized
	MissingToken
	InvalidToken
	Forbidden
	NotFound
	Conflict
)

func (k Kind) String() string {
	switch k {
	case BadRequest:
		return "bad_request"
	case Unauthorized:
		return "unauthorized"
	case MissingToken:
		return "missing_token"
	case InvalidToken:
		return "invalid_token"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	default:
		return "internal"
	}
}

// HTTPStatus returns the response status code for the kind
func (k Kind) HTTPStatus() int {
	switch k {
	case BadRequest:
		return http.StatusBadRequest
	case Unauthorized, MissingToken, InvalidToken:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified, client-safe error
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind that keeps cause for errors.Is/As
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func NewBadRequest(message string) *Error { return New(BadRequest, message) }
func NewForbidden(message string) *Error  { return New(Forbidden, message) }
func NewNotFound(message string) *Error   { return New(NotFound, message) }
func NewConflict(message string) *Error   { return New(Conflict, message) }

// NewInternal hides cause behind message
func NewInternal(message string, cause error) *Error {
	return Wrap(Internal, message, cause)
}

// KindOf returns the kind of err, Internal when err is not an *Error
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// MessageOf returns the client-safe message of err
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal Server Error."
}
