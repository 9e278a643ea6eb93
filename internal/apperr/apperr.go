// Package apperr defines the error kinds surfaced by the service layer.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	// Internal is an unexpected failure, usually from the store.
	Internal Kind = iota
	// Validation means the input was missing or malformed.
	Validation
	// Conflict means the input clashes with existing state.
	Conflict
	// Authentication means credentials or token were rejected.
	Authentication
	// NotFound means the referenced user or expense does not exist.
	NotFound
	// TooLarge means the request body exceeded the accepted size.
	TooLarge
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Conflict:
		return "conflict"
	case Authentication:
		return "authentication"
	case NotFound:
		return "not_found"
	case TooLarge:
		return "too_large"
	default:
		return "internal"
	}
}

// Error carries a kind and a message safe to show to clients.
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

// Is matches any *Error of the same kind, so errors.Is(err, &Error{Kind: NotFound}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == ""
}

// NewValidation reports missing or malformed input.
func NewValidation(msg string) *Error { return &Error{Kind: Validation, Message: msg} }

// NewConflict reports input that clashes with stored data, such as a taken username.
func NewConflict(msg string) *Error { return &Error{Kind: Conflict, Message: msg} }

// NewAuthentication reports rejected credentials or tokens.
func NewAuthentication(msg string) *Error { return &Error{Kind: Authentication, Message: msg} }

// NewNotFound reports a missing user or expense.
func NewNotFound(msg string) *Error { return &Error{Kind: NotFound, Message: msg} }

// NewTooLarge reports a request body over the size limit.
func NewTooLarge(msg string) *Error { return &Error{Kind: TooLarge, Message: msg} }

// Wrap marks err as an internal failure while keeping it for logging.
func Wrap(err error, msg string) *Error {
	return &Error{Kind: Internal, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// HTTPStatus maps an error to the response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Validation, Conflict:
		return http.StatusBadRequest
	case Authentication:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case TooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message to send to clients. Internal errors get a generic text.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return "Internal server error"
}
