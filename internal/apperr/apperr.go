// Package apperr defines the error taxonomy shared by the validator, the
// filter compiler, the resource services and the dispatcher.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for status mapping.
type Kind string

const (
	MissingIdentifier  Kind = "MissingIdentifier"
	InvalidIdentifier  Kind = "InvalidIdentifier"
	InvalidContentType Kind = "InvalidContentType"
	PayloadTooLarge    Kind = "PayloadTooLarge"
	InvalidJSON        Kind = "InvalidJson"
	InvalidFilterValue Kind = "InvalidFilterValue"
	InvalidStatus      Kind = "InvalidStatus"
	InvalidPayload     Kind = "InvalidPayload"
	NotFound           Kind = "NotFound"
	StorageUnavailable Kind = "StorageUnavailable"
	StorageError       Kind = "StorageError"
	Internal           Kind = "Internal"
)

// Error is a tagged failure carrying a client-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind that keeps cause for errors.Is/As.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so callers can write
// errors.Is(err, apperr.New(apperr.NotFound, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// IsValidation reports whether the kind is one of the 400-class validation kinds.
func (k Kind) IsValidation() bool {
	switch k {
	case MissingIdentifier, InvalidIdentifier, InvalidContentType, PayloadTooLarge,
		InvalidJSON, InvalidFilterValue, InvalidStatus, InvalidPayload:
		return true
	}
	return false
}

// KindOf extracts the kind of err. Unclassified errors are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps an error to the response status code.
func HTTPStatus(err error) int {
	kind := KindOf(err)
	switch {
	case kind.IsValidation():
		return http.StatusBadRequest
	case kind == NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message that is safe to send to clients.
// Internal failures never leak their cause.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return "Internal server error"
}
