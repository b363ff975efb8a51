// Package dErrors defines the domain error taxonomy shared by services and
// transports. Services create these at the adapter boundary; the HTTP layer
// maps codes to status codes in exactly one place.
package dErrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error. Transports map codes to wire status codes;
// services branch on codes, never on provider-specific strings.
type Code string

const (
	// CodeBadRequest covers malformed or missing client input. Never the
	// result of external mutation.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound marks a lookup miss where a match was required.
	CodeNotFound Code = "not_found"
	// CodeConflict marks an action not applicable to the current state,
	// e.g. registering an email that is already verified.
	CodeConflict Code = "conflict"
	// CodeUnauthorized marks a failed credential check.
	CodeUnauthorized Code = "unauthorized"
	// CodeUnavailable marks a downstream dependency failure that left no
	// partial state behind (or whose partial state was compensated).
	CodeUnavailable Code = "unavailable"
	// CodeInternal is the fallback for unexpected failures.
	CodeInternal Code = "internal"
)

// Error carries a code, a client-safe message, and an optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error with the given code and client-safe message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause. The cause is kept
// for logs and errors.Is chains; the message is what clients may see.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// HasCode is an alias of Is kept for call-site readability in tests.
func HasCode(err error, code Code) bool { return Is(err, code) }

// MessageFor returns the client-safe message for err, or a generic fallback
// when err is not a domain error.
func MessageFor(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal server error"
}

// CodeFor extracts the code from err, defaulting to CodeInternal.
func CodeFor(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a domain error code to an HTTP status code. NotFound and
// Conflict intentionally map to 400: the public API treats them as client
// errors on the request body, not resource URLs.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeNotFound, CodeConflict:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
