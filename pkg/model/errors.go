package model

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failure so callers can branch without matching messages.
type ErrorKind string

const (
	// KindValidation is bad input detected locally; no request was sent.
	KindValidation ErrorKind = "VALIDATION_ERROR"
	// KindTransport is a network failure or a non-2xx gateway response.
	KindTransport ErrorKind = "TRANSPORT_ERROR"
	// KindAuth is a rejected login or an authorization failure.
	KindAuth ErrorKind = "AUTH_ERROR"
	// KindRegistration is a rejected account registration.
	KindRegistration ErrorKind = "REGISTRATION_ERROR"
)

// Error is the single normalized error shape returned by the gateway client
// and the session manager. Error() yields only the human-readable message.
type Error struct {
	Kind    ErrorKind
	Op      string
	Status  int // HTTP status when the gateway answered, 0 otherwise
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Detail renders the error with its operation and status for logs.
func (e *Error) Detail() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: [%s %d] %s", e.Op, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: [%s] %s", e.Op, e.Kind, e.Message)
}

// NewValidationError creates a KindValidation error.
func NewValidationError(op, msg string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: msg}
}

// NewAuthError creates a KindAuth error wrapping cause (which may be nil).
func NewAuthError(op, msg string, cause error) *Error {
	return &Error{Kind: KindAuth, Op: op, Message: msg, Err: cause, Status: statusOf(cause)}
}

// NewRegistrationError creates a KindRegistration error wrapping cause.
func NewRegistrationError(op, msg string, cause error) *Error {
	return &Error{Kind: KindRegistration, Op: op, Message: msg, Err: cause, Status: statusOf(cause)}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	return statusOf(err)
}

func statusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// IsUnauthorized reports whether the gateway rejected the caller's credentials.
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

// MessageOf returns the normalized message of err, or fallback when it has none.
func MessageOf(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
