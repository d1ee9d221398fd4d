package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind enumerates the closed set of failure categories the API can
// report. Every error that crosses the transport boundary carries one of
// these kinds; the HTTP layer translates kind to status exactly once.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindAuthentication ErrorKind = "authentication"
	KindAuthorization  ErrorKind = "authorization"
	KindNotFound       ErrorKind = "not_found"
	KindAdmission      ErrorKind = "admission_rejected"
	KindUnavailable    ErrorKind = "unavailable"
	KindInternal       ErrorKind = "internal"
)

// Error is a tagged error variant with a stable, client-safe message.
type Error struct {
	Kind    ErrorKind
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

// Status maps the error kind to its HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindAdmission:
		return http.StatusTooManyRequests
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError builds a 400-mapped error.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewAuthenticationError builds a 401-mapped error.
func NewAuthenticationError(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// NewAuthorizationError builds a 403-mapped error.
func NewAuthorizationError(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// NewNotFoundError builds a 404-mapped error.
func NewNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// NewAdmissionError builds a 429-mapped error.
func NewAdmissionError(message string) *Error {
	return &Error{Kind: KindAdmission, Message: message}
}

// NewUnavailableError builds a 503-mapped error wrapping the cause.
func NewUnavailableError(message string, cause error) *Error {
	return &Error{Kind: KindUnavailable, Message: message, Err: cause}
}

// NewInternalError builds a 500-mapped error wrapping the cause. The message
// is what clients see; the cause stays in logs.
func NewInternalError(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: cause}
}

// AsError extracts a *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}
