// internal/apperrors/apperrors.go
package apperrors

import (
	"fmt"
	"net/http"
)

// Code is the stable machine-readable error kind surfaced to API clients.
type Code string

const (
	CodeUnauthenticated   Code = "UNAUTHENTICATED"
	CodeForbidden         Code = "FORBIDDEN"
	CodeNotFound          Code = "NOT_FOUND"
	CodeValidationFailed  Code = "VALIDATION_FAILED"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeInvalidState      Code = "INVALID_STATE"
	CodeOrderLocked       Code = "ORDER_LOCKED"
	CodeConflict          Code = "CONFLICT"
	CodeInternal          Code = "INTERNAL_ERROR"
)

// AppError pairs a stable code with a human-readable message. Services
// return it; handlers map it onto the HTTP response envelope.
type AppError struct {
	Code    Code        `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.cause }

// HTTPStatus maps the error code onto the transport status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidationFailed:
		return http.StatusBadRequest
	case CodeInvalidTransition, CodeInvalidState:
		return http.StatusUnprocessableEntity
	case CodeOrderLocked:
		return http.StatusLocked
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newError(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Unauthenticated(message string) *AppError {
	return newError(CodeUnauthenticated, message)
}

func Forbidden(message string) *AppError {
	return newError(CodeForbidden, message)
}

func NotFound(resource string) *AppError {
	return newError(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func ValidationFailed(message string, details interface{}) *AppError {
	e := newError(CodeValidationFailed, message)
	e.Details = details
	return e
}

// InvalidTransition reports an illegal order status change with the
// offending from/to pair.
func InvalidTransition(from, to string) *AppError {
	e := newError(CodeInvalidTransition, fmt.Sprintf("cannot transition order from %s to %s", from, to))
	e.Details = map[string]string{"from": from, "to": to}
	return e
}

func InvalidState(message string) *AppError {
	return newError(CodeInvalidState, message)
}

func OrderLocked(message string) *AppError {
	return newError(CodeOrderLocked, message)
}

func Conflict(message string) *AppError {
	return newError(CodeConflict, message)
}

// Internal wraps an unexpected storage or infrastructure failure. The cause
// is kept for logs but never serialized to clients.
func Internal(message string, cause error) *AppError {
	e := newError(CodeInternal, message)
	e.cause = cause
	return e
}

// From returns err as an *AppError, wrapping unknown errors as internal.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Internal("unexpected error", err)
}
