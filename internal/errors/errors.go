// Package errors defines the typed failures raised by the ledger services.
// The HTTP layer maps them to transport responses; nothing below it should
// swallow or downgrade them.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a failure class.
type Code string

const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeInvalidState Code = "INVALID_STATE"
	CodeForbidden    Code = "FORBIDDEN"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeInternal     Code = "INTERNAL"
)

// ServiceError carries a failure class, a human message and the HTTP status
// the transport layer should use.
type ServiceError struct {
	Code       Code
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// WithDetails attaches a detail entry and returns the error for chaining.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func newError(code Code, status int, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message, HTTPStatus: status}
}

// NotFound reports an absent entity id.
func NotFound(format string, args ...interface{}) *ServiceError {
	return newError(CodeNotFound, http.StatusNotFound, fmt.Sprintf(format, args...))
}

// Conflict reports a duplicate record or an exhausted capacity.
func Conflict(format string, args ...interface{}) *ServiceError {
	return newError(CodeConflict, http.StatusConflict, fmt.Sprintf(format, args...))
}

// InvalidState reports an action not permitted from the current lifecycle
// state.
func InvalidState(format string, args ...interface{}) *ServiceError {
	return newError(CodeInvalidState, http.StatusUnprocessableEntity, fmt.Sprintf(format, args...))
}

// Forbidden reports an actor lacking ownership or role for the action.
func Forbidden(format string, args ...interface{}) *ServiceError {
	return newError(CodeForbidden, http.StatusForbidden, fmt.Sprintf(format, args...))
}

// InvalidInput reports malformed or out-of-range input.
func InvalidInput(format string, args ...interface{}) *ServiceError {
	return newError(CodeInvalidInput, http.StatusBadRequest, fmt.Sprintf(format, args...))
}

// Unauthorized reports missing or invalid credentials.
func Unauthorized(message string) *ServiceError {
	return newError(CodeUnauthorized, http.StatusUnauthorized, message)
}

// InvalidToken reports a rejected auth token.
func InvalidToken(err error) *ServiceError {
	e := newError(CodeUnauthorized, http.StatusUnauthorized, "invalid or expired token")
	e.Err = err
	return e
}

// Internal wraps an unexpected failure.
func Internal(message string, err error) *ServiceError {
	e := newError(CodeInternal, http.StatusInternalServerError, message)
	e.Err = err
	return e
}

// GetServiceError extracts a ServiceError from err's chain, or nil.
func GetServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return nil
}

// IsCode reports whether err carries the given failure code.
func IsCode(err error, code Code) bool {
	if svcErr := GetServiceError(err); svcErr != nil {
		return svcErr.Code == code
	}
	return false
}
