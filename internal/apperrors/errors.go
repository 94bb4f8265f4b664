package apperrors

import (
	"errors"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// AppError carries the HTTP status code and the client-facing message for a
// request that cannot be served. Message is part of the wire contract and is
// returned verbatim in the {"err": ...} envelope.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// Error returns the client-facing message only; the underlying cause stays
// reachable through Unwrap.
func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError with an arbitrary status code.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewValidationFailedError creates a 400 AppError for malformed or invalid input.
func NewValidationFailedError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrValidation)
}

// NewNotFoundError creates a 404 AppError for a missing resource.
func NewNotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, ErrNotFound)
}

// NewConflictError creates an AppError for a storage uniqueness conflict.
// The message carries the driver diagnostic text through verbatim; clients
// match on it by substring. Duplicate creates are reported as 400, not 409.
func NewConflictError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrDuplicate)
}
