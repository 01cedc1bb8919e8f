package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError carries an HTTP status code together with a user-facing message.
// The wrapped error, when present, is for logs only and is never sent to clients.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports two AppErrors as equal when code and message match, so that a
// wrapped copy produced by Wrap still satisfies errors.Is against the sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap attaches an underlying cause to a sentinel AppError.
func Wrap(sentinel *AppError, err error) *AppError {
	return &AppError{
		Code:    sentinel.Code,
		Message: sentinel.Message,
		Err:     err,
	}
}

// StatusCode returns the HTTP status for err, defaulting to 500.
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// Common errors shared by several modules.
var (
	ErrUnauthorized     = New(http.StatusUnauthorized, "unauthorized")
	ErrPermissionDenied = New(http.StatusForbidden, "permission denied")
	ErrInvalidInput     = New(http.StatusBadRequest, "invalid input parameters")
)
