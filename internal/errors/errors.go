package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Mythica error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrInvalidKind    ErrorCode = "INVALID_KIND"    // 400
	ErrUnauthorized   ErrorCode = "UNAUTHORIZED"    // 401
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrLetterLocked   ErrorCode = "LETTER_LOCKED"   // 409
	ErrConflict       ErrorCode = "CONFLICT"        // 409
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// MythicaError represents a structured error with code, status, and details.
type MythicaError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	// cause is the wrapped error for internal failures. Never rendered to clients.
	cause error
}

// Error implements the error interface.
func (e *MythicaError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *MythicaError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *MythicaError {
	return &MythicaError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidKind creates a 400 error for an unrecognized generation type.
func NewInvalidKind(kind string) *MythicaError {
	return &MythicaError{
		Code:    ErrInvalidKind,
		Status:  400,
		Message: "Invalid generation type",
		Details: map[string]any{"type": kind},
	}
}

// NewUnauthorized creates a 401 error for missing or unknown credentials.
func NewUnauthorized() *MythicaError {
	return &MythicaError{
		Code:    ErrUnauthorized,
		Status:  401,
		Message: "Unauthorized",
	}
}

// NewNotFound creates a 404 error for a missing resource.
func NewNotFound(resource, identifier string) *MythicaError {
	return &MythicaError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
		Details: map[string]any{"resource": resource, "identifier": identifier},
	}
}

// NewLetterLocked creates a 409 error when a letter is opened before its unlock date.
func NewLetterLocked(id, unlockDate string) *MythicaError {
	return &MythicaError{
		Code:    ErrLetterLocked,
		Status:  409,
		Message: fmt.Sprintf("letter %s stays sealed until %s", id, unlockDate),
		Details: map[string]any{"id": id, "unlock_date": unlockDate},
	}
}

// NewConflict creates a 409 error for general conflicts.
func NewConflict(msg string) *MythicaError {
	return &MythicaError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *MythicaError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &MythicaError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// Is checks if an error is a MythicaError with the given code.
func Is(err error, code ErrorCode) bool {
	var mErr *MythicaError
	if stderrors.As(err, &mErr) {
		return mErr.Code == code
	}
	return false
}

// As converts any error into a MythicaError, wrapping unknown errors as internal.
func As(err error) *MythicaError {
	var mErr *MythicaError
	if stderrors.As(err, &mErr) {
		return mErr
	}
	return NewInternal(err)
}

// Public returns the code, message, and status safe to show a client.
// Internal errors are reduced to a generic message.
func Public(err error) (ErrorCode, string, int) {
	mErr := As(err)
	if mErr.Code == ErrInternal {
		return ErrInternal, "an internal error occurred", 500
	}
	return mErr.Code, mErr.Message, mErr.Status
}
