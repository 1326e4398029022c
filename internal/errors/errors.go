package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of gate error.
type ErrorCode string

const (
	// ErrCodeUnauthenticated indicates a missing or invalid access token (backend 401).
	ErrCodeUnauthenticated ErrorCode = "unauthenticated"
	// ErrCodeCredentialsRejected indicates the backend refused a username/password pair.
	ErrCodeCredentialsRejected ErrorCode = "credentials_rejected"
	// ErrCodeUnavailable indicates the backend gateway could not be reached or failed.
	ErrCodeUnavailable ErrorCode = "unavailable"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "internal"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message. For credential rejections it is
	// the backend's message, shown to the visitor verbatim.
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Status is the backend HTTP status, when the error came from a response.
	Status int
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Unauthenticated creates a new Unauthenticated error.
func Unauthenticated(message string) *AppError {
	return &AppError{Code: ErrCodeUnauthenticated, Message: message, Status: 401}
}

// CredentialsRejected creates a credential rejection carrying the backend's message.
func CredentialsRejected(message string, status int) *AppError {
	return &AppError{Code: ErrCodeCredentialsRejected, Message: message, Status: status}
}

// Unavailable wraps a transport or upstream failure.
func Unavailable(err error, message string) *AppError {
	return &AppError{Code: ErrCodeUnavailable, Message: message, Cause: err}
}

// Unavailablef creates an Unavailable error with formatted message and no cause.
func Unavailablef(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeUnavailable, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Wrap wraps an existing error with an AppError.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsUnauthenticated checks if an error is an Unauthenticated error.
func IsUnauthenticated(err error) bool { return isCode(err, ErrCodeUnauthenticated) }

// IsCredentialsRejected checks if an error is a credential rejection.
func IsCredentialsRejected(err error) bool { return isCode(err, ErrCodeCredentialsRejected) }

// IsUnavailable checks if an error is an Unavailable error.
func IsUnavailable(err error) bool { return isCode(err, ErrCodeUnavailable) }

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool { return isCode(err, ErrCodeValidation) }

// GetCode returns the error code if err is an AppError, otherwise returns empty string.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// DisplayMessage returns the text to show a visitor for err.
// Credential rejections and validation errors surface their own message;
// everything else collapses to fallback so transport details never reach the page.
func DisplayMessage(err error, fallback string) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fallback
	}
	switch appErr.Code {
	case ErrCodeCredentialsRejected, ErrCodeValidation:
		if appErr.Message != "" {
			return appErr.Message
		}
	}
	return fallback
}
