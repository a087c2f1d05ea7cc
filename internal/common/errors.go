package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Failure classes. Every caller-visible error wraps exactly one of these,
// so transports can map them without inspecting messages.
var (
	// ErrRejected is a client error: oversized file, disallowed type,
	// malformed request. No partial work was performed.
	ErrRejected = errors.New("request rejected")
	// ErrUpstream is a dependency failure: storage unreachable,
	// fetch-back failed.
	ErrUpstream = errors.New("upstream failure")
	// ErrTooLarge is a payload over a hard size ceiling.
	ErrTooLarge = errors.New("payload too large")
	// ErrConfig means a required backend is not configured. The message
	// names the credential to set.
	ErrConfig = errors.New("configuration error")
	// ErrNotFound is a missing resource.
	ErrNotFound = errors.New("resource not found")
)

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Error constructors per failure class.
func RejectionError(message string) error {
	return NewAppError("REJECTED", message, ErrRejected)
}

func RejectionErrorf(format string, args ...any) error {
	return RejectionError(fmt.Sprintf(format, args...))
}

func UpstreamError(message string) error {
	return NewAppError("UPSTREAM", message, ErrUpstream)
}

func UpstreamErrorf(format string, args ...any) error {
	return UpstreamError(fmt.Sprintf(format, args...))
}

func TooLargeError(message string) error {
	return NewAppError("TOO_LARGE", message, ErrTooLarge)
}

func TooLargeErrorf(format string, args ...any) error {
	return TooLargeError(fmt.Sprintf(format, args...))
}

func ConfigError(message string) error {
	return NewAppError("CONFIG_ERROR", message, ErrConfig)
}
