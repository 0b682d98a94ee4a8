package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error type for chat operations.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates a malformed client request. Rejected
	// before any side effect occurs.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeNotConfigured indicates a required upstream credential is missing.
	ErrCodeNotConfigured ErrorCode = "NOT_CONFIGURED"
	// ErrCodeUpstreamFailed indicates the provider returned a non-success
	// status or a malformed payload. Never retried.
	ErrCodeUpstreamFailed ErrorCode = "UPSTREAM_FAILED"
	// ErrCodeStorageFailed indicates a persistence operation failed.
	ErrCodeStorageFailed ErrorCode = "STORAGE_FAILED"
	// ErrCodeUnauthorized indicates authentication failure.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeContextCanceled indicates the operation was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
)

// ChatError represents a structured error for chat operations.
type ChatError struct {
	Code    ErrorCode
	Message string
	Cause   error
	// StatusCode carries the upstream HTTP status for UPSTREAM_FAILED.
	StatusCode int
}

// Error implements the error interface.
func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ChatError) Unwrap() error {
	return e.Cause
}

// GetCode returns the error code.
func (e *ChatError) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *ChatError {
	return &ChatError{Code: ErrCodeInvalidArgument, Message: msg}
}

// NotConfigured creates a missing-credential configuration error.
func NotConfigured(msg string) *ChatError {
	return &ChatError{Code: ErrCodeNotConfigured, Message: msg}
}

// Upstream creates an upstream failure error carrying the upstream status.
func Upstream(statusCode int, msg string) *ChatError {
	return &ChatError{Code: ErrCodeUpstreamFailed, Message: msg, StatusCode: statusCode}
}

// Storage creates a persistence failure error.
func Storage(msg string, cause error) *ChatError {
	return &ChatError{Code: ErrCodeStorageFailed, Message: msg, Cause: cause}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *ChatError {
	return &ChatError{Code: ErrCodeUnauthorized, Message: msg}
}

// ContextCanceled creates a canceled error.
func ContextCanceled(cause error) *ChatError {
	return &ChatError{Code: ErrCodeContextCanceled, Message: "operation canceled", Cause: cause}
}

// Wrap wraps an existing error with additional context.
func Wrap(cause error, code ErrorCode, msg string) *ChatError {
	return &ChatError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error carries a specific code, looking through any
// wrapping.
func IsCode(err error, code ErrorCode) bool {
	var chatErr *ChatError
	if errors.As(err, &chatErr) {
		return chatErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if no ChatError is found in the chain.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var chatErr *ChatError
	if errors.As(err, &chatErr) {
		return chatErr.Code
	}
	return defaultCode
}
