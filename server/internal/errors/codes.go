package errors

import (
	"fmt"
)

// ErrorCode represents a specific error type for assistant operations.
type ErrorCode string

const (
	// ErrCodeUnauthorized indicates authentication failure.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeRateLimitExceeded indicates rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeStoreUnavailable indicates a listings/session store failure.
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	// ErrCodeGenerationFailed indicates the generative-text call failed.
	ErrCodeGenerationFailed ErrorCode = "GENERATION_FAILED"
	// ErrCodeSafetyViolation indicates generated text hit the denylist.
	ErrCodeSafetyViolation ErrorCode = "SAFETY_VIOLATION"
	// ErrCodeContextCanceled indicates the operation was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// ChatError represents a structured error for assistant operations.
type ChatError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
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

// WithContext adds context to the error.
func (e *ChatError) WithContext(key string, value interface{}) *ChatError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// GetCode returns the error code.
func (e *ChatError) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *ChatError {
	return &ChatError{Code: ErrCodeUnauthorized, Message: msg}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *ChatError {
	return &ChatError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *ChatError {
	return &ChatError{Code: ErrCodeInvalidArgument, Message: msg}
}

// StoreUnavailable creates a store unavailable error.
func StoreUnavailable(msg string, cause error) *ChatError {
	return &ChatError{Code: ErrCodeStoreUnavailable, Message: msg, Cause: cause}
}

// GenerationFailed creates a generation failed error.
func GenerationFailed(msg string, cause error) *ChatError {
	return &ChatError{Code: ErrCodeGenerationFailed, Message: msg, Cause: cause}
}

// SafetyViolation creates a safety violation error.
func SafetyViolation(msg string) *ChatError {
	return &ChatError{Code: ErrCodeSafetyViolation, Message: msg}
}

// ContextCanceled creates a context canceled error.
func ContextCanceled(cause error) *ChatError {
	return &ChatError{Code: ErrCodeContextCanceled, Message: "operation canceled", Cause: cause}
}

// Timeout creates a timeout error.
func Timeout(msg string) *ChatError {
	return &ChatError{Code: ErrCodeTimeout, Message: msg}
}

// Wrap wraps an existing error with additional context.
func Wrap(cause error, code ErrorCode, msg string) *ChatError {
	return &ChatError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if chatErr, ok := err.(*ChatError); ok {
		return chatErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a ChatError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	if chatErr, ok := err.(*ChatError); ok {
		return chatErr.Code
	}
	return defaultCode
}
