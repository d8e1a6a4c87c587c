package core

import "fmt"

// Error represents a structured error with a stable code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Pipeline errors. A caller seeing VALIDATION_FAILED should fix the
	// input; RATE_LIMITED means back off and retry after the window.
	ErrValidationFailed = &Error{Code: "VALIDATION_FAILED", Message: "signal validation failed"}
	ErrRateLimited      = &Error{Code: "RATE_LIMITED", Message: "rate limit exceeded"}

	// Lifecycle errors
	ErrInvalidTransition = &Error{Code: "INVALID_TRANSITION", Message: "lifecycle transition not permitted"}
	ErrSignalNotFound    = &Error{Code: "SIGNAL_NOT_FOUND", Message: "signal not found"}

	// Advisory errors
	ErrUpstreamUnavailable = &Error{Code: "UPSTREAM_UNAVAILABLE", Message: "advisory service unavailable"}
	ErrUpstreamTimeout     = &Error{Code: "UPSTREAM_TIMEOUT", Message: "advisory service timeout"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
