package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType classifies the failures that can occur while talking to the API
// or writing reports
type ErrorType string

const (
	ErrorTypeMissingCredentials ErrorType = "missing_credentials"
	ErrorTypeNotFound           ErrorType = "not_found"
	ErrorTypeInsufficientAccess ErrorType = "insufficient_access"
	ErrorTypeRateLimit          ErrorType = "rate_limit"
	ErrorTypeMissingAuthCode    ErrorType = "missing_auth_code"
	ErrorTypeOAuthExchange      ErrorType = "oauth_exchange"
	ErrorTypeWrite              ErrorType = "write"
	ErrorTypeNetwork            ErrorType = "network"
	ErrorTypeParsing            ErrorType = "parsing"
	ErrorTypeServerError        ErrorType = "server_error"
	ErrorTypeUnknown            ErrorType = "unknown"
)

// Error represents an API or I/O error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	// RetryAfter is the provider-suggested wait before the next attempt.
	// Zero when the provider gave no hint.
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// New creates a typed error without an HTTP status code
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Newf creates a typed error with a formatted message
func Newf(t ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...)}
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 401, 403, 404: // Client errors that won't change
		return false
	default:
		return statusCode >= 500 // Retry all 5xx errors
	}
}

// IsType reports whether err is (or wraps) a typed Error of the given kind
func IsType(err error, t ErrorType) bool {
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		return apiErr.Type == t
	}
	return false
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown when err carries
// no type information
func TypeOf(err error) ErrorType {
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		return apiErr.Type
	}
	return ErrorTypeUnknown
}
