package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	t.Run("with status code", func(t *testing.T) {
		err := &Error{Type: ErrorTypeRateLimit, Message: "rate limit exceeded", Code: 429}
		assert.Equal(t, "rate_limit error (code 429): rate limit exceeded", err.Error())
	})

	t.Run("without status code", func(t *testing.T) {
		err := New(ErrorTypeMissingCredentials, "TWITTER_CLIENT_ID is not set")
		assert.Equal(t, "missing_credentials error: TWITTER_CLIENT_ID is not set", err.Error())
	})
}

func TestIsRetryable(t *testing.T) {
	retryable := []ErrorType{ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError}
	for _, et := range retryable {
		assert.True(t, IsRetryable(et), "expected %s to be retryable", et)
	}

	terminal := []ErrorType{
		ErrorTypeMissingCredentials,
		ErrorTypeNotFound,
		ErrorTypeInsufficientAccess,
		ErrorTypeMissingAuthCode,
		ErrorTypeOAuthExchange,
		ErrorTypeWrite,
		ErrorTypeParsing,
		ErrorTypeUnknown,
	}
	for _, et := range terminal {
		assert.False(t, IsRetryable(et), "expected %s to be terminal", et)
	}
}

func TestIsRetryableStatusCode(t *testing.T) {
	tests := []struct {
		code      int
		retryable bool
	}{
		{0, true},
		{429, true},
		{500, true},
		{502, true},
		{503, true},
		{401, false},
		{403, false},
		{404, false},
		{400, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.retryable, IsRetryableStatusCode(tt.code), "status %d", tt.code)
	}
}

func TestIsType(t *testing.T) {
	err := Newf(ErrorTypeNotFound, "user @%s not found", "ghost")
	assert.True(t, IsType(err, ErrorTypeNotFound))
	assert.False(t, IsType(err, ErrorTypeRateLimit))

	wrapped := fmt.Errorf("lookup failed: %w", err)
	assert.True(t, IsType(wrapped, ErrorTypeNotFound))

	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypeNotFound))
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrorTypeOAuthExchange, TypeOf(New(ErrorTypeOAuthExchange, "bad code")))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(fmt.Errorf("plain")))
}
