package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorTable(t *testing.T) {
	tests := []struct {
		name   string
		err    *APIError
		status int
		code   string
		detail string
	}{
		{"profile not found", ProfileNotFound("alice"), http.StatusNotFound, "PROFILE_NOT_FOUND", "Profile 'alice' not found"},
		{"post not found", PostNotFound("CxYz_12-abQ"), http.StatusNotFound, "POST_NOT_FOUND", "Post 'CxYz_12-abQ' not found"},
		{"private profile", PrivateProfile("bob"), http.StatusForbidden, "PRIVATE_PROFILE", "Profile 'bob' is private"},
		{"invalid url", InvalidURL("ftp://x"), http.StatusBadRequest, "INVALID_URL", "Invalid Instagram URL: ftp://x"},
		{"rate limit", RateLimit(), http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded. Please try again later"},
		{"connection", ConnectionError(), http.StatusServiceUnavailable, "CONNECTION_ERROR", "Unable to connect to Instagram"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status())
			assert.Equal(t, tt.code, tt.err.Code())
			assert.Equal(t, tt.detail, tt.err.Error())
		})
	}
}

func TestEveryKindIsMapped(t *testing.T) {
	for k := KindProfileNotFound; k <= KindConnectionError; k++ {
		assert.NotEqual(t, http.StatusInternalServerError, k.Status(), "kind %d", k)
		assert.NotEqual(t, CodeInternal, k.Code(), "kind %d", k)
	}
	assert.Equal(t, http.StatusInternalServerError, Kind(0).Status())
	assert.Equal(t, CodeInternal, Kind(0).Code())
}

func TestAPIErrorIs(t *testing.T) {
	wrapped := fmt.Errorf("fetch posts: %w", PrivateProfile("alice"))

	assert.True(t, stderrors.Is(wrapped, PrivateProfile("someone-else")))
	assert.False(t, stderrors.Is(wrapped, ProfileNotFound("alice")))

	var apiErr *APIError
	assert.True(t, stderrors.As(wrapped, &apiErr))
	assert.Equal(t, KindPrivateProfile, apiErr.Kind)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrorTypeNetwork))
	assert.True(t, IsRetryable(ErrorTypeServerError))
	assert.False(t, IsRetryable(ErrorTypeRateLimit))
	assert.False(t, IsRetryable(ErrorTypeNotFound))
	assert.False(t, IsRetryable(ErrorTypeAuth))
	assert.False(t, IsRetryable(ErrorTypeParsing))
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Type: ErrorTypeNotFound, Message: "resource not found", Code: 404}
	assert.Equal(t, "instagram not_found error (code 404): resource not found", err.Error())
}
