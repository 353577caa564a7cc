// Package errors holds the two error families of the service: failures
// reported by the Instagram client (Error) and the closed set of domain
// errors that cross the HTTP boundary (APIError).
package errors

import (
	"fmt"
	"net/http"
)

// ErrorType classifies a failure talking to Instagram
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error is returned by the Instagram client
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

// NewError builds an upstream error
func NewError(t ErrorType, message string, code int) *Error {
	return &Error{Type: t, Message: message, Code: code}
}

func (e *Error) Error() string {
	return fmt.Sprintf("instagram %s error (code %d): %s", e.Type, e.Code, e.Message)
}

// IsRetryable reports whether a request that failed with errorType may
// succeed when sent again. Rate limits are surfaced to the caller instead
// of being retried.
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// Kind enumerates the domain errors
type Kind int

const (
	KindProfileNotFound Kind = iota + 1
	KindPostNotFound
	KindPrivateProfile
	KindInvalidURL
	KindRateLimit
	KindConnectionError
)

// Machine readable codes carried in error bodies
const (
	CodeProfileNotFound  = "PROFILE_NOT_FOUND"
	CodePostNotFound     = "POST_NOT_FOUND"
	CodePrivateProfile   = "PRIVATE_PROFILE"
	CodeInvalidURL       = "INVALID_URL"
	CodeRateLimit        = "RATE_LIMIT_EXCEEDED"
	CodeConnectionError  = "CONNECTION_ERROR"
	CodeInternal         = "INTERNAL_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeValidation       = "VALIDATION_ERROR"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeUnauthorized     = "UNAUTHORIZED"
)

var kinds = map[Kind]struct {
	status int
	code   string
}{
	KindProfileNotFound: {http.StatusNotFound, CodeProfileNotFound},
	KindPostNotFound:    {http.StatusNotFound, CodePostNotFound},
	KindPrivateProfile:  {http.StatusForbidden, CodePrivateProfile},
	KindInvalidURL:      {http.StatusBadRequest, CodeInvalidURL},
	KindRateLimit:       {http.StatusTooManyRequests, CodeRateLimit},
	KindConnectionError: {http.StatusServiceUnavailable, CodeConnectionError},
}

// Status is the HTTP status the kind is served with
func (k Kind) Status() int {
	if info, ok := kinds[k]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// Code is the machine readable error code of the kind
func (k Kind) Code() string {
	if info, ok := kinds[k]; ok {
		return info.code
	}
	return CodeInternal
}

// APIError is a domain error. Its Detail is safe to show to API callers.
type APIError struct {
	Kind   Kind
	Detail string
}

func (e *APIError) Error() string {
	return e.Detail
}

// Status returns the HTTP status for the error
func (e *APIError) Status() int { return e.Kind.Status() }

// Code returns the machine readable code for the error
func (e *APIError) Code() string { return e.Kind.Code() }

// Is matches any APIError of the same kind, so errors.Is(err,
// PrivateProfile("")) works regardless of the identifier.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Kind == e.Kind
}

// ProfileNotFound reports that no user has the given username (404)
func ProfileNotFound(username string) *APIError {
	return &APIError{Kind: KindProfileNotFound, Detail: fmt.Sprintf("Profile '%s' not found", username)}
}

// PostNotFound reports that no post has the given shortcode (404)
func PostNotFound(shortcode string) *APIError {
	return &APIError{Kind: KindPostNotFound, Detail: fmt.Sprintf("Post '%s' not found", shortcode)}
}

// PrivateProfile reports that the user's posts are not public (403)
func PrivateProfile(username string) *APIError {
	return &APIError{Kind: KindPrivateProfile, Detail: fmt.Sprintf("Profile '%s' is private", username)}
}

// InvalidURL reports a URL that holds no Instagram post shortcode (400)
func InvalidURL(url string) *APIError {
	return &APIError{Kind: KindInvalidURL, Detail: fmt.Sprintf("Invalid Instagram URL: %s", url)}
}

// RateLimit reports that Instagram throttled the request (429)
func RateLimit() *APIError {
	return &APIError{Kind: KindRateLimit, Detail: "Rate limit exceeded. Please try again later"}
}

// ConnectionError covers any other upstream failure (503)
func ConnectionError() *APIError {
	return &APIError{Kind: KindConnectionError, Detail: "Unable to connect to Instagram"}
}
