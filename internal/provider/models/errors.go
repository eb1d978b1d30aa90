package models

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for common provider failures.
var (
	ErrContentBlocked     = errors.New("content blocked by safety filters")
	ErrRateLimit          = errors.New("rate limit exceeded")
	ErrAuthentication     = errors.New("authentication failed")
	ErrNetwork            = errors.New("network error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrEmptyResponse      = errors.New("empty response")
)

// ErrorCode represents a provider error code.
type ErrorCode string

const (
	ErrorCodeContentBlocked ErrorCode = "content_blocked"
	ErrorCodeRateLimit      ErrorCode = "rate_limit"
	ErrorCodeAuth           ErrorCode = "authentication_failed"
	ErrorCodeNetwork        ErrorCode = "network_error"
	ErrorCodeTimeout        ErrorCode = "timeout"
	ErrorCodeUnavailable    ErrorCode = "service_unavailable"
	ErrorCodeInvalidRequest ErrorCode = "invalid_request"
	ErrorCodeEmptyResponse  ErrorCode = "empty_response"
)

var codeSentinels = map[ErrorCode]error{
	ErrorCodeContentBlocked: ErrContentBlocked,
	ErrorCodeRateLimit:      ErrRateLimit,
	ErrorCodeAuth:           ErrAuthentication,
	ErrorCodeNetwork:        ErrNetwork,
	ErrorCodeUnavailable:    ErrServiceUnavailable,
	ErrorCodeInvalidRequest: ErrInvalidRequest,
	ErrorCodeEmptyResponse:  ErrEmptyResponse,
}

// ProviderError wraps transport failures with additional context.
type ProviderError struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Retryable  bool
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

// Is matches the sentinel error for the error's code, so callers can write
// errors.Is(err, models.ErrAuthentication).
func (e *ProviderError) Is(target error) bool {
	sentinel, ok := codeSentinels[e.Code]
	return ok && sentinel == target
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}
	return false
}

// TransportError wraps a non-API failure (dial error, cancelled context, ...).
func TransportError(err error) *ProviderError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Code: ErrorCodeTimeout, Message: "request timeout", Underlying: err, Retryable: true}
	}
	if errors.Is(err, context.Canceled) {
		return &ProviderError{Code: ErrorCodeNetwork, Message: "request cancelled", Underlying: err}
	}
	return &ProviderError{Code: ErrorCodeNetwork, Message: "network error", Underlying: err, Retryable: true}
}

// ErrorFromStatus maps an HTTP status code returned by a model API to a ProviderError.
func ErrorFromStatus(status int, message string, underlying error) *ProviderError {
	switch status {
	case 401, 403:
		return &ProviderError{Code: ErrorCodeAuth, Message: "authentication failed", Underlying: underlying}
	case 429:
		return &ProviderError{Code: ErrorCodeRateLimit, Message: "rate limit exceeded", Underlying: underlying, Retryable: true}
	case 400, 404, 422:
		return &ProviderError{Code: ErrorCodeInvalidRequest, Message: fmt.Sprintf("invalid request: %s", message), Underlying: underlying}
	case 408:
		return &ProviderError{Code: ErrorCodeTimeout, Message: "request timeout", Underlying: underlying, Retryable: true}
	case 500, 502, 503, 504:
		return &ProviderError{Code: ErrorCodeUnavailable, Message: "service unavailable", Underlying: underlying, Retryable: true}
	default:
		return &ProviderError{Code: ErrorCodeNetwork, Message: fmt.Sprintf("API error: %s", message), Underlying: underlying, Retryable: true}
	}
}
