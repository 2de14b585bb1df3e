package model

import (
	"errors"
	"fmt"
	"time"
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ErrRateLimited marks a failure caused by an upstream rate limit. Providers
// that do not surface HTTP status codes wrap this sentinel instead.
var ErrRateLimited = errors.New("rate limited")

// ErrNoRecipient is returned when a digest has nowhere to send: no override,
// no stored digest email, no account email.
var ErrNoRecipient = errors.New("no recipient email configured")

// ErrUnauthorized is returned when the caller credential is missing or invalid.
var ErrUnauthorized = errors.New("unauthorized")

// IsRateLimited reports whether err signals an upstream rate limit
// (HTTP 429 or the ErrRateLimited sentinel).
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == 429
}
