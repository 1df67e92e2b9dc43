package medtravel

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrRateLimited matches every *RateLimitError with errors.Is.
var ErrRateLimited = errors.New("rate limited")

// TranslationError reports a translate request that failed as a whole.
type TranslationError struct {
	Message string
	Cause   error
}

func (e *TranslationError) Error() string { return withCause(e.Message, e.Cause) }
func (e *TranslationError) Unwrap() error { return e.Cause }

// ProviderError reports a translation backend failure: the site's own
// /api/translate, the upstream AI provider, or a malformed answer from either.
type ProviderError struct {
	Message    string
	Cause      error
	StatusCode int  // HTTP status when the backend was reached, 0 otherwise
	Retryable  bool // see RetryableStatus
}

// NewStatusError builds the error for a non-2xx answer from a backend.
func NewStatusError(message string, status int) *ProviderError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &ProviderError{Message: message, StatusCode: status, Retryable: RetryableStatus(status)}
}

// RetryableStatus reports whether a backend answer is worth another attempt:
// the quota ran out (429) or the backend itself failed (5xx).
func RetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func (e *ProviderError) Error() string {
	msg := "provider error: " + e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	return withCause(msg, e.Cause)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// CacheError reports a translation cache failure. The pipeline treats it as
// a miss.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string { return withCause("cache error: "+e.Message, e.Cause) }
func (e *CacheError) Unwrap() error { return e.Cause }

// ScanError reports a page that could not be parsed or serialized.
type ScanError struct {
	Message string
	Cause   error
}

func (e *ScanError) Error() string { return withCause("scan error: "+e.Message, e.Cause) }
func (e *ScanError) Unwrap() error { return e.Cause }

// CountMismatchError reports a batch answered with the wrong number of
// translations. The whole batch is discarded since positions can't be trusted.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translation count mismatch: expected %d, got %d", e.Expected, e.Got)
}

// Rate limit scopes.
const (
	ScopeVisitor  = "visitor"
	ScopeUpstream = "upstream"
)

// RateLimitError is returned when a visitor's /api/translate budget or the
// upstream provider quota is used up.
type RateLimitError struct {
	Scope      string
	Key        string        // visitor key, empty for the upstream scope
	RetryAfter time.Duration // zero when unknown
	Cause      error
}

func (e *RateLimitError) Error() string {
	msg := e.Scope + " rate limit exceeded"
	if e.RetryAfter > 0 {
		msg = fmt.Sprintf("%s, retry after %s", msg, e.RetryAfter.Round(time.Millisecond))
	}
	return withCause(msg, e.Cause)
}

func (e *RateLimitError) Unwrap() error        { return e.Cause }
func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// IsRetryable reports whether err is worth another attempt. Upstream quota
// waits that ran out of time are; a visitor over budget is not.
func IsRetryable(err error) bool {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.Scope == ScopeUpstream
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

func withCause(msg string, cause error) string {
	if cause == nil {
		return msg
	}
	return msg + ": " + cause.Error()
}
