package gateway

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrClassification = errors.New("classification failed")
	ErrSelection      = errors.New("outfit selection failed")
	ErrIllustration   = errors.New("illustration failed")
	ErrRateLimited    = errors.New("rate limited")
	ErrUnsupported    = errors.New("operation not supported by backend")
)

// RateLimitError is returned by backends when the provider asked us to slow
// down. It is the only error Client retries.
type RateLimitError struct {
	// RetryAfter is the provider's hint; zero means no hint.
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

func (e *RateLimitError) Retryable() bool { return true }

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl) && rl.Retryable()
}
