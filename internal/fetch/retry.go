package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// RetryConfig is a linear backoff policy
type RetryConfig struct {
	Attempts  int
	BaseDelay time.Duration
}

// NoRetry makes a single attempt
var NoRetry = RetryConfig{Attempts: 1}

// DefaultRetryConfig retries twice, waiting 300ms then 600ms
var DefaultRetryConfig = RetryConfig{Attempts: 3, BaseDelay: 300 * time.Millisecond}

// IsRetryableStatus reports statuses worth another try
func IsRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// RetryDo calls fn until it succeeds, returns a non-retryable error, the
// attempts are exhausted or ctx is done. Only *Error values with Retryable
// set are retried.
func RetryDo[T any](ctx context.Context, rc RetryConfig, fn func() (T, error)) (T, error) {
	attempts := rc.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var (
		result T
		err    error
	)
	for i := 0; i < attempts; i++ {
		result, err = fn()
		if err == nil || !retryable(err) || i == attempts-1 {
			break
		}
		wait := rc.BaseDelay * time.Duration(i+1)
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(wait):
		}
	}
	if err != nil && attempts > 1 && retryable(err) {
		return result, fmt.Errorf("after %d attempts: %w", attempts, err)
	}
	return result, err
}

func retryable(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Retryable
}
