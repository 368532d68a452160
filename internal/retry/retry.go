package retry

import (
	"context"
	"errors"
	"time"
)

type Config struct {
	MaxAttempts int
	Delay       time.Duration
}

// RateLimitError marks a failure where the server dictated how long to wait
// before the next attempt. It is retried like any other failure, but sleeps
// for the server-specified delay instead of the linear backoff.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return "rate limited, retry after " + e.RetryAfter.String()
}

// Do runs fn until it succeeds or the attempt cap is reached. Generic
// failures back off linearly (attempt number times Delay); rate-limit
// failures sleep for the server-specified delay. The last error is returned
// when all attempts are exhausted.
func Do(ctx context.Context, config Config, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == config.MaxAttempts {
			break
		}

		delay := time.Duration(attempt) * config.Delay
		var rateLimited *RateLimitError
		if errors.As(err, &rateLimited) {
			delay = rateLimited.RetryAfter
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastErr
}
