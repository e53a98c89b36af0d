package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnavailable marks a remote backend that could not be reached.
	ErrUnavailable = errors.New("cache unavailable")

	// ErrInvalidConfig marks a backend constructor given unusable settings.
	ErrInvalidConfig = errors.New("invalid cache configuration")
)

// RetryableError marks a transient backend failure. Backends wrap network
// errors in it; Backoff.Retry retries only these.
type RetryableError struct{ Err error }

// Retryable wraps err as transient. It returns nil for a nil err.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether any error in err's chain is a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff retries cache operations that fail with a retryable error,
// doubling the delay between attempts up to Max.
type Backoff struct {
	Attempts int           // total calls, including the first
	Delay    time.Duration // wait before the second call
	Max      time.Duration // cap on a single wait; zero means no cap
}

// DefaultBackoff is what the benchmark runner uses for report storage: three
// calls spread over about three seconds.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second, Max: 4 * time.Second}

// Retry calls fn until it succeeds, fails with a non-retryable error or the
// attempts run out, and returns the last error. A cancelled ctx stops the
// wait and returns ctx.Err().
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	delay := b.Delay
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) || attempt >= b.Attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if b.Max > 0 {
			delay = min(delay, b.Max)
		}
	}
}
