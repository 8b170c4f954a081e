package cache

import (
	"context"
	"errors"
	"net"
	"time"
)

// transientError marks a backend failure that may succeed on a later attempt.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// transient wraps network failures so that backoff retries them. Other
// errors, including nil, pass through unchanged.
func transient(err error) error {
	var netErr net.Error
	if err == nil || !errors.As(err, &netErr) {
		return err
	}
	return &transientError{err: err}
}

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// backoff retries transient failures with a doubling delay.
type backoff struct {
	attempts int
	delay    time.Duration
}

// redisBackoff is used for every Redis round trip.
var redisBackoff = backoff{attempts: 3, delay: 100 * time.Millisecond}

// do calls fn until it succeeds, fails permanently, or the attempts run out.
// The last transient error is returned unwrapped.
func (b backoff) do(ctx context.Context, fn func() error) error {
	delay := b.delay
	for i := 1; ; i++ {
		err := fn()
		if !isTransient(err) {
			return err
		}
		if i >= b.attempts {
			return errors.Unwrap(err)
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
