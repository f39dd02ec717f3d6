package cache

import (
	"context"
	"time"
)

// Connection attempts made by [NewRedisCache] before giving up.
const (
	connectAttempts = 3
	connectDelay    = 200 * time.Millisecond
)

// retry calls fn up to attempts times, doubling delay after each failure.
// It returns nil on the first success, ctx.Err() if ctx ends while waiting,
// and the last error otherwise.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func(context.Context) error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return lastErr
}
