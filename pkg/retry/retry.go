package retry

import (
	"context"
	"time"
)

// Policy describes a bounded exponential backoff applied around a single
// external call. Retries never span more than one call site: the caller
// wraps each embedding/LLM/store request individually so a retry can never
// replay an already committed state mutation.
type Policy struct {
	MaxAttempts int
	MinDelay    time.Duration
	MaxDelay    time.Duration
}

// DefaultPolicy mirrors the ingestion-time behavior of the upstream APIs:
// 3 attempts, exponential backoff starting at 4s and capped at 10s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		MinDelay:    4 * time.Second,
		MaxDelay:    10 * time.Second,
	}
}

// Do runs fn until it succeeds or the policy is exhausted. The last error is
// returned untouched so callers can wrap it in their own taxonomy.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(p.delay(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}
	return lastErr
}

// delay returns the backoff before the given (1-based) retry attempt.
func (p Policy) delay(attempt int) time.Duration {
	d := p.MinDelay
	if d <= 0 {
		d = time.Second
	}
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}
