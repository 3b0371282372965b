package api

import (
	"context"
	"time"
)

// RetryPolicy retries an operation on transient failure with exponential
// backoff. The zero value is not useful; start from DefaultRetryPolicy.
type RetryPolicy struct {
	// MaxAttempts is the total attempt budget, including the first call.
	MaxAttempts int
	// BaseDelay is the starting backoff delay; it doubles per attempt.
	BaseDelay time.Duration
	// MinDelay is the backoff floor.
	MinDelay time.Duration
	// MaxDelay is the backoff ceiling.
	MaxDelay time.Duration
	// Retryable decides whether an error is worth retrying.
	// Nil retries every error.
	Retryable func(error) bool
	// Sleep is the wait function between attempts. Nil uses a real
	// context-aware sleep; tests inject a fake.
	Sleep func(context.Context, time.Duration) error
}

// DefaultRetryPolicy matches the transport policy used for agent calls:
// 3 attempts total, delay doubling from 1s, clamped to [4s, 10s].
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		MinDelay:    4 * time.Second,
		MaxDelay:    10 * time.Second,
	}
}

// Delay returns the backoff delay after the given 1-based attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := p.BaseDelay << (attempt - 1)
	if d < p.MinDelay {
		d = p.MinDelay
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Do runs fn until it succeeds, the attempt budget is exhausted, or the
// error is not retryable. The last error is returned unwrapped; there is
// no silent failure path.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == p.MaxAttempts {
			break
		}
		if serr := sleep(ctx, p.Delay(attempt)); serr != nil {
			return err
		}
	}
	return err
}

// sleepContext blocks for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
