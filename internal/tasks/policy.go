package tasks

import (
	"context"
	"math"
	"time"
)

// Policy bounds the retries of a single step: attempt ceiling,
// exponential backoff schedule, and a per-attempt timeout.
type Policy struct {
	MaxAttempts       int
	BaseDelay         time.Duration
	BackoffMultiplier float64
	Timeout           time.Duration
}

// Delay returns the backoff before the given attempt's retry:
// BaseDelay * BackoffMultiplier^(attempt-1).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(float64(p.BaseDelay) * math.Pow(p.BackoffMultiplier, float64(attempt-1)))
}

// sleepFunc waits for d or until ctx is done. Swappable in tests.
type sleepFunc func(ctx context.Context, d time.Duration) error

func realSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// runWithPolicy executes fn under the policy's retry schedule. Each
// attempt runs under its own timeout; a timed-out attempt counts
// against MaxAttempts. When attempts are exhausted the last attempt's
// error is returned.
func runWithPolicy(ctx context.Context, p Policy, sleep sleepFunc, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if p.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		}
		err := fn(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == p.MaxAttempts {
			break
		}
		if err := sleep(ctx, p.Delay(attempt)); err != nil {
			// The run itself was cancelled; report the step's cause.
			return lastErr
		}
	}
	return lastErr
}
