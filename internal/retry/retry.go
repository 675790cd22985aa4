package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy configures Do.
type Policy struct {
	// MaxAttempts is the total number of calls, including the first (minimum 1).
	MaxAttempts int

	// BaseDelay is the first backoff delay.
	BaseDelay time.Duration

	// MaxDelay caps any single delay (0 = uncapped).
	MaxDelay time.Duration

	// Multiplier grows the delay between attempts.
	Multiplier float64

	// Seed makes jitter deterministic when non-zero (tests).
	Seed int64
}

// Do calls fn until it succeeds, returns a non-retryable error, the attempts are
// exhausted, or ctx is done.
//
// Parameters:
//   - ctx: Context for cancellation; also passed to fn
//   - p: Retry policy
//   - retryable: Classifies errors; nil treats every error as final
//   - onRetry: Optional callback invoked before each sleep
//   - fn: Operation to run
//
// Returns:
//   - error: nil on success, otherwise the last error from fn (or ctx.Err wrapped
//     around it when cancelled while waiting)
//
// Example:
//
//	err := retry.Do(ctx, policy, isTransient, nil, func(ctx context.Context) error {
//	    return store.Append(ctx, rec)
//	})
func Do(
	ctx context.Context,
	p Policy,
	retryable func(error) bool,
	onRetry func(attempt int, delay time.Duration, err error),
	fn func(ctx context.Context) error,
) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	bo := newBackoff(p)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if retryable == nil || !retryable(lastErr) || attempt == attempts {
			return lastErr
		}
		if ctx.Err() != nil {
			return lastErr
		}

		delay := bo.next()
		if onRetry != nil {
			onRetry(attempt, delay, lastErr)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w (gave up waiting: %w)", lastErr, ctx.Err())
		case <-timer.C:
		}
	}

	return lastErr
}
