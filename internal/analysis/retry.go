package analysis

import (
	"context"
	"log/slog"
	"math"
	"time"
)

// Completer abstracts the analysis client for the analyzers; tests substitute
// a stub.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// backoffFor computes the wait before retrying a failed attempt (1-based).
// A server-provided Retry-After wins; otherwise exponential 2^attempt
// seconds.
func backoffFor(err error, attempt int) time.Duration {
	if rl, ok := IsRateLimit(err); ok && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

// withRetry runs op up to maxAttempts times, backing off between attempts.
// Both analyzers share this loop with identical settings: 3 attempts,
// exponential backoff, 429-aware.
func withRetry(ctx context.Context, logger *slog.Logger, maxAttempts int, op func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt == maxAttempts {
			break
		}

		wait := backoffFor(err, attempt)
		logger.Warn("analysis call failed, retrying",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"backoff", wait,
			"error", err,
		)
		if sleepErr := sleepCtx(ctx, wait); sleepErr != nil {
			return sleepErr
		}
	}
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
