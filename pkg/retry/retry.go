package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy wraps a fallible operation with bounded retries and linear
// backoff: after attempt n fails, it sleeps Delay * n before the next
// attempt. The last error is returned after attempts are exhausted.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Default is the policy used by gateways when none is configured.
var Default = Policy{MaxAttempts: 3, Delay: time.Second}

// Do runs op until it succeeds, attempts are exhausted, or the context is
// cancelled. Cancellation is observed both between attempts and while
// sleeping, so in-flight retries stop promptly.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt == attempts {
			break
		}

		timer := time.NewTimer(p.Delay * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}
