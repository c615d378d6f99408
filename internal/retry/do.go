package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bayoss/landscape2/internal/foundation/errors"
	"github.com/bayoss/landscape2/internal/logfields"
)

// Do runs fn until it succeeds, returns a non-retryable error, or the policy's
// retries are exhausted. Only classified errors whose retry strategy allows it are
// retried. Waiting between attempts is interrupted by ctx cancellation.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			delay := p.Delay(attempt)
			slog.Debug("Retrying after transient failure",
				logfields.Attempt(attempt),
				slog.Duration("delay", delay),
				logfields.Error(err))
			if waitErr := sleep(ctx, delay); waitErr != nil {
				return fmt.Errorf("%w: %w", waitErr, err)
			}
		}
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !retryable(err) || attempt >= p.MaxRetries {
			return err
		}
	}
}

func retryable(err error) bool {
	ce, ok := errors.AsClassified(err)
	return ok && ce.CanRetry()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
