package retry

import (
	"context"
	"time"

	"github.com/medops/hospital-assistant/common/logger"
	"github.com/medops/hospital-assistant/metrics"
)

const (
	// DefaultRetries is the number of retries after the initial attempt.
	DefaultRetries = 2
	// DefaultDelay is the fixed wait between attempts. No jitter, no
	// exponential growth: remote collaborators here are idempotent and
	// the attempt budget is small.
	DefaultDelay = 2 * time.Second
)

// Do runs op up to retries+1 times, waiting delay between attempts.
// Every attempt is logged with its number and outcome. The error of the
// final attempt is returned; callers decide whether that error is fatal
// (generation calls) or folds into an error envelope (query calls).
func Do[T any](ctx context.Context, name string, retries int, delay time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	if retries < 0 {
		retries = 0
	}
	var zero T
	var lastErr error
	for attempt := 1; attempt <= retries+1; attempt++ {
		logger.Infof("%s: attempt %d/%d", name, attempt, retries+1)
		out, err := op(ctx)
		if err == nil {
			metrics.ObserveAttempt(name, "ok")
			return out, nil
		}
		lastErr = err
		metrics.ObserveAttempt(name, "error")
		logger.Errorf("%s failed (attempt %d): %v", name, attempt, err)
		if attempt <= retries {
			logger.Infof("%s: retrying in %v (attempt %d/%d)", name, delay, attempt+1, retries+1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}
	}
	return zero, lastErr
}
