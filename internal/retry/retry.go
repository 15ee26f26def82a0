// Package retry executes operations with bounded retries and exponential
// backoff plus jitter.
package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/pulseobs/pulse/internal/errs"
	"github.com/pulseobs/pulse/internal/logging"
	"github.com/pulseobs/pulse/internal/metrics"
)

// Config defines retry behavior for one invocation.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Context     string
}

// DefaultConfig provides sensible defaults.
var DefaultConfig = Config{
	MaxAttempts: 3,
	BaseDelay:   1 * time.Second,
	MaxDelay:    10 * time.Second,
}

// jitterMax bounds the uniform random jitter added to each backoff delay.
const jitterMax = 1 * time.Second

// Operation is a fallible unit of work executed under retry.
type Operation[T any] func(ctx context.Context) (T, error)

// Do runs op up to cfg.MaxAttempts times, strictly sequentially. On failure
// the error is classified, and if attempts remain the engine sleeps
// min(base*2^(attempt-1) + jitter, max) before the next attempt. No delay
// follows the final attempt. Cancellation is honored while sleeping.
func Do[T any](ctx context.Context, log *logging.Logger, op Operation[T], cfg Config) (T, error) {
	var zero T
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig.MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultConfig.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultConfig.MaxDelay
	}

	var lastErr *errs.AppError

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		log.Debug("retry attempt", cfg.Context, map[string]any{
			"attempt":      attempt,
			"max_attempts": cfg.MaxAttempts,
		})

		result, err := op(ctx)
		if err == nil {
			metrics.RetryAttempts.WithLabelValues("success").Inc()
			return result, nil
		}

		metrics.RetryAttempts.WithLabelValues("failure").Inc()
		lastErr = errs.Classify(log, err, cfg.Context)

		if attempt == cfg.MaxAttempts {
			break
		}

		delay := backoffDelay(attempt, cfg)
		log.Warn("retry attempt failed", cfg.Context, map[string]any{
			"attempt": attempt,
			"delay":   delay.String(),
			"error":   lastErr.Error(),
		})

		select {
		case <-ctx.Done():
			return zero, errs.Classify(log, ctx.Err(), cfg.Context)
		case <-time.After(delay):
		}
	}

	metrics.RetriesExhausted.Inc()
	log.Error("all retry attempts failed", cfg.Context, map[string]any{
		"attempts": cfg.MaxAttempts,
		"error":    lastErr.Error(),
	})
	return zero, lastErr
}

// backoffDelay calculates min(base*2^(attempt-1) + uniform(0,jitterMax), max).
func backoffDelay(attempt int, cfg Config) time.Duration {
	delay := cfg.BaseDelay << (attempt - 1)
	delay += time.Duration(rand.Int63n(int64(jitterMax)))
	if delay > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	return delay
}
