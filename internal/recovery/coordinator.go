// Package recovery wraps fallible long-lived-subsystem operations with
// capped, cooling-down recovery attempts keyed by a context label.
package recovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pulseobs/pulse/internal/errs"
	"github.com/pulseobs/pulse/internal/logging"
	"github.com/pulseobs/pulse/internal/metrics"
)

const (
	// DefaultMaxAttempts is the per-label attempt ceiling.
	DefaultMaxAttempts = 3
	// DefaultCooldown is the fixed wait enforced between attempts on the
	// same label.
	DefaultCooldown = 30 * time.Second
)

// labelState tracks recovery progress for one context label.
type labelState struct {
	failures    int
	lastAttempt time.Time
}

// Coordinator tracks recovery attempts per context label across calls.
// Unlike the retry engine, it applies a fixed cooldown instead of exponential
// backoff, and its counters persist until a success resets them.
type Coordinator struct {
	log         *logging.Logger
	maxAttempts int
	cooldown    time.Duration

	mu     sync.Mutex
	labels map[string]*labelState
}

// NewCoordinator creates a recovery coordinator. Non-positive settings fall
// back to the defaults.
func NewCoordinator(log *logging.Logger, maxAttempts int, cooldown time.Duration) *Coordinator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Coordinator{
		log:         log,
		maxAttempts: maxAttempts,
		cooldown:    cooldown,
		labels:      make(map[string]*labelState),
	}
}

// Attempt runs op once under the label's recovery policy. Once the label has
// failed maxAttempts times, further calls fail immediately without invoking
// op until the counter is reset; any success resets it. The cooldown since
// the label's previous attempt is waited out first, honoring ctx.
func Attempt[T any](
	ctx context.Context,
	c *Coordinator,
	label string,
	op func(ctx context.Context) (T, error),
) (T, error) {
	var zero T

	wait, err := c.begin(label)
	if err != nil {
		metrics.RecoveryAttempts.WithLabelValues("refused").Inc()
		return zero, err
	}

	if wait > 0 {
		c.log.Debug("recovery cooldown", label, map[string]any{
			"wait": wait.String(),
		})
		select {
		case <-ctx.Done():
			return zero, errs.Classify(c.log, ctx.Err(), label)
		case <-time.After(wait):
		}
	}

	c.markAttempt(label)
	result, opErr := op(ctx)
	if opErr == nil {
		c.Reset(label)
		metrics.RecoveryAttempts.WithLabelValues("success").Inc()
		c.log.Info("recovery succeeded", label, nil)
		return result, nil
	}

	failures := c.markFailure(label)
	metrics.RecoveryAttempts.WithLabelValues("failure").Inc()
	c.log.Warn("recovery attempt failed", label, map[string]any{
		"failures":     failures,
		"max_attempts": c.maxAttempts,
		"error":        opErr.Error(),
	})
	return zero, errs.Classify(c.log, opErr, label)
}

// Reset clears the label's counter, re-enabling recovery attempts. Called
// automatically on success.
func (c *Coordinator) Reset(label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.labels, label)
}

// Failures returns the label's consecutive failure count.
func (c *Coordinator) Failures(label string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if state, ok := c.labels[label]; ok {
		return state.failures
	}
	return 0
}

// begin checks the ceiling and returns the remaining cooldown to wait.
func (c *Coordinator) begin(label string) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, ok := c.labels[label]
	if !ok {
		return 0, nil
	}
	if state.failures >= c.maxAttempts {
		msg := fmt.Sprintf("max recovery attempts reached for %s", label)
		return 0, errs.NewApplication(c.log, msg, "RECOVERY_EXHAUSTED", 500, label)
	}

	elapsed := time.Since(state.lastAttempt)
	if elapsed < c.cooldown {
		return c.cooldown - elapsed, nil
	}
	return 0, nil
}

func (c *Coordinator) markAttempt(label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.labels[label]
	if !ok {
		state = &labelState{}
		c.labels[label] = state
	}
	state.lastAttempt = time.Now()
}

func (c *Coordinator) markFailure(label string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.labels[label]
	if !ok {
		state = &labelState{}
		c.labels[label] = state
	}
	state.failures++
	return state.failures
}
