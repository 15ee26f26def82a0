// Package faults is the process-root fault barrier: captured rendering
// exceptions and recovered panics are routed through the error taxonomy and
// logger, with a bounded local retry affordance for UI subtrees.
package faults

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/pulseobs/pulse/internal/errs"
	"github.com/pulseobs/pulse/internal/logging"
)

// BarrierRetryCap bounds the local retry affordance of one barrier.
const BarrierRetryCap = 3

// Handler routes captured faults through the taxonomy and logger. One
// handler is installed at process-root scope during init and never
// re-installed.
type Handler struct {
	log *logging.Logger
}

// NewHandler creates the process-root fault handler.
func NewHandler(log *logging.Logger) *Handler {
	return &Handler{log: log}
}

// Capture classifies and reports a caught fault. The classified error is
// returned for display-layer use.
func (h *Handler) Capture(err error, logContext string) *errs.AppError {
	return errs.Classify(h.log, err, logContext)
}

// Recover is the process-wide uncaught-fault capture analog. Use in deferred
// position at goroutine roots; recovered panics are reported as defects with
// their stack.
func (h *Handler) Recover(logContext string) {
	r := recover()
	if r == nil {
		return
	}
	defect := errs.NewDefect(h.log, fmt.Sprintf("panic: %v", r), logContext)
	h.log.Error("recovered from panic", logContext, map[string]any{
		"error": defect.Message,
		"stack": string(debug.Stack()),
	})
}

// Barrier offers bounded local retry for a fallible UI-subtree operation.
// After the retry cap is exhausted, further attempts fail immediately until
// Reset (the hard-reload affordance).
type Barrier struct {
	handler    *Handler
	logContext string

	mu       sync.Mutex
	failures int
}

// NewBarrier creates a fault barrier for one subtree.
func (h *Handler) NewBarrier(logContext string) *Barrier {
	return &Barrier{handler: h, logContext: logContext}
}

// Attempt runs fn, capturing any failure. Once the retry cap is reached,
// Attempt refuses without invoking fn. A success resets the counter.
func (b *Barrier) Attempt(fn func() error) error {
	b.mu.Lock()
	if b.failures >= BarrierRetryCap {
		b.mu.Unlock()
		msg := fmt.Sprintf("retry limit reached for %s", b.logContext)
		return errs.NewApplication(b.handler.log, msg, "RETRY_LIMIT", 500, b.logContext)
	}
	b.mu.Unlock()

	if err := fn(); err != nil {
		b.mu.Lock()
		b.failures++
		b.mu.Unlock()
		return b.handler.Capture(err, b.logContext)
	}

	b.mu.Lock()
	b.failures = 0
	b.mu.Unlock()
	return nil
}

// Remaining reports how many retries are left before the barrier locks.
func (b *Barrier) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	remaining := BarrierRetryCap - b.failures
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset clears the failure counter (the hard-reload affordance).
func (b *Barrier) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
}
