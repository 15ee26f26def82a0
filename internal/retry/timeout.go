package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/pulseobs/pulse/internal/errs"
	"github.com/pulseobs/pulse/internal/logging"
)

// WithTimeout races op against a timer. On expiry it returns a network-kind
// error carrying the elapsed bound. Known limitation: the losing operation is
// abandoned, not stopped; it keeps running in its goroutine.
func WithTimeout[T any](
	ctx context.Context,
	log *logging.Logger,
	op Operation[T],
	bound time.Duration,
	logContext string,
) (T, error) {
	var zero T

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		v, err := op(ctx)
		done <- outcome{value: v, err: err}
	}()

	timer := time.NewTimer(bound)
	defer timer.Stop()

	select {
	case out := <-done:
		if out.err != nil {
			return zero, errs.Classify(log, out.err, logContext)
		}
		return out.value, nil
	case <-ctx.Done():
		return zero, errs.Classify(log, ctx.Err(), logContext)
	case <-timer.C:
		msg := fmt.Sprintf("operation timed out after %s", bound)
		return zero, errs.NewNetwork(log, msg, logContext)
	}
}
