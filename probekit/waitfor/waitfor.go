package waitfor

import (
	"context"
	"time"
)

// DefaultInterval is how often WaitFor re-evaluates its predicate when the
// caller passes a non-positive interval.
const DefaultInterval = time.Second

// WaitFor polls predicate until it returns true, the timeout elapses, or ctx
// is done. It reports whether the predicate ever returned true.
func WaitFor(ctx context.Context, timeout, interval time.Duration, predicate func() bool) bool {
	if interval <= 0 {
		interval = DefaultInterval
	}

	deadline := time.Now().Add(timeout)
	for {
		if predicate() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
	}
}
