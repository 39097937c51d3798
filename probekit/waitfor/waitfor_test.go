package waitfor

import (
	"context"
	"testing"
	"time"
)

func TestWaitForImmediateSuccess(t *testing.T) {
	ok := WaitFor(context.Background(), time.Second, time.Millisecond, func() bool {
		return true
	})
	if !ok {
		t.Errorf("Expected immediate success")
	}
}

func TestWaitForEventualSuccess(t *testing.T) {
	calls := 0
	ok := WaitFor(context.Background(), time.Second, time.Millisecond, func() bool {
		calls++
		return calls >= 3
	})
	if !ok {
		t.Errorf("Expected success after retries")
	}
	if calls < 3 {
		t.Errorf("Expected at least 3 calls, got %d", calls)
	}
}

func TestWaitForTimeout(t *testing.T) {
	ok := WaitFor(context.Background(), 10*time.Millisecond, time.Millisecond, func() bool {
		return false
	})
	if ok {
		t.Errorf("Expected timeout to report false")
	}
}

func TestWaitForContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok := WaitFor(ctx, time.Minute, time.Millisecond, func() bool {
		return false
	})
	if ok {
		t.Errorf("Expected cancelled context to report false")
	}
}
