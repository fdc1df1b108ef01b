package registry

import (
	"context"
	"sync"
	"time"
)

// windowLimiter enforces a fixed per-window request budget for one provider.
// An exhausted budget blocks the caller until the next window opens
// (backpressure, not rejection). The wait is bounded by the window length and
// cancellable through the caller's context. The lock is never held while
// sleeping.
type windowLimiter struct {
	mu          sync.Mutex
	limit       int
	window      time.Duration
	windowStart time.Time
	count       int

	now func() time.Time
}

func newWindowLimiter(limit int, window time.Duration) *windowLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return &windowLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Acquire consumes one budget slot, sleeping into the next window if the
// current one is spent.
func (l *windowLimiter) Acquire(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.now()
		if now.Sub(l.windowStart) >= l.window {
			l.windowStart = now
			l.count = 0
		}
		if l.count < l.limit {
			l.count++
			l.mu.Unlock()
			return nil
		}
		wait := l.windowStart.Add(l.window).Sub(now)
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
