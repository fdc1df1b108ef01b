package registry

import (
	"sync"
	"time"
)

type circuitState int

const (
	circuitClosed circuitState = iota
	circuitOpen
	circuitHalfOpen
)

// breaker tracks consecutive failures for one provider. After the threshold it
// opens and short-circuits calls until the reset timeout elapses, then lets a
// single probe through: success closes it, failure restarts the open clock.
// Allow is a local decision; it never touches the network.
type breaker struct {
	mu           sync.Mutex
	threshold    int
	resetTimeout time.Duration

	state    circuitState
	failures int
	openedAt time.Time

	now func() time.Time // injectable for tests
}

func newBreaker(threshold int, resetTimeout time.Duration) *breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if resetTimeout <= 0 {
		resetTimeout = time.Minute
	}
	return &breaker{
		threshold:    threshold,
		resetTimeout: resetTimeout,
		now:          time.Now,
	}
}

// Allow reports whether a call may proceed, transitioning open circuits to
// half-open once the reset timeout has elapsed.
func (b *breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case circuitClosed, circuitHalfOpen:
		return true
	case circuitOpen:
		if b.now().Sub(b.openedAt) >= b.resetTimeout {
			b.state = circuitHalfOpen
			return true
		}
		return false
	}
	return true
}

func (b *breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.state = circuitClosed
}

func (b *breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == circuitHalfOpen {
		// Probe failed: reopen and restart the clock.
		b.state = circuitOpen
		b.openedAt = b.now()
		return
	}

	b.failures++
	if b.failures >= b.threshold {
		b.state = circuitOpen
		b.openedAt = b.now()
	}
}

// IsOpen reports the current state without side effects.
func (b *breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == circuitOpen
}
