package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := newBreaker(3, time.Minute)

	b.RecordFailure()
	b.RecordFailure()
	assert.True(t, b.Allow(), "below threshold stays closed")

	b.RecordFailure()
	assert.False(t, b.Allow(), "threshold reached opens the circuit")
	assert.True(t, b.IsOpen())
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := newBreaker(3, time.Minute)

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()

	b.RecordFailure()
	b.RecordFailure()
	assert.True(t, b.Allow(), "count restarted after success")
}

func TestBreaker_HalfOpenAfterResetTimeout(t *testing.T) {
	now := time.Now()
	b := newBreaker(1, time.Minute)
	b.now = func() time.Time { return now }

	b.RecordFailure()
	assert.False(t, b.Allow())

	// Just before the reset timeout: still open.
	now = now.Add(59 * time.Second)
	assert.False(t, b.Allow())

	// Past the reset timeout: one probe is let through.
	now = now.Add(2 * time.Second)
	assert.True(t, b.Allow())
}

func TestBreaker_ProbeSuccessCloses(t *testing.T) {
	now := time.Now()
	b := newBreaker(1, time.Minute)
	b.now = func() time.Time { return now }

	b.RecordFailure()
	now = now.Add(61 * time.Second)
	assert.True(t, b.Allow())

	b.RecordSuccess()
	assert.True(t, b.Allow())
	assert.False(t, b.IsOpen())
}

func TestBreaker_ProbeFailureRestartsClock(t *testing.T) {
	now := time.Now()
	b := newBreaker(1, time.Minute)
	b.now = func() time.Time { return now }

	b.RecordFailure()
	now = now.Add(61 * time.Second)
	assert.True(t, b.Allow()) // half-open probe

	b.RecordFailure() // probe failed

	// The open clock restarted at the probe failure, not the original open.
	now = now.Add(30 * time.Second)
	assert.False(t, b.Allow())
	now = now.Add(31 * time.Second)
	assert.True(t, b.Allow())
}
