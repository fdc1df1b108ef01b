package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowLimiter_BudgetWithinWindow(t *testing.T) {
	l := newWindowLimiter(5, time.Minute)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Acquire(ctx))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond, "calls within budget must not block")
}

func TestWindowLimiter_BlocksUntilNextWindow(t *testing.T) {
	l := newWindowLimiter(2, 80*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))
	require.NoError(t, l.Acquire(ctx))

	// Third call exceeds the budget: it must wait for the window to roll,
	// not fail.
	start := time.Now()
	require.NoError(t, l.Acquire(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestWindowLimiter_WaitIsCancellable(t *testing.T) {
	l := newWindowLimiter(1, time.Minute)
	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := l.Acquire(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
