package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottle_BurstThenDenied(t *testing.T) {
	throttle := NewThrottle(1, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, throttle.Allow(), "burst token %d should be granted", i+1)
	}
	assert.False(t, throttle.Allow(), "the bucket should be empty after the burst")
}

func TestThrottle_Refills(t *testing.T) {
	throttle := NewThrottle(1000, 1) // refills a token every millisecond

	require.True(t, throttle.Allow())
	require.False(t, throttle.Allow())

	time.Sleep(5 * time.Millisecond)
	assert.True(t, throttle.Allow(), "token should have refilled")
}

func TestThrottle_WaitBlocksUntilToken(t *testing.T) {
	throttle := NewThrottle(1000, 1)
	require.True(t, throttle.Allow())

	start := time.Now()
	require.NoError(t, throttle.Wait(context.Background()))
	assert.Less(t, time.Since(start), time.Second)
}

func TestThrottle_WaitHonoursCancellation(t *testing.T) {
	throttle := NewThrottle(0.001, 1) // next token is ~17 minutes away
	require.True(t, throttle.Allow())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- throttle.Wait(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after cancellation")
	}
}

func TestThrottle_NilNeverBlocks(t *testing.T) {
	var throttle *Throttle

	assert.True(t, throttle.Allow())
	assert.NoError(t, throttle.Wait(context.Background()))
}
