package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitConsumesWeight(t *testing.T) {
	rl := New(100, time.Second)

	err := rl.Wait(context.Background())
	require.NoError(t, err)

	m := rl.Metrics()
	assert.Equal(t, int64(1), m.TotalRequests)
	assert.Equal(t, int64(1), m.AllowedRequests)
	assert.Equal(t, int64(1), m.ConsumedWeight)
}

func TestWaitWeight(t *testing.T) {
	rl := New(100, time.Second)

	err := rl.WaitWeight(context.Background(), 60)
	require.NoError(t, err)

	m := rl.Metrics()
	assert.Equal(t, int64(60), m.ConsumedWeight)
}

func TestWaitWeightNonPositive(t *testing.T) {
	rl := New(10, time.Second)

	err := rl.WaitWeight(context.Background(), 0)
	require.NoError(t, err)

	m := rl.Metrics()
	assert.Equal(t, int64(1), m.ConsumedWeight)
}

func TestWaitWeightContextCancelled(t *testing.T) {
	rl := New(1, time.Minute)

	// Drain the bucket, then a second call must block and observe the
	// cancelled context.
	require.NoError(t, rl.WaitWeight(context.Background(), 1))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := rl.WaitWeight(ctx, 1)
	require.Error(t, err)

	m := rl.Metrics()
	assert.Equal(t, int64(1), m.DeniedRequests)
}

func TestAllow(t *testing.T) {
	rl := New(2, time.Minute)

	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	m := rl.Metrics()
	assert.Equal(t, int64(2), m.AllowedRequests)
	assert.Equal(t, int64(1), m.DeniedRequests)
}

func TestSetLimit(t *testing.T) {
	rl := New(1, time.Minute)
	rl.SetLimit(50, time.Second)

	for i := 0; i < 10; i++ {
		require.NoError(t, rl.WaitWeight(context.Background(), 5))
	}
	assert.Equal(t, int64(50), rl.Metrics().ConsumedWeight)
}
