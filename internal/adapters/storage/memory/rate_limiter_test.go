package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.IsAllowed(ctx, "10.0.0.1", 3, time.Hour)
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
	}
	ok, err := l.IsAllowed(ctx, "10.0.0.1", 3, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.IsAllowed(ctx, "10.0.0.2", 3, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "keys are limited independently")
}

func TestRateLimiterDisabled(t *testing.T) {
	ok, err := NewRateLimiter().IsAllowed(context.Background(), "k", 0, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimiter_SweepDropsIdleKeys(t *testing.T) {
	l := NewRateLimiter()
	now := time.Date(2023, 10, 25, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		_, err := l.IsAllowed(ctx, ip, 2, time.Minute)
		require.NoError(t, err)
	}
	require.Equal(t, 3, l.Len())

	now = now.Add(30 * time.Second)
	assert.Zero(t, l.Sweep(), "nothing is idle for a full window yet")
	_, err := l.IsAllowed(ctx, "10.0.0.2", 2, time.Minute)
	require.NoError(t, err)

	now = now.Add(45 * time.Second)
	assert.Equal(t, 2, l.Sweep())
	assert.Equal(t, 1, l.Len())

	ok, err := l.IsAllowed(ctx, "10.0.0.1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "a swept key starts with a full bucket")
}
