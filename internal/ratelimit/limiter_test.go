package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFallbackLimiter(t *testing.T, limitPerMin int) *RateLimiter {
	t.Helper()

	client, err := NewRedisClient("", "", 0)
	require.NoError(t, err)
	require.False(t, client.IsEnabled())

	return NewRateLimiter(client, Config{IPLimitPerMin: limitPerMin, BurstMultiplier: 1})
}

func TestAllowIPFallback(t *testing.T) {
	rl := newFallbackLimiter(t, 60)

	result, err := rl.AllowIP(context.Background(), "10.0.0.1")

	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 60, result.Limit)
}

func TestAllowIPFallbackExhaustsBurst(t *testing.T) {
	rl := newFallbackLimiter(t, 5)

	// Burst is max(limit*multiplier, 5) = 5; the sixth immediate request
	// must be rejected.
	blocked := false
	for i := 0; i < 6; i++ {
		result, err := rl.AllowIP(context.Background(), "10.0.0.2")
		require.NoError(t, err)
		if !result.Allowed {
			blocked = true
			assert.Positive(t, result.RetryAfter)
		}
	}
	assert.True(t, blocked)
}

func TestAllowIPIsolatesAddresses(t *testing.T) {
	rl := newFallbackLimiter(t, 5)

	for i := 0; i < 6; i++ {
		_, err := rl.AllowIP(context.Background(), "10.0.0.3")
		require.NoError(t, err)
	}

	result, err := rl.AllowIP(context.Background(), "10.0.0.4")
	require.NoError(t, err)
	assert.True(t, result.Allowed, "a saturated neighbour must not block other addresses")
}
