package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fixconv/pkg/redis"
)

func TestLocalLimiter_Burst(t *testing.T) {
	l := NewLocalLimiter(1, 3)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d within burst", i)
	}

	ok, _ := l.Allow(ctx, "10.0.0.1")
	assert.False(t, ok, "burst exhausted")

	ok, _ = l.Allow(ctx, "10.0.0.2")
	assert.True(t, ok, "other clients have their own bucket")

	now = now.Add(time.Second)
	ok, _ = l.Allow(ctx, "10.0.0.1")
	assert.True(t, ok, "one token refilled after a second")
}

func TestLocalLimiter_SweepsIdleClients(t *testing.T) {
	l := NewLocalLimiter(1, 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	_, _ = l.Allow(context.Background(), "a")
	_, _ = l.Allow(context.Background(), "b")
	assert.Equal(t, 2, l.size())

	now = now.Add(l.idleTTL + time.Minute)
	_, _ = l.Allow(context.Background(), "c")
	assert.Equal(t, 1, l.size())
}

func TestRedisLimiter_DisabledAllows(t *testing.T) {
	rl := redis.NewRateLimiter(redis.NewFromRedis(nil), "fixconv")
	l := NewRedisLimiter(rl, 1, time.Second)

	for i := 0; i < 5; i++ {
		ok, err := l.Allow(context.Background(), "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
