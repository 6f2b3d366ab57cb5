package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fleetlog/fleetlog/infrastructure/service/logger"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*miniredis.Miniredis, *redisRateLimitService) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := NewRateLimitService(RateLimitConfig{Enabled: true}, client, logger.NewNopLogger())
	return mr, svc.(*redisRateLimitService)
}

func TestRateLimit_CountsUntilLimit(t *testing.T) {
	_, svc := newService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := svc.CheckLimit(ctx, "login:ip:10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
		require.NoError(t, svc.Increment(ctx, "login:ip:10.0.0.1", time.Minute))
	}

	allowed, err := svc.CheckLimit(ctx, "login:ip:10.0.0.1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	attempts, err := svc.GetAttempts(ctx, "login:ip:10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRateLimit_WindowExpires(t *testing.T) {
	mr, svc := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Increment(ctx, "k", time.Minute))
	mr.FastForward(30 * time.Second)
	require.NoError(t, svc.Increment(ctx, "k", time.Minute))
	mr.FastForward(31 * time.Second)

	attempts, err := svc.GetAttempts(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, attempts)
}

func TestRateLimit_Reset(t *testing.T) {
	_, svc := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Increment(ctx, "k", time.Minute))
	require.NoError(t, svc.Reset(ctx, "k"))

	attempts, err := svc.GetAttempts(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, attempts)
}

func TestRateLimit_Block(t *testing.T) {
	mr, svc := newService(t)
	ctx := context.Background()

	blocked, err := svc.IsBlocked(ctx, "login:user:3")
	require.NoError(t, err)
	assert.False(t, blocked)

	require.NoError(t, svc.Block(ctx, "login:user:3", time.Minute, "test"))
	blocked, err = svc.IsBlocked(ctx, "login:user:3")
	require.NoError(t, err)
	assert.True(t, blocked)
	assert.Equal(t, "test", mr.HGet(keyPrefix+"blocked:login:user:3", "reason"))

	mr.FastForward(2 * time.Minute)
	blocked, err = svc.IsBlocked(ctx, "login:user:3")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestRateLimit_RedisDown(t *testing.T) {
	mr, svc := newService(t)
	mr.Close()

	_, err := svc.CheckLimit(context.Background(), "k", 1, time.Minute)
	assert.Error(t, err)
}

func TestNewRateLimitService_Disabled(t *testing.T) {
	svc := NewRateLimitService(RateLimitConfig{Enabled: false}, nil, logger.NewNopLogger())

	allowed, err := svc.CheckLimit(context.Background(), "k", 0, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}
