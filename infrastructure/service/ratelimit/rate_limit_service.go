package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetlog/fleetlog/application/port/inbound"
	"github.com/fleetlog/fleetlog/infrastructure/service/logger"
	"github.com/fleetlog/fleetlog/pkg/requestctx"
	"github.com/go-redis/redis/v8"
)

const keyPrefix = "fleetlog:ratelimit:"

// redisRateLimitService keeps fixed-window counters and blocks in Redis
type redisRateLimitService struct {
	redisClient *redis.Client
	logger      logger.Logger
}

type RateLimitConfig struct {
	Enabled bool
}

// NewRateLimitService returns a Redis-backed limiter, or a no-op one when
// rate limiting is disabled or no client is given
func NewRateLimitService(config RateLimitConfig, client *redis.Client, log logger.Logger) inbound.RateLimitService {
	if !config.Enabled || client == nil {
		log.Info(context.Background(), "Rate limiting disabled", nil)
		return NoopRateLimitService{}
	}
	return &redisRateLimitService{redisClient: client, logger: log}
}

// CheckLimit reports whether key is still under limit
func (s *redisRateLimitService) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	current, err := s.GetAttempts(ctx, key)
	if err != nil {
		return false, err
	}

	underLimit := current < limit
	s.logger.Debug(ctx, "Rate limit check", map[string]interface{}{
		"key":         key,
		"current":     current,
		"limit":       limit,
		"under_limit": underLimit,
	})
	return underLimit, nil
}

// Increment bumps the counter of key. The window starts with the first attempt.
func (s *redisRateLimitService) Increment(ctx context.Context, key string, window time.Duration) error {
	counterKey := keyPrefix + key

	count, err := s.redisClient.Incr(ctx, counterKey).Result()
	if err != nil {
		return fmt.Errorf("failed to increment rate limit: %w", err)
	}
	if count == 1 {
		if err := s.redisClient.Expire(ctx, counterKey, window).Err(); err != nil {
			return fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	s.logger.Debug(ctx, "Rate limit incremented", map[string]interface{}{
		"key":    key,
		"count":  count,
		"window": window.String(),
	})
	return nil
}

func (s *redisRateLimitService) Reset(ctx context.Context, key string) error {
	if err := s.redisClient.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit: %w", err)
	}
	return nil
}

// Block marks key as blocked for duration
func (s *redisRateLimitService) Block(ctx context.Context, key string, duration time.Duration, reason string) error {
	blockKey := keyPrefix + "blocked:" + key

	pipeline := s.redisClient.TxPipeline()
	pipeline.HSet(ctx, blockKey, map[string]interface{}{
		"reason":         reason,
		"blocked_at":     time.Now().Unix(),
		"duration":       duration.Seconds(),
		"correlation_id": requestctx.CorrelationID(ctx),
	})
	pipeline.Expire(ctx, blockKey, duration)
	if _, err := pipeline.Exec(ctx); err != nil {
		return fmt.Errorf("failed to block key: %w", err)
	}

	s.logger.Warn(ctx, "Key blocked due to rate limit exceeded", map[string]interface{}{
		"key":      key,
		"duration": duration.String(),
		"reason":   reason,
	})
	return nil
}

func (s *redisRateLimitService) IsBlocked(ctx context.Context, key string) (bool, error) {
	exists, err := s.redisClient.Exists(ctx, keyPrefix+"blocked:"+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check block status: %w", err)
	}
	return exists > 0, nil
}

func (s *redisRateLimitService) GetAttempts(ctx context.Context, key string) (int, error) {
	count, err := s.redisClient.Get(ctx, keyPrefix+key).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get attempts: %w", err)
	}
	return count, nil
}

// NoopRateLimitService allows everything
type NoopRateLimitService struct{}

func (NoopRateLimitService) CheckLimit(context.Context, string, int, time.Duration) (bool, error) {
	return true, nil
}

func (NoopRateLimitService) Increment(context.Context, string, time.Duration) error { return nil }

func (NoopRateLimitService) Reset(context.Context, string) error { return nil }

func (NoopRateLimitService) Block(context.Context, string, time.Duration, string) error { return nil }

func (NoopRateLimitService) IsBlocked(context.Context, string) (bool, error) { return false, nil }

func (NoopRateLimitService) GetAttempts(context.Context, string) (int, error) { return 0, nil }
