package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter answers whether a caller is within its request budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, err error)
}

// RedisLimiter is a fixed-window counter over Redis.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter constructs a RedisLimiter.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

// Allow increments the caller's counter and reports whether the request
// fits the window budget. The first hit in a window sets the expiry.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, 0, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			log.Printf("rate limit expire failed: %v", err)
		}
	}
	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return int(count) <= l.limit, remaining, nil
}

// NoopLimiter admits everything; used when Redis is not configured.
type NoopLimiter struct{}

func (NoopLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	return true, 0, nil
}
