package security

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter in Redis. Purchase attempts are
// limited per buyer so a retry storm after a lost purchase race cannot
// hammer the store.
type RateLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(redisClient *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		limit:  limit,
		window: window,
	}
}

// Allow reports whether the caller identified by key may proceed. Redis
// failures fail open: rate limiting is protection, not a correctness
// requirement.
func (r *RateLimiter) Allow(ctx context.Context, key string) bool {
	if r == nil || r.redis == nil {
		return true
	}

	bucket := fmt.Sprintf("ratelimit:%s", key)
	count, err := r.redis.Incr(ctx, bucket).Result()
	if err != nil {
		return true
	}
	if count == 1 {
		r.redis.Expire(ctx, bucket, r.window)
	}
	return count <= int64(r.limit)
}
