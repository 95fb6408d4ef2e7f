package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Rate limiting key pattern: ratelimit:{ip}:auth - 60s TTL, per-minute auth attempts.

// RateLimiter caps authentication attempts per client IP using a fixed
// INCR+EXPIRE window in Redis.
type RateLimiter struct {
	client *goredis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(client *goredis.Client, limit int) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: 60 * time.Second,
	}
}

// AllowAuth reports whether another auth attempt from ip is within the window
// limit. Fails open: if Redis is unreachable the attempt is allowed.
func (r *RateLimiter) AllowAuth(ctx context.Context, ip string) bool {
	key := fmt.Sprintf("ratelimit:%s:auth", ip)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return true
	}
	if count == 1 {
		r.client.Expire(ctx, key, r.window)
	}
	return count <= int64(r.limit)
}
