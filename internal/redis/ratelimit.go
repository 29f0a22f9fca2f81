package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Rate limiting key pattern:
// - ratelimit:{key}:writes - windowed counter for write requests

type RateLimitConfig struct {
	WriteLimit  int           // Max write requests per window
	WriteWindow time.Duration // Write rate limit window
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		WriteLimit:  60,
		WriteWindow: 60 * time.Second,
	}
}

type RateLimiter struct {
	client *goredis.Client
	config RateLimitConfig
}

type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
	Limit     int
}

func NewRateLimiter(client *goredis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{client: client, config: config}
}

// AllowWrite checks whether the caller identified by key may issue another
// write request in the current window.
func (r *RateLimiter) AllowWrite(ctx context.Context, key string) (*RateLimitResult, error) {
	return r.checkLimit(ctx, fmt.Sprintf("ratelimit:%s:writes", key), r.config.WriteLimit, r.config.WriteWindow)
}

// checkLimit performs the actual check using a fixed window counter. The
// Lua script keeps increment-and-expire atomic.
func (r *RateLimiter) checkLimit(ctx context.Context, key string, limit int, window time.Duration) (*RateLimitResult, error) {
	script := goredis.NewScript(`
		local key = KEYS[1]
		local limit = tonumber(ARGV[1])
		local window = tonumber(ARGV[2])

		local current = redis.call('INCR', key)
		if current == 1 then
			redis.call('EXPIRE', key, window)
		end

		local ttl = redis.call('TTL', key)
		return {current, ttl}
	`)

	values, err := script.Run(ctx, r.client, []string{key}, limit, int(window.Seconds())).Int64Slice()
	if err != nil {
		return nil, err
	}
	if len(values) != 2 {
		return nil, fmt.Errorf("unexpected rate limit script reply")
	}

	current, ttl := values[0], values[1]
	remaining := limit - int(current)
	if remaining < 0 {
		remaining = 0
	}
	return &RateLimitResult{
		Allowed:   current <= int64(limit),
		Remaining: remaining,
		ResetIn:   time.Duration(ttl) * time.Second,
		Limit:     limit,
	}, nil
}
