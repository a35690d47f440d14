package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aescanero/basecamp/pkg/adapters/ratelimit"
)

const keyPrefix = "basecamp:ratelimit:"

// hitScript increments the window counter and starts the window on the first
// hit. It returns the count and the remaining window in milliseconds.
var hitScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// Limiter implements ratelimit.Limiter with counters shared through Redis.
type Limiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	logger *zap.Logger
}

// NewLimiter creates a Redis-backed limiter allowing limit hits per key per window.
func NewLimiter(client *redis.Client, limit int, window time.Duration, logger *zap.Logger) *Limiter {
	return &Limiter{
		client: client,
		limit:  limit,
		window: window,
		logger: logger,
	}
}

// Connect creates a client from a redis:// URL and verifies the connection.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// Allow records a hit for key (ratelimit.Limiter interface)
func (l *Limiter) Allow(ctx context.Context, key string) (ratelimit.Decision, error) {
	result, err := hitScript.Run(ctx, l.client, []string{getKey(key)}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return ratelimit.Decision{}, fmt.Errorf("failed to record hit: %w", err)
	}
	if len(result) != 2 {
		return ratelimit.Decision{}, fmt.Errorf("unexpected rate limit reply: %v", result)
	}

	count, ttl := int(result[0]), time.Duration(result[1])*time.Millisecond

	if count == l.limit+1 {
		l.logger.Debug("rate limit reached",
			zap.String("key", key),
			zap.Int("limit", l.limit))
	}

	return ratelimit.NewDecision(l.limit, count, ttl), nil
}

// getKey returns the Redis key for a client key
func getKey(key string) string {
	return keyPrefix + key
}
