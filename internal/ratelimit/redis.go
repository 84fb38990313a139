package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisLimiter is a sliding-window limiter over a shared Redis instance, so
// the window holds across independent stateless server replicas. Requests in
// the window are tracked as sorted-set members scored by their timestamp.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a limiter allowing limit requests per window for
// each key. The prefix keeps independently configured limiters (per-IP,
// per-identifier) from sharing buckets.
func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

// Allow records the request and reports whether key is within its window.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	bucket := l.prefix + ":" + key
	cutoff := strconv.FormatInt(now.Add(-l.window).UnixNano(), 10)
	member := strconv.FormatInt(now.UnixNano(), 10)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, bucket, "0", cutoff)
	pipe.ZAdd(ctx, bucket, &redis.Z{Score: float64(now.UnixNano()), Member: member})
	card := pipe.ZCard(ctx, bucket)
	pipe.Expire(ctx, bucket, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("ratelimit pipeline: %w", err)
	}
	return card.Val() <= int64(l.limit), nil
}
