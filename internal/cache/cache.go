// Package cache is an optional read-through cache for anonymous upstream
// responses, backed by Redis. It fails open: when Redis is unreachable or
// not configured, callers behave as if every lookup missed.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client with a fixed TTL. A nil *Cache is valid and
// never hits.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

// New connects to Redis at addr. An empty addr disables caching and
// returns nil.
func New(addr string, ttl time.Duration, log *slog.Logger) *Cache {
	if addr == "" {
		return nil
	}
	if log == nil {
		log = slog.Default()
	}
	return &Cache{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
		ttl: ttl,
		log: log,
	}
}

// Get returns the cached payload for key, if present.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.DebugContext(ctx, "cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return val, true
}

// Set stores a payload under key for the cache's TTL. Failures are logged
// and otherwise ignored.
func (c *Cache) Set(ctx context.Context, key string, payload []byte) {
	if c == nil {
		return
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.log.DebugContext(ctx, "cache set failed", "key", key, "error", err)
	}
}

// Close releases the underlying Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
