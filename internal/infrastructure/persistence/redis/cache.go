package redis

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/octanews/authcore/pkg/errors"
	"github.com/octanews/authcore/pkg/logger"
)

// Cache is a two-level JSON cache: an in-process go-cache layer in front of
// Redis. It backs the explicit cache-aside user lookup; there is no hidden
// interception, callers populate on miss and invalidate on mutation
// themselves.
type Cache struct {
	conn  *Connection
	local *gocache.Cache
	log   logger.Logger

	localTTL time.Duration
}

// NewCache creates a two-level cache. localTTL bounds how stale the
// in-process layer may be relative to Redis; keep it short.
func NewCache(conn *Connection, localTTL time.Duration, log logger.Logger) *Cache {
	return &Cache{
		conn:     conn,
		local:    gocache.New(localTTL, 2*localTTL),
		log:      log.WithComponent("cache"),
		localTTL: localTTL,
	}
}

// Get loads key into dest. Returns false when the key is absent from both
// levels. A Redis outage is reported as a store error, but only after the
// local layer missed.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if raw, ok := c.local.Get(key); ok {
		if data, ok := raw.([]byte); ok {
			if err := json.Unmarshal(data, dest); err == nil {
				return true, nil
			}
			c.local.Delete(key)
		}
	}

	data, err := c.conn.Client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, errors.ErrStoreUnavailable(err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// A corrupt entry behaves like a miss; the caller repopulates.
		c.log.Warn(ctx, "dropping corrupt cache entry", logger.String("key", key))
		_ = c.conn.Client.Del(ctx, key).Err()
		return false, nil
	}

	c.local.Set(key, data, c.localTTL)
	return true, nil
}

// Set stores value under key in both levels with the given Redis TTL.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.ErrInternal("failed to marshal cache value").WithCause(err)
	}
	if err := c.conn.Client.Set(ctx, key, data, ttl).Err(); err != nil {
		return errors.ErrStoreUnavailable(err)
	}
	c.local.Set(key, data, c.localTTL)
	return nil
}

// Delete invalidates key in both levels. Called explicitly on every mutating
// operation against the cached entity.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.local.Delete(key)
	if err := c.conn.Client.Del(ctx, key).Err(); err != nil {
		return errors.ErrStoreUnavailable(err)
	}
	return nil
}
