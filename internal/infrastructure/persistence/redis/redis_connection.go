// Package redis provides the Redis client lifecycle and the two-level
// cache-aside helper shared by the revocation store, the attempt limiter and
// the user lookup cache.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/octanews/authcore/internal/config"
	"github.com/octanews/authcore/pkg/errors"
	"github.com/octanews/authcore/pkg/logger"
)

// Connection manages the Redis client lifecycle.
type Connection struct {
	// Client is the underlying go-redis client. UniversalClient so tests can
	// substitute a miniredis-backed client.
	Client redis.UniversalClient

	log logger.Logger
}

// NewConnection creates and validates a Redis connection from configuration.
// Connectivity is verified with a ping before the connection is handed out,
// so a misconfigured store surfaces at startup rather than on first request.
func NewConnection(ctx context.Context, cfg *config.RedisConfig, log logger.Logger) (*Connection, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, errors.ErrStoreUnavailable(err)
	}

	log.Info(ctx, "redis connection established",
		logger.String("addr", cfg.Addr),
		logger.Int("pool_size", cfg.PoolSize))

	return &Connection{Client: client, log: log.WithComponent("redis")}, nil
}

// NewConnectionFromClient wraps an existing client. Used by tests with
// miniredis.
func NewConnectionFromClient(client redis.UniversalClient, log logger.Logger) *Connection {
	return &Connection{Client: client, log: log.WithComponent("redis")}
}

// HealthCheck pings the store within the caller's deadline.
func (c *Connection) HealthCheck(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return errors.ErrStoreUnavailable(err)
	}
	return nil
}

// Close releases the client's connection pool.
func (c *Connection) Close() error {
	return c.Client.Close()
}
