// Package ratelimit implements the sliding attempt limiter over Redis.
//
// Two independent gates escalate gradually. The attempt counter demands a
// captcha once it reaches the captcha threshold within its window; crossing
// the higher rate-limit threshold trips a separate cooldown marker that
// hard-blocks the identifier until it expires. Keeping the gates independent
// lets the system distinguish "suspicious" from "blocked".
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/octanews/authcore/internal/config"
	"github.com/octanews/authcore/internal/domain/service"
	persistence "github.com/octanews/authcore/internal/infrastructure/persistence/redis"
	"github.com/octanews/authcore/pkg/constants"
	"github.com/octanews/authcore/pkg/errors"
	"github.com/octanews/authcore/pkg/logger"
)

// recordAttemptScript atomically increments the attempt counter, starts the
// counting window on first increment, and trips the cooldown marker when the
// hard threshold is crossed. NX on the marker keeps an already running
// cooldown from being extended by further attempts.
//
// KEYS[1] attempt counter, KEYS[2] cooldown marker
// ARGV[1] window ms, ARGV[2] hard threshold, ARGV[3] cooldown ms
const recordAttemptScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
if count >= tonumber(ARGV[2]) then
    redis.call('SET', KEYS[2], '1', 'PX', ARGV[3], 'NX')
end
return count
`

type attemptLimiter struct {
	conn *persistence.Connection
	cfg  config.RateLimitConfig
	log  logger.Logger

	script *redis.Script
}

// NewAttemptLimiter creates an AttemptLimiter enforcing the configured
// thresholds and windows. All state lives in the backing store; the limiter
// itself is stateless and safe for concurrent use.
func NewAttemptLimiter(conn *persistence.Connection, cfg config.RateLimitConfig, log logger.Logger) service.AttemptLimiter {
	if cfg.CaptchaThreshold <= 0 {
		cfg.CaptchaThreshold = constants.CaptchaThresholdDefault
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = constants.AttemptWindowDefault
	}
	if cfg.RateLimitThreshold <= 0 {
		cfg.RateLimitThreshold = constants.RateLimitThresholdDefault
	}
	if cfg.CooldownWindow <= 0 {
		cfg.CooldownWindow = constants.CooldownWindowDefault
	}
	return &attemptLimiter{
		conn:   conn,
		cfg:    cfg,
		log:    log.WithComponent("attemptlimiter"),
		script: redis.NewScript(recordAttemptScript),
	}
}

func attemptKey(identifier string, op constants.OperationType) string {
	return fmt.Sprintf("%s:%s:%s", constants.KeyPrefixAttempt, identifier, op)
}

func cooldownKey(identifier string, op constants.OperationType) string {
	return fmt.Sprintf("%s:%s:%s", constants.KeyPrefixCooldown, identifier, op)
}

// RecordAttempt atomically increments the counter and returns the new count.
// Atomicity is delegated to the store's scripting primitive; parallel
// attempts from the same identifier never lose increments.
func (l *attemptLimiter) RecordAttempt(ctx context.Context, identifier string, op constants.OperationType) (int64, error) {
	count, err := l.script.Run(ctx, l.conn.Client,
		[]string{attemptKey(identifier, op), cooldownKey(identifier, op)},
		l.cfg.AttemptWindow.Milliseconds(),
		l.cfg.RateLimitThreshold,
		l.cfg.CooldownWindow.Milliseconds(),
	).Int64()
	if err != nil {
		return 0, errors.ErrStoreUnavailable(err)
	}

	if count == int64(l.cfg.RateLimitThreshold) {
		l.log.Warn(ctx, "cooldown gate tripped",
			logger.String("identifier", identifier),
			logger.String("operation", string(op)),
			logger.Int64("count", count))
	}
	return count, nil
}

// IsCaptchaRequired reports whether the current window's count has reached
// the captcha threshold. A pure read; never mutates the counter.
func (l *attemptLimiter) IsCaptchaRequired(ctx context.Context, identifier string, op constants.OperationType) (bool, error) {
	count, err := l.conn.Client.Get(ctx, attemptKey(identifier, op)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, errors.ErrStoreUnavailable(err)
	}
	return count >= int64(l.cfg.CaptchaThreshold), nil
}

// IsRateLimited reports whether the cooldown marker exists.
func (l *attemptLimiter) IsRateLimited(ctx context.Context, identifier string, op constants.OperationType) (bool, error) {
	n, err := l.conn.Client.Exists(ctx, cooldownKey(identifier, op)).Result()
	if err != nil {
		return false, errors.ErrStoreUnavailable(err)
	}
	return n > 0, nil
}

// RemainingCooldown returns the TTL left on the cooldown marker, or zero when
// the identifier is not limited.
func (l *attemptLimiter) RemainingCooldown(ctx context.Context, identifier string, op constants.OperationType) (time.Duration, error) {
	ttl, err := l.conn.Client.TTL(ctx, cooldownKey(identifier, op)).Result()
	if err != nil {
		return 0, errors.ErrStoreUnavailable(err)
	}
	if ttl < 0 {
		// -2 means no key, -1 means no expiry; neither counts as limited.
		return 0, nil
	}
	return ttl, nil
}

// ClearAttempts deletes the attempt counter so the next attempt starts a
// fresh window. The cooldown marker is left alone: a tripped hard block is
// only released by its own expiry.
func (l *attemptLimiter) ClearAttempts(ctx context.Context, identifier string, op constants.OperationType) error {
	if err := l.conn.Client.Del(ctx, attemptKey(identifier, op)).Err(); err != nil {
		return errors.ErrStoreUnavailable(err)
	}
	return nil
}

// RecordSuccess is the success-driven reset, semantically distinct from an
// administrative ClearAttempts but identical in effect.
func (l *attemptLimiter) RecordSuccess(ctx context.Context, identifier string, op constants.OperationType) error {
	return l.ClearAttempts(ctx, identifier, op)
}
