package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octanews/authcore/internal/config"
	"github.com/octanews/authcore/internal/domain/service"
	"github.com/octanews/authcore/internal/infrastructure/monitoring"
	persistence "github.com/octanews/authcore/internal/infrastructure/persistence/redis"
	"github.com/octanews/authcore/pkg/constants"
	"github.com/octanews/authcore/pkg/errors"
)

func newTestLimiter(t *testing.T) (service.AttemptLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	conn := persistence.NewConnectionFromClient(client, monitoring.NewNopLogger())

	limiter := NewAttemptLimiter(conn, config.RateLimitConfig{
		CaptchaThreshold:   5,
		AttemptWindow:      15 * time.Minute,
		RateLimitThreshold: 10,
		CooldownWindow:     time.Hour,
	}, monitoring.NewNopLogger())
	return limiter, mr
}

func TestAttemptLimiter_CaptchaThreshold(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		count, err := limiter.RecordAttempt(ctx, "alice@example.com", constants.OperationLogin)
		require.NoError(t, err)
		assert.Equal(t, int64(i), count)

		required, err := limiter.IsCaptchaRequired(ctx, "alice@example.com", constants.OperationLogin)
		require.NoError(t, err)
		assert.False(t, required, "attempt %d must not demand a captcha yet", i)
	}

	count, err := limiter.RecordAttempt(ctx, "alice@example.com", constants.OperationLogin)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	required, err := limiter.IsCaptchaRequired(ctx, "alice@example.com", constants.OperationLogin)
	require.NoError(t, err)
	assert.True(t, required)

	// The hard gate is independent and has not tripped yet.
	limited, err := limiter.IsRateLimited(ctx, "alice@example.com", constants.OperationLogin)
	require.NoError(t, err)
	assert.False(t, limited)
}

func TestAttemptLimiter_CooldownGate(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := limiter.RecordAttempt(ctx, "alice@example.com", constants.OperationLogin)
		require.NoError(t, err)
	}

	limited, err := limiter.IsRateLimited(ctx, "alice@example.com", constants.OperationLogin)
	require.NoError(t, err)
	assert.True(t, limited)

	remaining, err := limiter.RemainingCooldown(ctx, "alice@example.com", constants.OperationLogin)
	require.NoError(t, err)
	assert.Greater(t, remaining, 59*time.Minute)
	assert.LessOrEqual(t, remaining, time.Hour)

	// Further attempts must not extend the running cooldown.
	_, err = limiter.RecordAttempt(ctx, "alice@example.com", constants.OperationLogin)
	require.NoError(t, err)
	extended, err := limiter.RemainingCooldown(ctx, "alice@example.com", constants.OperationLogin)
	require.NoError(t, err)
	assert.LessOrEqual(t, extended, remaining)

	// The gate releases only by expiry.
	mr.FastForward(time.Hour + time.Minute)
	limited, err = limiter.IsRateLimited(ctx, "alice@example.com", constants.OperationLogin)
	require.NoError(t, err)
	assert.False(t, limited)
}

func TestAttemptLimiter_ClearAttempts(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := limiter.RecordAttempt(ctx, "alice@example.com", constants.OperationLogin)
		require.NoError(t, err)
	}
	required, err := limiter.IsCaptchaRequired(ctx, "alice@example.com", constants.OperationLogin)
	require.NoError(t, err)
	require.True(t, required)

	require.NoError(t, limiter.ClearAttempts(ctx, "alice@example.com", constants.OperationLogin))

	required, err = limiter.IsCaptchaRequired(ctx, "alice@example.com", constants.OperationLogin)
	require.NoError(t, err)
	assert.False(t, required)

	// The next attempt starts a fresh window at one.
	count, err := limiter.RecordAttempt(ctx, "alice@example.com", constants.OperationLogin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAttemptLimiter_ClearDoesNotReleaseCooldown(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := limiter.RecordAttempt(ctx, "alice@example.com", constants.OperationLogin)
		require.NoError(t, err)
	}

	require.NoError(t, limiter.RecordSuccess(ctx, "alice@example.com", constants.OperationLogin))

	limited, err := limiter.IsRateLimited(ctx, "alice@example.com", constants.OperationLogin)
	require.NoError(t, err)
	assert.True(t, limited, "a tripped cooldown outlives a counter reset")
}

func TestAttemptLimiter_WindowExpiry(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := limiter.RecordAttempt(ctx, "alice@example.com", constants.OperationLogin)
		require.NoError(t, err)
	}

	mr.FastForward(16 * time.Minute)

	required, err := limiter.IsCaptchaRequired(ctx, "alice@example.com", constants.OperationLogin)
	require.NoError(t, err)
	assert.False(t, required)

	count, err := limiter.RecordAttempt(ctx, "alice@example.com", constants.OperationLogin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAttemptLimiter_OperationsAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := limiter.RecordAttempt(ctx, "alice@example.com", constants.OperationLogin)
		require.NoError(t, err)
	}

	required, err := limiter.IsCaptchaRequired(ctx, "alice@example.com", constants.OperationPasswordReset)
	require.NoError(t, err)
	assert.False(t, required)
}

func TestAttemptLimiter_FailsClosedOnOutage(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	ctx := context.Background()

	mr.Close()

	_, err := limiter.RecordAttempt(ctx, "alice@example.com", constants.OperationLogin)
	assert.True(t, errors.IsStoreUnavailable(err))

	_, err = limiter.IsRateLimited(ctx, "alice@example.com", constants.OperationLogin)
	assert.True(t, errors.IsStoreUnavailable(err))
}
