package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octanews/authcore/internal/domain/service"
	"github.com/octanews/authcore/internal/infrastructure/crypto"
	"github.com/octanews/authcore/internal/infrastructure/monitoring"
	persistence "github.com/octanews/authcore/internal/infrastructure/persistence/redis"
	"github.com/octanews/authcore/pkg/constants"
	"github.com/octanews/authcore/pkg/errors"
)

func newTestStore(t *testing.T) (service.RevocationStore, service.TokenCodec, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	conn := persistence.NewConnectionFromClient(client, monitoring.NewNopLogger())

	provider := crypto.NewFileKeyProvider(t.TempDir(), monitoring.NewNopLogger())
	require.NoError(t, provider.Initialize(context.Background()))
	codec := crypto.NewJWTCodec(provider, "test-issuer")

	store := NewRevocationStore(conn, codec, time.Hour, monitoring.NewNopLogger())
	return store, codec, mr
}

func TestRevocationStore_BlacklistAccessToken(t *testing.T) {
	store, codec, mr := newTestStore(t)
	ctx := context.Background()

	signed, err := codec.Issue("alice@example.com", constants.TokenTypeAccess, nil, 30*time.Minute)
	require.NoError(t, err)

	blacklisted, err := store.IsBlacklisted(ctx, signed)
	require.NoError(t, err)
	assert.False(t, blacklisted)

	require.NoError(t, store.BlacklistAccessToken(ctx, signed))

	blacklisted, err = store.IsBlacklisted(ctx, signed)
	require.NoError(t, err)
	assert.True(t, blacklisted)

	// The marker's TTL tracks the token's remaining life, never exceeding it.
	ttl := mr.TTL(constants.KeyPrefixBlacklist + ":" + signed)
	assert.Greater(t, ttl, 25*time.Minute)
	assert.LessOrEqual(t, ttl, 30*time.Minute)

	// Once the token's natural expiry passes, the marker is gone too.
	mr.FastForward(31 * time.Minute)
	blacklisted, err = store.IsBlacklisted(ctx, signed)
	require.NoError(t, err)
	assert.False(t, blacklisted)
}

func TestRevocationStore_BlacklistRejectsInvalidToken(t *testing.T) {
	store, _, _ := newTestStore(t)

	err := store.BlacklistAccessToken(context.Background(), "not-a-token")
	assert.True(t, errors.IsTokenInvalid(err))
}

func TestRevocationStore_RefreshTokenLifecycle(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	token, err := store.IssueRefreshToken(ctx, "a@a.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	live, err := store.ValidateRefreshToken(ctx, "a@a.com", token)
	require.NoError(t, err)
	assert.True(t, live)

	// The token is bound to its subject.
	live, err = store.ValidateRefreshToken(ctx, "b@b.com", token)
	require.NoError(t, err)
	assert.False(t, live)

	require.NoError(t, store.RevokeRefreshToken(ctx, "a@a.com", token))
	live, err = store.ValidateRefreshToken(ctx, "a@a.com", token)
	require.NoError(t, err)
	assert.False(t, live)

	// Revoking again is a no-op, not an error.
	require.NoError(t, store.RevokeRefreshToken(ctx, "a@a.com", token))
}

func TestRevocationStore_RefreshTokenExpires(t *testing.T) {
	store, _, mr := newTestStore(t)
	ctx := context.Background()

	token, err := store.IssueRefreshToken(ctx, "a@a.com")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	live, err := store.ValidateRefreshToken(ctx, "a@a.com", token)
	require.NoError(t, err)
	assert.False(t, live)
}

func TestRevocationStore_FailsClosedOnOutage(t *testing.T) {
	store, codec, mr := newTestStore(t)
	ctx := context.Background()

	signed, err := codec.Issue("alice@example.com", constants.TokenTypeAccess, nil, time.Hour)
	require.NoError(t, err)

	mr.Close()

	_, err = store.IsBlacklisted(ctx, signed)
	assert.True(t, errors.IsStoreUnavailable(err))

	err = store.BlacklistAccessToken(ctx, signed)
	assert.True(t, errors.IsStoreUnavailable(err))
}
