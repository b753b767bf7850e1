package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octanews/authcore/internal/domain/models"
	"github.com/octanews/authcore/internal/infrastructure/monitoring"
	persistence "github.com/octanews/authcore/internal/infrastructure/persistence/redis"
)

func newLookupFixture(t *testing.T) (*UserLookup, *memoryUserRepo) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	conn := persistence.NewConnectionFromClient(client, monitoring.NewNopLogger())

	repo := newMemoryUserRepo()
	cache := persistence.NewCache(conn, time.Minute, monitoring.NewNopLogger())
	return NewUserLookup(repo, cache, monitoring.NewNopLogger()), repo
}

func TestUserLookup_CachedReadKeepsPasswordHash(t *testing.T) {
	lookup, repo := newLookupFixture(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{
		ID:           "u-1",
		Email:        "alice@example.com",
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		Active:       true,
	}))

	first, err := lookup.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, first.PasswordHash)

	// Mutate the repository behind the cache; the second read must come from
	// the cache and still carry the full credential record.
	repo.users["alice@example.com"].PasswordHash = "changed-behind-cache"

	second, err := lookup.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.PasswordHash, second.PasswordHash)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.Active)
}

func TestUserLookup_UpdateInvalidatesCache(t *testing.T) {
	lookup, repo := newLookupFixture(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{
		ID:           "u-1",
		Email:        "alice@example.com",
		PasswordHash: "hash-v1",
		Active:       true,
	}))

	user, err := lookup.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	user.PasswordHash = "hash-v2"
	require.NoError(t, lookup.Update(ctx, user))

	fresh, err := lookup.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash-v2", fresh.PasswordHash)
}
