package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octanews/authcore/internal/config"
	"github.com/octanews/authcore/internal/domain/models"
	"github.com/octanews/authcore/internal/domain/service"
	"github.com/octanews/authcore/internal/infrastructure/monitoring"
	"github.com/octanews/authcore/pkg/constants"
	"github.com/octanews/authcore/pkg/errors"
)

func newTestRepo(t *testing.T) service.UserRepository {
	t.Helper()
	db, err := NewDB(&config.DatabaseConfig{Driver: "sqlite", Database: ":memory:", MaxConns: 1},
		monitoring.NewNopLogger())
	require.NoError(t, err)
	return NewUserRepository(db, monitoring.NewNopLogger())
}

func newTestUser(email string) *models.User {
	return &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "$argon2id$stub",
		DisplayName:  "Test User",
		Active:       true,
	}
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestUser("alice@example.com")))

	user, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.True(t, user.Active)
	assert.False(t, user.EmailVerified)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestUser("alice@example.com")))
	err := repo.Create(ctx, newTestUser("alice@example.com"))
	assert.True(t, errors.IsCode(err, constants.ErrCodeInvalidRequest))
}

func TestUserRepository_FindMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.True(t, errors.IsCode(err, constants.ErrCodeNotFound))
}

func TestUserRepository_Update(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestUser("alice@example.com")))
	user, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	user.EmailVerified = true
	require.NoError(t, repo.Update(ctx, user))

	reloaded, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, reloaded.EmailVerified)
}
