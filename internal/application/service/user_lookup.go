// Package service implements the application-level orchestration over the
// domain service contracts: the authentication flow and its supporting
// cache-aside user lookup.
package service

import (
	"context"
	"time"

	"github.com/octanews/authcore/internal/domain/models"
	domainsvc "github.com/octanews/authcore/internal/domain/service"
	redisstore "github.com/octanews/authcore/internal/infrastructure/persistence/redis"
	"github.com/octanews/authcore/pkg/constants"
	"github.com/octanews/authcore/pkg/logger"
)

// UserLookup is the cache-aside read path for user records. Reads check the
// two-level cache and fall through to the repository on miss; every mutation
// goes through this type so the cache entry is invalidated in the same call.
type UserLookup struct {
	repo  domainsvc.UserRepository
	cache *redisstore.Cache
	log   logger.Logger
}

// NewUserLookup wires the repository behind the cache.
func NewUserLookup(repo domainsvc.UserRepository, cache *redisstore.Cache, log logger.Logger) *UserLookup {
	return &UserLookup{
		repo:  repo,
		cache: cache,
		log:   log.WithComponent("user_lookup"),
	}
}

func cacheKey(email string) string {
	return constants.KeyPrefixUserCache + ":" + email
}

// cachedUser is the cache serialization of a user record. The model's JSON
// tags hide PasswordHash from API responses, so marshaling the model directly
// would cache an entry without the hash and break credential checks served
// from cache.
type cachedUser struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	DisplayName   string    `json:"display_name"`
	EmailVerified bool      `json:"email_verified"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toCachedUser(u *models.User) *cachedUser {
	return &cachedUser{
		ID:            u.ID,
		Email:         u.Email,
		PasswordHash:  u.PasswordHash,
		DisplayName:   u.DisplayName,
		EmailVerified: u.EmailVerified,
		Active:        u.Active,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (c *cachedUser) toModel() *models.User {
	return &models.User{
		ID:            c.ID,
		Email:         c.Email,
		PasswordHash:  c.PasswordHash,
		DisplayName:   c.DisplayName,
		EmailVerified: c.EmailVerified,
		Active:        c.Active,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// FindByEmail returns the user for email, populating the cache on a miss.
// A cache outage degrades to a direct repository read.
func (l *UserLookup) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var cached cachedUser
	hit, err := l.cache.Get(ctx, cacheKey(email), &cached)
	if err != nil {
		l.log.Warn(ctx, "user cache read failed, falling back to repository", logger.Err(err))
	} else if hit && cached.PasswordHash != "" {
		// An entry without the hash would be unusable for credential
		// checks, so only a complete record counts as a hit.
		return cached.toModel(), nil
	}

	user, err := l.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := l.cache.Set(ctx, cacheKey(email), toCachedUser(user), constants.UserCacheTTL); err != nil {
		l.log.Warn(ctx, "user cache populate failed", logger.Err(err))
	}
	return user, nil
}

// Create inserts the user. There is nothing to invalidate for a fresh email,
// but a stale negative entry cannot exist either since misses are not cached.
func (l *UserLookup) Create(ctx context.Context, user *models.User) error {
	return l.repo.Create(ctx, user)
}

// Update persists the user and invalidates its cache entry. Invalidation
// failure is surfaced: serving a stale credential record is worse than
// failing the mutation.
func (l *UserLookup) Update(ctx context.Context, user *models.User) error {
	if err := l.repo.Update(ctx, user); err != nil {
		return err
	}
	if err := l.cache.Delete(ctx, cacheKey(user.Email)); err != nil {
		return err
	}
	return nil
}
