// Package redis implements the token revocation store over the TTL-capable
// key-value store.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/octanews/authcore/internal/domain/service"
	persistence "github.com/octanews/authcore/internal/infrastructure/persistence/redis"
	"github.com/octanews/authcore/pkg/constants"
	"github.com/octanews/authcore/pkg/cryptoutil"
	"github.com/octanews/authcore/pkg/errors"
	"github.com/octanews/authcore/pkg/logger"
)

// refreshTokenBytes is the entropy of an opaque refresh token.
const refreshTokenBytes = 32

type revocationStore struct {
	conn       *persistence.Connection
	codec      service.TokenCodec
	refreshTTL time.Duration
	log        logger.Logger
}

// NewRevocationStore creates a RevocationStore. The codec is used only to
// recover expiry timestamps from access tokens being blacklisted; the store
// never reconstructs token contents beyond that.
func NewRevocationStore(conn *persistence.Connection, codec service.TokenCodec, refreshTTL time.Duration, log logger.Logger) service.RevocationStore {
	if refreshTTL <= 0 {
		refreshTTL = constants.RefreshTokenDefaultTTL
	}
	return &revocationStore{
		conn:       conn,
		codec:      codec,
		refreshTTL: refreshTTL,
		log:        log.WithComponent("revocation"),
	}
}

func blacklistKey(tokenString string) string {
	return fmt.Sprintf("%s:%s", constants.KeyPrefixBlacklist, tokenString)
}

func refreshKey(subject, token string) string {
	return fmt.Sprintf("%s:%s:%s", constants.KeyPrefixRefresh, subject, token)
}

// BlacklistAccessToken stores a revocation marker whose TTL matches the
// token's remaining life, floored at one second for tokens already past
// expiry or skewed clocks. The marker therefore never outlives the token's
// natural expiry by more than the floor.
func (s *revocationStore) BlacklistAccessToken(ctx context.Context, tokenString string) error {
	token, err := s.codec.Parse(tokenString)
	if err != nil && !errors.IsTokenExpired(err) {
		return err
	}

	ttl := token.RemainingLife()
	if ttl < constants.BlacklistMinTTL {
		ttl = constants.BlacklistMinTTL
	}

	if err := s.conn.Client.Set(ctx, blacklistKey(tokenString), "1", ttl).Err(); err != nil {
		return errors.ErrStoreUnavailable(err)
	}

	s.log.Info(ctx, "access token blacklisted",
		logger.String("jti", token.JTI),
		logger.Duration("ttl", ttl))
	return nil
}

// IsBlacklisted is a pure existence check on the marker key. A store outage
// fails closed: the caller receives an error, never a false "not revoked".
func (s *revocationStore) IsBlacklisted(ctx context.Context, tokenString string) (bool, error) {
	n, err := s.conn.Client.Exists(ctx, blacklistKey(tokenString)).Result()
	if err != nil {
		return false, errors.ErrStoreUnavailable(err)
	}
	return n > 0, nil
}

// IssueRefreshToken registers a fresh opaque token for subject with the
// refresh-token validity TTL.
func (s *revocationStore) IssueRefreshToken(ctx context.Context, subject string) (string, error) {
	token, err := cryptoutil.RandomToken(refreshTokenBytes)
	if err != nil {
		return "", errors.ErrInternal("failed to generate refresh token").WithCause(err)
	}

	if err := s.conn.Client.Set(ctx, refreshKey(subject, token), "1", s.refreshTTL).Err(); err != nil {
		return "", errors.ErrStoreUnavailable(err)
	}

	s.log.Debug(ctx, "refresh token issued",
		logger.String("subject", subject),
		logger.Duration("ttl", s.refreshTTL))
	return token, nil
}

// ValidateRefreshToken is an existence check on the (subject, token) entry.
func (s *revocationStore) ValidateRefreshToken(ctx context.Context, subject, token string) (bool, error) {
	n, err := s.conn.Client.Exists(ctx, refreshKey(subject, token)).Result()
	if err != nil {
		return false, errors.ErrStoreUnavailable(err)
	}
	return n > 0, nil
}

// RevokeRefreshToken deletes the entry. Deleting an absent entry is not an
// error; revocation is idempotent.
func (s *revocationStore) RevokeRefreshToken(ctx context.Context, subject, token string) error {
	if err := s.conn.Client.Del(ctx, refreshKey(subject, token)).Err(); err != nil {
		return errors.ErrStoreUnavailable(err)
	}
	return nil
}
