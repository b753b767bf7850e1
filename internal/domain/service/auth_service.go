package service

import (
	"context"
	"time"

	"github.com/octanews/authcore/internal/domain/models"
)

// LoginStatus tags the variants of a login outcome. Soft failures (captcha,
// cooldown) are ordinary values rather than errors so callers must handle
// each case explicitly.
type LoginStatus int

const (
	// LoginOK means credentials were accepted and tokens were issued.
	LoginOK LoginStatus = iota

	// LoginInvalid means the credentials were rejected.
	LoginInvalid

	// LoginNeedsCaptcha means the attempt threshold was reached; the client
	// must solve a challenge before further tries are accepted.
	LoginNeedsCaptcha

	// LoginRateLimited means the cooldown gate is tripped; the client must
	// wait out the remaining seconds.
	LoginRateLimited
)

// LoginResult is the tagged result of a login attempt.
type LoginResult struct {
	Status LoginStatus

	// Tokens is set only for LoginOK.
	Tokens *models.TokenPair

	// RetryAfter is set only for LoginRateLimited.
	RetryAfter time.Duration
}

// AuthFlow orchestrates login, registration, refresh, logout and
// password-reset over the token-lifecycle components. This is the interface
// the HTTP layer consumes.
type AuthFlow interface {
	// Login gates the attempt through the limiter, verifies credentials,
	// and on success issues an access/refresh token pair. Limiter gates are
	// checked before the password hash comparison so an attacker cannot
	// burn CPU on gated attempts.
	Login(ctx context.Context, identifier, email, password string) (*LoginResult, error)

	// Register creates an account and dispatches an email-verification
	// message. The email address doubles as the token subject.
	Register(ctx context.Context, email, password, displayName string) (*models.User, error)

	// VerifyEmail consumes an email-verification token and marks the
	// account verified.
	VerifyEmail(ctx context.Context, tokenString string) error

	// Refresh validates the refresh token and issues a new access token.
	// The refresh token itself is deliberately not rotated on use; see the
	// package documentation for the rationale.
	Refresh(ctx context.Context, subject, refreshToken string) (*models.TokenPair, error)

	// Logout blacklists the access token and revokes the refresh token when
	// one is supplied.
	Logout(ctx context.Context, accessToken, refreshToken string) error

	// RequestPasswordReset rate-limits and dispatches a password-reset
	// message. It reports success for unknown accounts to avoid
	// enumeration.
	RequestPasswordReset(ctx context.Context, identifier, email string) error

	// ValidateAccessToken verifies signature, expiry and blacklist state and
	// returns the decoded token.
	ValidateAccessToken(ctx context.Context, tokenString string) (*models.Token, error)
}
