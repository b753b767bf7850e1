// Package service defines the domain service contracts of the authentication
// and token-lifecycle core. Implementations live under
// internal/infrastructure; the application layer orchestrates them.
package service

import (
	"context"
	"crypto/rsa"
	"net/http"
	"time"

	"github.com/octanews/authcore/internal/domain/models"
	"github.com/octanews/authcore/pkg/constants"
)

// KeyProvider owns the process-wide asymmetric signing keypair. It is
// explicitly constructed and initialized once at startup; there is no ambient
// global key state.
type KeyProvider interface {
	// Initialize ensures the keys directory exists, loads the persisted
	// keypair or generates a fresh one, and verifies the pair with a
	// sign/verify self-test. Invalid on-disk keys are treated as absent and
	// silently regenerated; I/O or generation failures are fatal.
	Initialize(ctx context.Context) error

	// PrivateKey returns the in-memory private key. Nil before Initialize.
	PrivateKey() *rsa.PrivateKey

	// PublicKey returns the in-memory public key. Nil before Initialize.
	PublicKey() *rsa.PublicKey
}

// TokenCodec signs and parses bearer tokens. The codec never hardcodes
// validities; callers pass explicit durations per token class.
type TokenCodec interface {
	// Issue builds a token for subject with issuedAt=now and
	// expiresAt=now+validity, stamps the given type and extra claims, and
	// signs it with RS256.
	Issue(subject string, tokenType constants.TokenType, extra map[string]interface{}, validity time.Duration) (string, error)

	// Parse verifies the signature and decodes claims. Signature failures,
	// malformed input and algorithm mismatch yield a token-invalid error;
	// a well-signed token past its expiry yields a token-expired error with
	// the decoded token still returned for inspection.
	Parse(tokenString string) (*models.Token, error)
}

// RevocationStore tracks blacklisted access tokens and live refresh tokens in
// a TTL-capable key-value store. It is a pure side-effect store: it never
// reconstructs token contents, only tracks identity and expiry. Every entry
// carries a TTL; a non-expiring entry is a correctness bug.
type RevocationStore interface {
	// BlacklistAccessToken records a revocation marker for the token with a
	// TTL equal to its remaining life (minimum one second), so the marker
	// disappears at or after the token's natural expiry.
	BlacklistAccessToken(ctx context.Context, tokenString string) error

	// IsBlacklisted reports whether a revocation marker exists for the token.
	IsBlacklisted(ctx context.Context, tokenString string) (bool, error)

	// IssueRefreshToken generates an opaque high-entropy token for subject
	// and registers it with the refresh-token validity TTL.
	IssueRefreshToken(ctx context.Context, subject string) (string, error)

	// ValidateRefreshToken reports whether the (subject, token) pair is live.
	ValidateRefreshToken(ctx context.Context, subject, token string) (bool, error)

	// RevokeRefreshToken deletes the (subject, token) entry.
	RevokeRefreshToken(ctx context.Context, subject, token string) error
}

// CsrfTokenRepository issues and validates stateless CSRF tokens. Tokens are
// self-contained signed values; nothing is persisted server-side.
type CsrfTokenRepository interface {
	// Generate mints a short-lived signed CSRF token.
	Generate() (*models.CsrfToken, error)

	// Load reads the token from the request header (with a form-parameter
	// fallback), verifies signature and expiry, and returns nil on any
	// failure so that absence is indistinguishable from invalidity.
	Load(r *http.Request) *models.CsrfToken

	// Save is a no-op: the token is self-contained.
	Save(token *models.CsrfToken, w http.ResponseWriter)
}

// AttemptLimiter enforces sliding attempt counters per (identifier,
// operation). Two independent gates escalate gradually: a captcha-threshold
// counter (soft block) and a cooldown gate (hard block). Counter increments
// are atomic in the backing store; concurrent requests for the same
// identifier never lose updates.
type AttemptLimiter interface {
	// RecordAttempt atomically increments the counter, starting the counting
	// window on first increment, and returns the new count. Crossing the
	// hard threshold trips the cooldown gate.
	RecordAttempt(ctx context.Context, identifier string, op constants.OperationType) (int64, error)

	// IsCaptchaRequired reports whether the count has reached the captcha
	// threshold within the current window.
	IsCaptchaRequired(ctx context.Context, identifier string, op constants.OperationType) (bool, error)

	// IsRateLimited reports whether the cooldown gate has been tripped.
	IsRateLimited(ctx context.Context, identifier string, op constants.OperationType) (bool, error)

	// RemainingCooldown returns the time left on the cooldown gate, or zero
	// when not limited.
	RemainingCooldown(ctx context.Context, identifier string, op constants.OperationType) (time.Duration, error)

	// ClearAttempts deletes the attempt counter immediately instead of
	// waiting for the window TTL.
	ClearAttempts(ctx context.Context, identifier string, op constants.OperationType) error

	// RecordSuccess is the success-driven alias for ClearAttempts.
	RecordSuccess(ctx context.Context, identifier string, op constants.OperationType) error
}

// UserRepository is the credential-store collaborator consumed by the
// authentication flow.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// AuditSink receives security-relevant events. Implementations must never
// block the request path on sink failures.
type AuditSink interface {
	Emit(ctx context.Context, event constants.AuditEventType, subject string, detail map[string]interface{})
	Close() error
}
