// Package constants defines shared enumerations, default lifetimes, key
// prefixes and context keys used across the authcore service.
package constants

import "time"

// ================================================================================
// Token Type Constants
// ================================================================================

// TokenType represents the type of a signed token.
type TokenType string

const (
	// TokenTypeAccess represents a short-lived bearer access token
	TokenTypeAccess TokenType = "access"

	// TokenTypeRefresh represents a long-lived refresh token
	TokenTypeRefresh TokenType = "refresh"

	// TokenTypeCSRF represents a stateless CSRF token
	TokenTypeCSRF TokenType = "csrf"

	// TokenTypeEmailVerification represents an email-verification token
	TokenTypeEmailVerification TokenType = "email_verification"

	// TokenTypePasswordReset represents a password-reset token
	TokenTypePasswordReset TokenType = "password_reset"
)

// ================================================================================
// Operation Type Constants (attempt limiting)
// ================================================================================

// OperationType identifies a sensitive operation gated by the attempt limiter.
type OperationType string

const (
	// OperationLogin covers interactive credential checks
	OperationLogin OperationType = "login"

	// OperationPasswordReset covers password-reset requests
	OperationPasswordReset OperationType = "password_reset"

	// OperationEmailSend covers outbound email dispatch
	OperationEmailSend OperationType = "email_send"
)

// ================================================================================
// Token Lifetime Defaults
// ================================================================================

const (
	// AccessTokenDefaultTTL is the default lifetime for access tokens
	AccessTokenDefaultTTL = 2 * time.Hour

	// RefreshTokenDefaultTTL is the default lifetime for refresh tokens
	RefreshTokenDefaultTTL = 14 * 24 * time.Hour

	// CSRFTokenDefaultTTL is the default lifetime for CSRF tokens
	CSRFTokenDefaultTTL = 30 * time.Minute

	// EmailVerificationTokenTTL is the lifetime for email-verification tokens
	EmailVerificationTokenTTL = 24 * time.Hour

	// PasswordResetTokenTTL is the lifetime for password-reset tokens
	PasswordResetTokenTTL = 1 * time.Hour

	// BlacklistMinTTL is the floor applied to blacklist markers when the
	// token is already past (or within clock skew of) its natural expiry.
	BlacklistMinTTL = 1 * time.Second
)

// ================================================================================
// Attempt Limiter Defaults
// ================================================================================

const (
	// CaptchaThresholdDefault is the attempt count at which a captcha
	// challenge is demanded within one counting window.
	CaptchaThresholdDefault = 5

	// AttemptWindowDefault is the counting window for attempt counters
	AttemptWindowDefault = 15 * time.Minute

	// RateLimitThresholdDefault is the attempt count at which the hard
	// cooldown gate trips.
	RateLimitThresholdDefault = 10

	// CooldownWindowDefault is the duration of the hard-block cooldown
	CooldownWindowDefault = 1 * time.Hour
)

// ================================================================================
// Cache TTL Defaults
// ================================================================================

const (
	// UserCacheTTL is the L2 (Redis) cache lifetime for user lookups
	UserCacheTTL = 10 * time.Minute

	// UserCacheL1TTL is the L1 (in-memory) cache lifetime for user lookups
	UserCacheL1TTL = 1 * time.Minute
)

// ================================================================================
// Redis Key Prefixes
// ================================================================================

const (
	// KeyPrefixBlacklist namespaces access-token revocation markers
	KeyPrefixBlacklist = "auth:bl"

	// KeyPrefixRefresh namespaces live refresh-token entries
	KeyPrefixRefresh = "auth:rt"

	// KeyPrefixAttempt namespaces attempt counters
	KeyPrefixAttempt = "auth:att"

	// KeyPrefixCooldown namespaces cooldown (hard rate-limit) markers
	KeyPrefixCooldown = "auth:cd"

	// KeyPrefixUserCache namespaces cached user records
	KeyPrefixUserCache = "auth:user"
)

// ================================================================================
// HTTP / Wire Constants
// ================================================================================

const (
	// CSRFHeaderName is the request header carrying the CSRF token
	CSRFHeaderName = "X-CSRF-TOKEN"

	// CSRFParameterName is the form parameter fallback for the CSRF token
	CSRFParameterName = "_csrf"

	// DefaultIssuer is the iss claim stamped on issued tokens
	DefaultIssuer = "octanews-authcore"
)

// ================================================================================
// Error Code Constants
// ================================================================================

// ErrorCode is a stable machine-readable error identifier.
type ErrorCode string

const (
	// ErrCodeConfiguration indicates an unrecoverable configuration problem
	ErrCodeConfiguration ErrorCode = "configuration_error"

	// ErrCodeTokenInvalid indicates a malformed token or bad signature
	ErrCodeTokenInvalid ErrorCode = "token_invalid"

	// ErrCodeTokenExpired indicates a well-signed token past its expiry
	ErrCodeTokenExpired ErrorCode = "token_expired"

	// ErrCodeAuthenticationFailed indicates rejected credentials
	ErrCodeAuthenticationFailed ErrorCode = "authentication_failed"

	// ErrCodeCaptchaRequired indicates the caller must solve a challenge
	ErrCodeCaptchaRequired ErrorCode = "captcha_required"

	// ErrCodeRateLimited indicates the caller is in a cooldown window
	ErrCodeRateLimited ErrorCode = "rate_limited"

	// ErrCodeStoreUnavailable indicates the backing TTL store is unreachable
	ErrCodeStoreUnavailable ErrorCode = "store_unavailable"

	// ErrCodeNotFound indicates a missing entity
	ErrCodeNotFound ErrorCode = "not_found"

	// ErrCodeInvalidRequest indicates a malformed or incomplete request
	ErrCodeInvalidRequest ErrorCode = "invalid_request"

	// ErrCodeInternal indicates an unexpected server-side failure
	ErrCodeInternal ErrorCode = "internal_error"
)

// ================================================================================
// Audit Event Constants
// ================================================================================

// AuditEventType classifies security-relevant events emitted to the audit sink.
type AuditEventType string

const (
	// AuditEventLoginSuccess records a successful credential check
	AuditEventLoginSuccess AuditEventType = "login.success"

	// AuditEventLoginFailure records a rejected credential check
	AuditEventLoginFailure AuditEventType = "login.failure"

	// AuditEventTokenIssued records issuance of a token pair
	AuditEventTokenIssued AuditEventType = "token.issued"

	// AuditEventTokenRevoked records an access-token blacklist entry
	AuditEventTokenRevoked AuditEventType = "token.revoked"

	// AuditEventRateLimitTripped records a tripped cooldown gate
	AuditEventRateLimitTripped AuditEventType = "ratelimit.tripped"
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is a private type for request-scoped context values.
type ContextKey string

const (
	// ContextKeyRequestID carries the per-request correlation id
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeySubject carries the authenticated subject (email)
	ContextKeySubject ContextKey = "subject"
)

// ================================================================================
// Log Level Constants
// ================================================================================

// LogLevel represents logging verbosity.
type LogLevel int

const (
	// LogLevelDebug enables verbose diagnostic output
	LogLevelDebug LogLevel = iota

	// LogLevelInfo is the default operational level
	LogLevelInfo

	// LogLevelWarn reports recoverable anomalies
	LogLevelWarn

	// LogLevelError reports failures
	LogLevelError

	// LogLevelFatal reports unrecoverable failures and exits
	LogLevelFatal
)
