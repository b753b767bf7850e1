package service

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/octanews/authcore/internal/config"
	"github.com/octanews/authcore/internal/domain/models"
	domainsvc "github.com/octanews/authcore/internal/domain/service"
	"github.com/octanews/authcore/internal/infrastructure/email"
	"github.com/octanews/authcore/internal/infrastructure/monitoring"
	"github.com/octanews/authcore/pkg/constants"
	"github.com/octanews/authcore/pkg/cryptoutil"
	"github.com/octanews/authcore/pkg/errors"
	"github.com/octanews/authcore/pkg/logger"
)

// authFlow orchestrates the token lifecycle over the domain service
// contracts. Refresh tokens are deliberately not rotated on use; a stolen
// refresh token is bounded by its TTL and can be revoked explicitly, while
// rotation would break concurrent refreshes from multiple clients.
type authFlow struct {
	codec      domainsvc.TokenCodec
	revocation domainsvc.RevocationStore
	limiter    domainsvc.AttemptLimiter
	users      *UserLookup
	auditSink  domainsvc.AuditSink
	mailer     email.Enqueuer
	metrics    *monitoring.Metrics
	log        logger.Logger

	accessTTL time.Duration
}

// NewAuthFlow wires the flow over its collaborators. TTLs come from
// configuration so the codec itself never hardcodes validities.
func NewAuthFlow(
	codec domainsvc.TokenCodec,
	revocation domainsvc.RevocationStore,
	limiter domainsvc.AttemptLimiter,
	users *UserLookup,
	auditSink domainsvc.AuditSink,
	mailer email.Enqueuer,
	metrics *monitoring.Metrics,
	jwtCfg *config.JWTConfig,
	log logger.Logger,
) domainsvc.AuthFlow {
	accessTTL := jwtCfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = constants.AccessTokenDefaultTTL
	}
	return &authFlow{
		codec:      codec,
		revocation: revocation,
		limiter:    limiter,
		users:      users,
		auditSink:  auditSink,
		mailer:     mailer,
		metrics:    metrics,
		log:        log.WithComponent("auth_flow"),
		accessTTL:  accessTTL,
	}
}

// Login gates the attempt before touching credentials. The limiter gates run
// first so a blocked caller never reaches the password hash comparison, and a
// store outage fails closed rather than skipping the gates.
func (f *authFlow) Login(ctx context.Context, identifier, email, password string) (*domainsvc.LoginResult, error) {
	op := constants.OperationLogin

	limited, err := f.limiter.IsRateLimited(ctx, identifier, op)
	if err != nil {
		return nil, err
	}
	if limited {
		remaining, err := f.limiter.RemainingCooldown(ctx, identifier, op)
		if err != nil {
			return nil, err
		}
		f.metrics.LimiterVerdicts.WithLabelValues(string(op), "rate_limited").Inc()
		f.metrics.LoginAttempts.WithLabelValues("rate_limited").Inc()
		return &domainsvc.LoginResult{Status: domainsvc.LoginRateLimited, RetryAfter: remaining}, nil
	}

	captcha, err := f.limiter.IsCaptchaRequired(ctx, identifier, op)
	if err != nil {
		return nil, err
	}
	if captcha {
		f.metrics.LimiterVerdicts.WithLabelValues(string(op), "captcha_required").Inc()
		f.metrics.LoginAttempts.WithLabelValues("captcha_required").Inc()
		return &domainsvc.LoginResult{Status: domainsvc.LoginNeedsCaptcha}, nil
	}

	user, err := f.users.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.IsCode(err, constants.ErrCodeNotFound) {
			// Burn an attempt for unknown accounts too so enumeration and
			// guessing are throttled identically.
			return f.failLogin(ctx, identifier, email, "unknown account")
		}
		return nil, err
	}

	if !user.CanAuthenticate() {
		return f.failLogin(ctx, identifier, email, "account disabled")
	}

	if err := cryptoutil.VerifyPassword(password, user.PasswordHash); err != nil {
		if stderrors.Is(err, cryptoutil.ErrHashMismatch) {
			return f.failLogin(ctx, identifier, email, "bad credentials")
		}
		return nil, errors.ErrInternal("password verification failed").WithCause(err)
	}

	if err := f.limiter.RecordSuccess(ctx, identifier, op); err != nil {
		// The login itself succeeded; a failed counter reset only delays the
		// window expiry.
		f.log.Warn(ctx, "failed to clear attempt counter after login", logger.Err(err))
	}

	pair, err := f.issueTokenPair(ctx, user.Email)
	if err != nil {
		return nil, err
	}

	f.metrics.LoginAttempts.WithLabelValues("success").Inc()
	f.auditSink.Emit(ctx, constants.AuditEventLoginSuccess, user.Email, nil)
	return &domainsvc.LoginResult{Status: domainsvc.LoginOK, Tokens: pair}, nil
}

func (f *authFlow) failLogin(ctx context.Context, identifier, email, reason string) (*domainsvc.LoginResult, error) {
	count, err := f.limiter.RecordAttempt(ctx, identifier, constants.OperationLogin)
	if err != nil {
		return nil, err
	}
	f.metrics.LoginAttempts.WithLabelValues("failure").Inc()
	f.auditSink.Emit(ctx, constants.AuditEventLoginFailure, email, map[string]interface{}{
		"reason":  reason,
		"attempt": count,
	})

	// The attempt just recorded may itself cross the captcha threshold;
	// the caller learns about the challenge on this response.
	captcha, err := f.limiter.IsCaptchaRequired(ctx, identifier, constants.OperationLogin)
	if err != nil {
		return nil, err
	}
	if captcha {
		f.metrics.LimiterVerdicts.WithLabelValues(string(constants.OperationLogin), "captcha_required").Inc()
		return &domainsvc.LoginResult{Status: domainsvc.LoginNeedsCaptcha}, nil
	}
	return &domainsvc.LoginResult{Status: domainsvc.LoginInvalid}, nil
}

func (f *authFlow) issueTokenPair(ctx context.Context, subject string) (*models.TokenPair, error) {
	accessToken, err := f.codec.Issue(subject, constants.TokenTypeAccess, nil, f.accessTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := f.revocation.IssueRefreshToken(ctx, subject)
	if err != nil {
		return nil, err
	}

	f.metrics.TokensIssued.WithLabelValues(string(constants.TokenTypeAccess)).Inc()
	f.metrics.TokensIssued.WithLabelValues(string(constants.TokenTypeRefresh)).Inc()
	f.auditSink.Emit(ctx, constants.AuditEventTokenIssued, subject, nil)

	return &models.TokenPair{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessExpiresAt: time.Now().UTC().Add(f.accessTTL).Unix(),
	}, nil
}

// Register creates the account and dispatches a verification message. The
// verification token is a signed JWT whose subject is the email itself.
func (f *authFlow) Register(ctx context.Context, emailAddr, password, displayName string) (*models.User, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" || !strings.Contains(emailAddr, "@") {
		return nil, errors.ErrInvalidRequest("a valid email address is required")
	}
	if len(password) < 8 {
		return nil, errors.ErrInvalidRequest("password must be at least 8 characters")
	}

	hash, err := cryptoutil.HashPassword(password)
	if err != nil {
		return nil, errors.ErrInternal("failed to hash password").WithCause(err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		PasswordHash: hash,
		DisplayName:  displayName,
		Active:       true,
	}
	if err := f.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := f.codec.Issue(emailAddr, constants.TokenTypeEmailVerification, nil, constants.EmailVerificationTokenTTL)
	if err != nil {
		return nil, err
	}
	if f.emailSendAllowed(ctx, emailAddr) {
		if err := f.mailer.EnqueueVerification(ctx, emailAddr, token); err != nil {
			// The account exists; verification can be re-requested later.
			f.log.Error(ctx, "failed to enqueue verification email", err,
				logger.String("email", emailAddr))
		}
	}

	f.log.Info(ctx, "account registered", logger.String("user_id", user.ID))
	return user, nil
}

// VerifyEmail consumes a verification token and marks the account verified.
// Expired and mistyped tokens are both rejected as invalid.
func (f *authFlow) VerifyEmail(ctx context.Context, tokenString string) error {
	token, err := f.codec.Parse(tokenString)
	if err != nil {
		if errors.IsTokenExpired(err) {
			return err
		}
		return errors.ErrTokenInvalid("verification token rejected")
	}
	if token.Type != constants.TokenTypeEmailVerification {
		return errors.ErrTokenInvalid("not a verification token")
	}

	user, err := f.users.FindByEmail(ctx, token.Subject)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return nil
	}
	user.EmailVerified = true
	if err := f.users.Update(ctx, user); err != nil {
		return err
	}
	f.log.Info(ctx, "email verified", logger.String("user_id", user.ID))
	return nil
}

// Refresh exchanges a live refresh token for a fresh access token. The
// refresh token stays valid until its own TTL or an explicit revocation.
func (f *authFlow) Refresh(ctx context.Context, subject, refreshToken string) (*models.TokenPair, error) {
	live, err := f.revocation.ValidateRefreshToken(ctx, subject, refreshToken)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, errors.ErrTokenInvalid("refresh token rejected")
	}

	accessToken, err := f.codec.Issue(subject, constants.TokenTypeAccess, nil, f.accessTTL)
	if err != nil {
		return nil, err
	}
	f.metrics.TokensIssued.WithLabelValues(string(constants.TokenTypeAccess)).Inc()

	return &models.TokenPair{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessExpiresAt: time.Now().UTC().Add(f.accessTTL).Unix(),
	}, nil
}

// Logout blacklists the access token for its remaining life and revokes the
// refresh token when one is supplied. Both operations are idempotent.
func (f *authFlow) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if err := f.revocation.BlacklistAccessToken(ctx, accessToken); err != nil {
		return err
	}
	f.metrics.TokensRevoked.Inc()

	// Parse also succeeds for an expired token, which still names its subject.
	subject := ""
	if token, _ := f.codec.Parse(accessToken); token != nil {
		subject = token.Subject
	}
	if refreshToken != "" && subject != "" {
		if err := f.revocation.RevokeRefreshToken(ctx, subject, refreshToken); err != nil {
			return err
		}
	}

	f.auditSink.Emit(ctx, constants.AuditEventTokenRevoked, subject, nil)
	return nil
}

// RequestPasswordReset throttles per identifier and always reports success so
// callers cannot probe which addresses have accounts.
func (f *authFlow) RequestPasswordReset(ctx context.Context, identifier, emailAddr string) error {
	op := constants.OperationPasswordReset

	limited, err := f.limiter.IsRateLimited(ctx, identifier, op)
	if err != nil {
		return err
	}
	if limited {
		remaining, err := f.limiter.RemainingCooldown(ctx, identifier, op)
		if err != nil {
			return err
		}
		return errors.ErrRateLimited(int64(remaining.Seconds()))
	}
	if _, err := f.limiter.RecordAttempt(ctx, identifier, op); err != nil {
		return err
	}

	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	user, err := f.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.IsCode(err, constants.ErrCodeNotFound) {
			f.log.Info(ctx, "password reset requested for unknown account")
			return nil
		}
		return err
	}

	token, err := f.codec.Issue(user.Email, constants.TokenTypePasswordReset, nil, constants.PasswordResetTokenTTL)
	if err != nil {
		return err
	}
	if f.emailSendAllowed(ctx, user.Email) {
		if err := f.mailer.EnqueuePasswordReset(ctx, user.Email, token); err != nil {
			f.log.Error(ctx, "failed to enqueue password reset email", err)
		}
	}
	return nil
}

// emailSendAllowed throttles outbound mail per recipient. Errors and tripped
// gates both suppress the send; dispatch is best-effort and never fails the
// calling operation.
func (f *authFlow) emailSendAllowed(ctx context.Context, recipient string) bool {
	limited, err := f.limiter.IsRateLimited(ctx, recipient, constants.OperationEmailSend)
	if err != nil || limited {
		return false
	}
	if _, err := f.limiter.RecordAttempt(ctx, recipient, constants.OperationEmailSend); err != nil {
		return false
	}
	return true
}

// ValidateAccessToken verifies signature, expiry, type and blacklist state.
// A blacklist-store outage fails closed.
func (f *authFlow) ValidateAccessToken(ctx context.Context, tokenString string) (*models.Token, error) {
	token, err := f.codec.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if token.Type != constants.TokenTypeAccess {
		return nil, errors.ErrTokenInvalid("not an access token")
	}

	blacklisted, err := f.revocation.IsBlacklisted(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if blacklisted {
		return nil, errors.ErrTokenInvalid("token has been revoked")
	}
	return token, nil
}
