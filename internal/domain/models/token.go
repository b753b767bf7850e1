// Package models defines the domain models of the authcore service.
package models

import (
	"time"

	"github.com/octanews/authcore/pkg/constants"
)

// Token is the decoded form of a signed token. The signed string itself is
// the credential; this struct only exists in memory around issue and parse.
type Token struct {
	// JTI is the unique token identifier.
	JTI string `json:"jti"`

	// Subject is the identity the token was issued for, e.g. an email.
	Subject string `json:"sub"`

	// Type distinguishes access, refresh, csrf and email-verification tokens.
	Type constants.TokenType `json:"type"`

	// Issuer is the iss claim.
	Issuer string `json:"iss"`

	// IssuedAt is when the token was minted.
	IssuedAt time.Time `json:"iat"`

	// ExpiresAt is when the token stops being valid.
	ExpiresAt time.Time `json:"exp"`

	// Extra carries operation-specific claims such as authorities.
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// IsExpired reports whether the token is past its expiry.
func (t *Token) IsExpired() bool {
	return time.Now().UTC().After(t.ExpiresAt)
}

// RemainingLife returns the duration until expiry, which may be negative for
// an expired token.
func (t *Token) RemainingLife() time.Duration {
	return time.Until(t.ExpiresAt)
}

// TokenPair bundles the two credentials returned by a successful login.
type TokenPair struct {
	// AccessToken is the signed short-lived bearer credential.
	AccessToken string `json:"access_token"`

	// RefreshToken is the opaque long-lived credential tracked server-side.
	RefreshToken string `json:"refresh_token"`

	// AccessExpiresAt is the access token's expiry, Unix UTC seconds.
	AccessExpiresAt int64 `json:"access_expires_at"`
}

// CsrfToken is a stateless CSRF credential. Entirely reconstructable from the
// signed value; never persisted server-side.
type CsrfToken struct {
	// HeaderName is the request header clients send the token in.
	HeaderName string `json:"header_name"`

	// ParameterName is the form-parameter fallback.
	ParameterName string `json:"parameter_name"`

	// Value is the signed token string.
	Value string `json:"value"`
}
