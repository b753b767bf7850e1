package crypto

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/octanews/authcore/internal/domain/models"
	"github.com/octanews/authcore/internal/domain/service"
	"github.com/octanews/authcore/pkg/constants"
	"github.com/octanews/authcore/pkg/errors"
)

// reservedClaims are stamped by the codec itself and must not be overridden
// through the extra-claims map.
var reservedClaims = map[string]struct{}{
	"sub": {}, "iat": {}, "exp": {}, "iss": {}, "jti": {}, "type": {},
}

type jwtCodec struct {
	keys   service.KeyProvider
	issuer string
}

// NewJWTCodec creates a TokenCodec signing with RS256 against the provider's
// keypair. The provider must be initialized before the first Issue or Parse.
func NewJWTCodec(keys service.KeyProvider, issuer string) service.TokenCodec {
	if issuer == "" {
		issuer = constants.DefaultIssuer
	}
	return &jwtCodec{keys: keys, issuer: issuer}
}

// Issue builds and signs a token. Tokens are deliberately never idempotent:
// the iat/exp timestamps and the random jti differ on every call.
func (c *jwtCodec) Issue(subject string, tokenType constants.TokenType, extra map[string]interface{}, validity time.Duration) (string, error) {
	if validity <= 0 {
		return "", errors.ErrInvalidRequest("token validity must be positive")
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  subject,
		"iss":  c.issuer,
		"iat":  jwt.NewNumericDate(now),
		"exp":  jwt.NewNumericDate(now.Add(validity)),
		"jti":  uuid.NewString(),
		"type": string(tokenType),
	}
	for k, v := range extra {
		if _, reserved := reservedClaims[k]; reserved {
			continue
		}
		claims[k] = v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(c.keys.PrivateKey())
	if err != nil {
		return "", errors.ErrInternal("failed to sign token").WithCause(err)
	}
	return signed, nil
}

// Parse verifies the signature, then checks expiry as a separate explicit
// step so an expired-but-well-signed token still yields its claims alongside
// the token-expired error.
func (c *jwtCodec) Parse(tokenString string) (*models.Token, error) {
	parsed, err := jwt.Parse(tokenString,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, errors.ErrTokenInvalid("unexpected signing method")
			}
			return c.keys.PublicKey(), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, errors.ErrTokenInvalid("signature verification failed").WithCause(err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.ErrTokenInvalid("unexpected claims format")
	}

	token, err := tokenFromClaims(claims)
	if err != nil {
		return nil, err
	}

	if token.IsExpired() {
		return token, errors.ErrTokenExpired(token.Type)
	}
	return token, nil
}

func tokenFromClaims(claims jwt.MapClaims) (*models.Token, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, errors.ErrTokenInvalid("missing sub claim")
	}
	iss, err := claims.GetIssuer()
	if err != nil {
		return nil, errors.ErrTokenInvalid("missing iss claim")
	}
	iat, err := claims.GetIssuedAt()
	if err != nil || iat == nil {
		return nil, errors.ErrTokenInvalid("missing iat claim")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errors.ErrTokenInvalid("missing exp claim")
	}

	token := &models.Token{
		Subject:   sub,
		Issuer:    iss,
		IssuedAt:  iat.Time.UTC(),
		ExpiresAt: exp.Time.UTC(),
	}

	if jti, ok := claims["jti"].(string); ok {
		token.JTI = jti
	}
	if typ, ok := claims["type"].(string); ok {
		token.Type = constants.TokenType(typ)
	}

	extra := make(map[string]interface{})
	for k, v := range claims {
		if _, reserved := reservedClaims[k]; reserved {
			continue
		}
		extra[k] = v
	}
	if len(extra) > 0 {
		token.Extra = extra
	}

	return token, nil
}
