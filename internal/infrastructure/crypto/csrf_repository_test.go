package crypto

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octanews/authcore/pkg/constants"
)

func TestCsrfRepository_GenerateAndLoad(t *testing.T) {
	codec, _ := newTestCodec(t)
	repo := NewCsrfTokenRepository(codec, 30*time.Minute)

	token, err := repo.Generate()
	require.NoError(t, err)
	assert.Equal(t, constants.CSRFHeaderName, token.HeaderName)
	assert.Equal(t, constants.CSRFParameterName, token.ParameterName)
	require.NotEmpty(t, token.Value)

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set(constants.CSRFHeaderName, token.Value)

	loaded := repo.Load(req)
	require.NotNil(t, loaded)
	assert.Equal(t, token.Value, loaded.Value)
}

func TestCsrfRepository_LoadFromFormParameter(t *testing.T) {
	codec, _ := newTestCodec(t)
	repo := NewCsrfTokenRepository(codec, 30*time.Minute)

	token, err := repo.Generate()
	require.NoError(t, err)

	form := url.Values{constants.CSRFParameterName: {token.Value}}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	require.NotNil(t, repo.Load(req))
}

func TestCsrfRepository_LoadReturnsNilOnAnyFailure(t *testing.T) {
	codec, _ := newTestCodec(t)
	otherCodec, _ := newTestCodec(t)
	repo := NewCsrfTokenRepository(codec, 30*time.Minute)

	// No token at all.
	assert.Nil(t, repo.Load(httptest.NewRequest(http.MethodPost, "/submit", nil)))

	// Garbage value.
	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set(constants.CSRFHeaderName, "garbage")
	assert.Nil(t, repo.Load(req))

	// Well-signed token of the wrong type.
	accessToken, err := codec.Issue("alice@example.com", constants.TokenTypeAccess, nil, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set(constants.CSRFHeaderName, accessToken)
	assert.Nil(t, repo.Load(req))

	// CSRF token signed by a different keypair.
	foreign, err := NewCsrfTokenRepository(otherCodec, 30*time.Minute).Generate()
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set(constants.CSRFHeaderName, foreign.Value)
	assert.Nil(t, repo.Load(req))
}

func TestCsrfRepository_LoadReturnsNilForExpiredToken(t *testing.T) {
	_, provider := newTestCodec(t)
	codec := NewJWTCodec(provider, "test-issuer")
	repo := NewCsrfTokenRepository(codec, 30*time.Minute)

	// A well-signed CSRF token already past its expiry.
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  csrfSubject,
		"iss":  "test-issuer",
		"iat":  jwt.NewNumericDate(now.Add(-time.Hour)),
		"exp":  jwt.NewNumericDate(now.Add(-time.Minute)),
		"jti":  "expired-csrf",
		"type": string(constants.TokenTypeCSRF),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).
		SignedString(provider.PrivateKey())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set(constants.CSRFHeaderName, signed)
	assert.Nil(t, repo.Load(req))
}

func TestCsrfRepository_SaveIsNoOp(t *testing.T) {
	codec, _ := newTestCodec(t)
	repo := NewCsrfTokenRepository(codec, 30*time.Minute)

	token, err := repo.Generate()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	repo.Save(token, rec)
	assert.Empty(t, rec.Header())
}
