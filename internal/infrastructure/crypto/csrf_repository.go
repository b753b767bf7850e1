package crypto

import (
	"net/http"
	"time"

	"github.com/octanews/authcore/internal/domain/models"
	"github.com/octanews/authcore/internal/domain/service"
	"github.com/octanews/authcore/pkg/constants"
)

// csrfSubject is the fixed sub claim of every CSRF token.
const csrfSubject = "csrf"

type csrfTokenRepository struct {
	codec    service.TokenCodec
	validity time.Duration
}

// NewCsrfTokenRepository creates a stateless CSRF token repository on top of
// the signing codec. Tokens carry their own expiry; nothing is stored
// server-side, which trades slightly larger headers for zero session
// affinity.
func NewCsrfTokenRepository(codec service.TokenCodec, validity time.Duration) service.CsrfTokenRepository {
	if validity <= 0 {
		validity = constants.CSRFTokenDefaultTTL
	}
	return &csrfTokenRepository{codec: codec, validity: validity}
}

// Generate mints a short-lived signed CSRF token. The jti stamped by the
// codec makes every token unique.
func (r *csrfTokenRepository) Generate() (*models.CsrfToken, error) {
	signed, err := r.codec.Issue(csrfSubject, constants.TokenTypeCSRF, nil, r.validity)
	if err != nil {
		return nil, err
	}
	return &models.CsrfToken{
		HeaderName:    constants.CSRFHeaderName,
		ParameterName: constants.CSRFParameterName,
		Value:         signed,
	}, nil
}

// Load reads and verifies the CSRF token from the request. Missing header,
// bad signature, wrong token type and expiry all return nil alike: the
// consuming middleware treats invalidity identically to absence.
func (r *csrfTokenRepository) Load(req *http.Request) *models.CsrfToken {
	value := req.Header.Get(constants.CSRFHeaderName)
	if value == "" {
		value = req.PostFormValue(constants.CSRFParameterName)
	}
	if value == "" {
		return nil
	}

	token, err := r.codec.Parse(value)
	if err != nil {
		return nil
	}
	if token.Type != constants.TokenTypeCSRF || token.Subject != csrfSubject {
		return nil
	}

	return &models.CsrfToken{
		HeaderName:    constants.CSRFHeaderName,
		ParameterName: constants.CSRFParameterName,
		Value:         value,
	}
}

// Save is a no-op: the token is self-contained, so there is nothing to
// persist.
func (r *csrfTokenRepository) Save(_ *models.CsrfToken, _ http.ResponseWriter) {}
