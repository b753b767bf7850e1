// Package handlers implements the HTTP endpoints of the authcore service.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainsvc "github.com/octanews/authcore/internal/domain/service"
	"github.com/octanews/authcore/internal/interfaces/http/middleware"
	"github.com/octanews/authcore/pkg/errors"
	"github.com/octanews/authcore/pkg/logger"
)

// AuthHandler exposes login, registration, token lifecycle and CSRF
// endpoints over the authentication flow.
type AuthHandler struct {
	flow domainsvc.AuthFlow
	csrf domainsvc.CsrfTokenRepository
	log  logger.Logger
}

// NewAuthHandler creates the handler set.
func NewAuthHandler(flow domainsvc.AuthFlow, csrf domainsvc.CsrfTokenRepository, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		flow: flow,
		csrf: csrf,
		log:  log.WithComponent("auth_handler"),
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
}

type refreshRequest struct {
	Email        string `json:"email" binding:"required"`
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type passwordResetRequest struct {
	Email string `json:"email" binding:"required"`
}

// Login handles POST /api/v1/auth/login. The limiter is keyed on the
// submitted email so attempts against one account from many addresses share
// a counter.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, errors.ErrInvalidRequest("email and password are required"))
		return
	}

	identifier := strings.ToLower(strings.TrimSpace(req.Email))
	result, err := h.flow.Login(c.Request.Context(), identifier, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	switch result.Status {
	case domainsvc.LoginOK:
		c.JSON(http.StatusOK, result.Tokens)
	case domainsvc.LoginNeedsCaptcha:
		h.writeError(c, errors.ErrCaptchaRequired())
	case domainsvc.LoginRateLimited:
		h.writeError(c, errors.ErrRateLimited(int64(result.RetryAfter.Seconds())))
	default:
		// The same response for unknown account and wrong password.
		h.writeError(c, errors.ErrAuthenticationFailed())
	}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, errors.ErrInvalidRequest("email and password are required"))
		return
	}

	user, err := h.flow.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":    user.ID,
		"email": user.Email,
	})
}

// VerifyEmail handles GET /api/v1/auth/verify-email?token=...
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		h.writeError(c, errors.ErrInvalidRequest("token query parameter is required"))
		return
	}
	if err := h.flow.VerifyEmail(c.Request.Context(), tokenString); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": true})
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, errors.ErrInvalidRequest("email and refresh_token are required"))
		return
	}

	subject := strings.ToLower(strings.TrimSpace(req.Email))
	pair, err := h.flow.Refresh(c.Request.Context(), subject, req.RefreshToken)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// Logout handles POST /api/v1/auth/logout. The access token comes from the
// Authorization header; the refresh token is optional in the body.
func (h *AuthHandler) Logout(c *gin.Context) {
	accessToken := bearerToken(c)
	if accessToken == "" {
		h.writeError(c, errors.ErrTokenInvalid("missing bearer token"))
		return
	}

	var req logoutRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.flow.Logout(c.Request.Context(), accessToken, req.RefreshToken); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logged_out": true})
}

// RequestPasswordReset handles POST /api/v1/auth/password-reset. The response
// is identical whether or not the account exists.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req passwordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, errors.ErrInvalidRequest("email is required"))
		return
	}

	identifier := strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.flow.RequestPasswordReset(c.Request.Context(), identifier, req.Email); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}

// CsrfToken handles GET /api/v1/auth/csrf. Clients echo the value back in the
// named header on mutating requests.
func (h *AuthHandler) CsrfToken(c *gin.Context) {
	token, err := h.csrf.Generate()
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.csrf.Save(token, c.Writer)
	c.JSON(http.StatusOK, token)
}

// Me handles GET /api/v1/auth/me on the protected group, returning the
// authenticated subject.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"subject": middleware.Subject(c)})
}

func (h *AuthHandler) writeError(c *gin.Context, err error) {
	if errors.IsStoreUnavailable(err) {
		h.log.Error(c.Request.Context(), "request failed on store outage", err)
	}
	c.JSON(errors.HTTPStatusOf(err), errors.ToErrorResponse(err))
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
