package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainsvc "github.com/octanews/authcore/internal/domain/service"
	"github.com/octanews/authcore/pkg/constants"
	"github.com/octanews/authcore/pkg/errors"
)

// RequireAuth validates the bearer token on protected routes. Signature,
// expiry, token type and blacklist state are all checked; a blacklist-store
// outage rejects the request rather than letting a possibly revoked token
// through.
func RequireAuth(flow domainsvc.AuthFlow) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				errors.ToErrorResponse(errors.ErrTokenInvalid("missing bearer token")))
			return
		}

		token, err := flow.ValidateAccessToken(c.Request.Context(), tokenString)
		if err != nil {
			c.AbortWithStatusJSON(errors.HTTPStatusOf(err), errors.ToErrorResponse(err))
			return
		}

		ctx := context.WithValue(c.Request.Context(), constants.ContextKeySubject, token.Subject)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
