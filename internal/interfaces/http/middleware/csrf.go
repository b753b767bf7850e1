package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainsvc "github.com/octanews/authcore/internal/domain/service"
	"github.com/octanews/authcore/pkg/errors"
)

// safeMethods never mutate state and are exempt from CSRF checks.
var safeMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// RequireCsrf rejects mutating requests that do not carry a valid CSRF token.
// The repository returns nil for a missing, malformed, mistyped or expired
// token alike, so every failure produces the same response.
func RequireCsrf(repo domainsvc.CsrfTokenRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if safeMethods[c.Request.Method] {
			c.Next()
			return
		}

		if repo.Load(c.Request) == nil {
			c.AbortWithStatusJSON(http.StatusForbidden,
				errors.ToErrorResponse(errors.ErrInvalidRequest("missing or invalid CSRF token")))
			return
		}
		c.Next()
	}
}
