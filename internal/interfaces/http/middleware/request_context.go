// Package middleware provides the gin middleware chain of the authcore HTTP
// surface: request correlation, access logging, panic recovery, CSRF
// protection and bearer-token authentication.
package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/octanews/authcore/internal/infrastructure/monitoring"
	"github.com/octanews/authcore/pkg/constants"
	"github.com/octanews/authcore/pkg/errors"
	"github.com/octanews/authcore/pkg/logger"
)

// RequestContext stamps every request with a correlation id and propagates it
// through the request context so downstream log lines can be tied together.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// AccessLog writes one structured line per request and feeds the request
// duration histogram.
func AccessLog(log logger.Logger, metrics *monitoring.Metrics) gin.HandlerFunc {
	log = log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestDuration.WithLabelValues(route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())

		log.Info(c.Request.Context(), "request completed",
			logger.String("method", c.Request.Method),
			logger.String("route", route),
			logger.Int("status", status),
			logger.Duration("elapsed", time.Since(start)))
	}
}

// Recovery converts panics into a 500 response without leaking internals.
func Recovery(log logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error(c.Request.Context(), "handler panicked", fmt.Errorf("%v", r))
				c.AbortWithStatusJSON(500, errors.ToErrorResponse(errors.ErrInternal("internal server error")))
			}
		}()
		c.Next()
	}
}

// Subject returns the authenticated subject placed by RequireAuth, or "".
func Subject(c *gin.Context) string {
	subject, _ := c.Request.Context().Value(constants.ContextKeySubject).(string)
	return subject
}
