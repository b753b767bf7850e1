// Package http assembles the gin engine: middleware chain, route groups and
// the operational endpoints.
package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/octanews/authcore/internal/config"
	domainsvc "github.com/octanews/authcore/internal/domain/service"
	"github.com/octanews/authcore/internal/infrastructure/monitoring"
	"github.com/octanews/authcore/internal/interfaces/http/handlers"
	"github.com/octanews/authcore/internal/interfaces/http/middleware"
	"github.com/octanews/authcore/pkg/constants"
	"github.com/octanews/authcore/pkg/logger"
)

// RouterDeps carries everything the router needs; the caller owns lifecycle.
type RouterDeps struct {
	Config   *config.Config
	Flow     domainsvc.AuthFlow
	Csrf     domainsvc.CsrfTokenRepository
	Auth     *handlers.AuthHandler
	Health   *handlers.HealthHandler
	Metrics  *monitoring.Metrics
	Registry *prometheus.Registry
	Log      logger.Logger
}

// NewRouter builds the engine. CSRF protection covers every mutating route;
// GET /csrf is public, so pre-session callers bootstrap a token first.
func NewRouter(deps RouterDeps) *gin.Engine {
	if !deps.Config.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestContext(),
		middleware.Recovery(deps.Log),
		middleware.AccessLog(deps.Log, deps.Metrics),
	)

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", constants.CSRFHeaderName, "X-Request-ID")
	engine.Use(cors.New(corsCfg))

	engine.GET("/healthz", deps.Health.Live)
	engine.GET("/readyz", deps.Health.Ready)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	if deps.Config.Server.Debug {
		pprof.Register(engine)
	}

	api := engine.Group("/api/v1/auth")
	api.Use(middleware.RequireCsrf(deps.Csrf))
	{
		api.GET("/csrf", deps.Auth.CsrfToken)
		api.GET("/verify-email", deps.Auth.VerifyEmail)
		api.POST("/login", deps.Auth.Login)
		api.POST("/register", deps.Auth.Register)
		api.POST("/refresh", deps.Auth.Refresh)
		api.POST("/password-reset", deps.Auth.RequestPasswordReset)
	}

	session := engine.Group("/api/v1/auth")
	session.Use(middleware.RequireAuth(deps.Flow), middleware.RequireCsrf(deps.Csrf))
	{
		session.POST("/logout", deps.Auth.Logout)
		session.GET("/me", deps.Auth.Me)
	}

	return engine
}
