package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	redisstore "github.com/octanews/authcore/internal/infrastructure/persistence/redis"
)

// HealthHandler reports process liveness and backing-store reachability.
type HealthHandler struct {
	conn *redisstore.Connection
}

// NewHealthHandler creates the health endpoint set.
func NewHealthHandler(conn *redisstore.Connection) *HealthHandler {
	return &HealthHandler{conn: conn}
}

// Live handles GET /healthz; it succeeds whenever the process is up.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /readyz; it fails when the TTL store is unreachable,
// since the limiter and blacklist fail closed without it.
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.conn.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
