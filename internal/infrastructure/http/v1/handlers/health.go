package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// DBPinger checks database connectivity for the readiness probe.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	version string
	db      DBPinger
}

// NewHealthHandler creates a health handler. db may be nil when the
// service runs without a database (in-memory mode).
func NewHealthHandler(version string, db DBPinger) *HealthHandler {
	return &HealthHandler{version: version, db: db}
}

// Live handles the liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
	})
}

// Ready handles the readiness probe (is the service ready to accept
// traffic?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"checks": map[string]string{"database": "in-memory"},
		})
		return
	}

	if err := h.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": map[string]string{"database": "unhealthy: " + err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{"database": "healthy"},
	})
}
