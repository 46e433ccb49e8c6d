package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stockpilotai/stockpilot/internal/dbpool"
)

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	pool      *dbpool.Pool // nil when running on the file backend
	log       *logrus.Logger
	version   string
	startTime time.Time
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(pool *dbpool.Pool, log *logrus.Logger, version string) *HealthHandler {
	return &HealthHandler{
		pool:      pool,
		log:       log,
		version:   version,
		startTime: time.Now(),
	}
}

// Liveness handles GET /api/v1/health. It reports that the process is up
// without touching dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"version":        h.version,
		"uptime_seconds": time.Since(h.startTime).Seconds(),
	})
}

// Readiness handles GET /api/v1/ready. On the postgres backend it pings
// the database; the file backend is always ready.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := map[string]string{"storage": "ok"}
	status := http.StatusOK
	state := "ready"

	if h.pool != nil {
		if err := h.pool.Ping(c.Request.Context()); err != nil {
			h.log.WithError(err).Warn("readiness database ping failed")
			checks["storage"] = "unreachable"
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
	}

	c.JSON(status, gin.H{
		"status": state,
		"checks": checks,
	})
}
