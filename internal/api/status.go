package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stockpilotai/stockpilot/internal/ws"
)

// StatusHandler reports agent state for the dashboard.
type StatusHandler struct {
	svc            ActionService
	audit          AuditReader
	hub            *ws.Hub
	log            *logrus.Logger
	restaurantID   string
	autopilot      bool
	plannerEnabled bool
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(svc ActionService, audit AuditReader, hub *ws.Hub, log *logrus.Logger, restaurantID string, autopilot, plannerEnabled bool) *StatusHandler {
	return &StatusHandler{
		svc:            svc,
		audit:          audit,
		hub:            hub,
		log:            log,
		restaurantID:   restaurantID,
		autopilot:      autopilot,
		plannerEnabled: plannerEnabled,
	}
}

// Status handles GET /agent/status.
func (h *StatusHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"restaurant_id":   h.restaurantID,
		"autopilot":       h.autopilot,
		"planner_enabled": h.plannerEnabled,
		"status_counts":   h.svc.StatusCounts(),
		"audit_entries":   h.audit.Len(),
		"ws_clients":      h.hub.ClientCount(),
	})
}
