package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stockpilotai/stockpilot/internal/models"
	"github.com/stockpilotai/stockpilot/internal/ws"
)

// ActionHandler serves the action queue lifecycle endpoints.
type ActionHandler struct {
	svc ActionService
	hub *ws.Hub
	log *logrus.Logger
}

// NewActionHandler creates an ActionHandler.
func NewActionHandler(svc ActionService, hub *ws.Hub, log *logrus.Logger) *ActionHandler {
	return &ActionHandler{svc: svc, hub: hub, log: log}
}

// actionRequest is the shared body for lifecycle endpoints. Reason is only
// meaningful for reject and rollback.
type actionRequest struct {
	ActionID string `json:"action_id" binding:"required"`
	Actor    string `json:"actor"`
	Reason   string `json:"reason"`
}

// List handles GET /agent/actions. An optional ?status= query filters by
// lifecycle status.
func (h *ActionHandler) List(c *gin.Context) {
	status := models.ActionStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "unknown status filter")
		return
	}

	actions := h.svc.All(status)
	c.JSON(http.StatusOK, gin.H{
		"actions": actions,
		"count":   len(actions),
	})
}

// Get handles GET /agent/actions/:id.
func (h *ActionHandler) Get(c *gin.Context) {
	a, ok := h.svc.Get(c.Param("id"))
	if !ok {
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "action not found")
		return
	}
	c.JSON(http.StatusOK, a)
}

// Approve handles POST /agent/approve.
func (h *ActionHandler) Approve(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	a, err := h.svc.Approve(req.ActionID, req.Actor)
	if err != nil {
		h.respondLifecycleError(c, err, "approve")
		return
	}

	h.hub.Broadcast(ws.EventActionUpdated, a)
	c.JSON(http.StatusOK, gin.H{"success": true, "action": a})
}

// Reject handles POST /agent/reject.
func (h *ActionHandler) Reject(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	a, err := h.svc.Reject(req.ActionID, req.Actor, req.Reason)
	if err != nil {
		h.respondLifecycleError(c, err, "reject")
		return
	}

	h.hub.Broadcast(ws.EventActionUpdated, a)
	c.JSON(http.StatusOK, gin.H{"success": true, "action": a})
}

// Execute handles POST /agent/execute. The simulated backend outcome is
// returned alongside the final action state.
func (h *ActionHandler) Execute(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	a, res, err := h.svc.Execute(req.ActionID, req.Actor)
	if err != nil {
		h.respondLifecycleError(c, err, "execute")
		return
	}

	h.hub.Broadcast(ws.EventActionUpdated, a)
	c.JSON(http.StatusOK, gin.H{
		"success": res.Success,
		"action":  a,
		"result":  res,
	})
}

// Rollback handles POST /agent/rollback.
func (h *ActionHandler) Rollback(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	a, err := h.svc.Rollback(req.ActionID, req.Actor, req.Reason)
	if err != nil {
		h.respondLifecycleError(c, err, "rollback")
		return
	}

	h.hub.Broadcast(ws.EventActionUpdated, a)
	c.JSON(http.StatusOK, gin.H{"success": true, "action": a})
}

// autoRequest is the body for the autopilot batch endpoint.
type autoRequest struct {
	Actor string `json:"actor"`
}

// AutoRun handles POST /agent/auto: every proposed action that qualifies for
// auto-approval is approved and executed; the rest are returned for review.
func (h *ActionHandler) AutoRun(c *gin.Context) {
	var req autoRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
			return
		}
	}
	if req.Actor == "" {
		req.Actor = "autopilot"
	}

	proposed := h.svc.All(models.StatusProposed)
	result := h.svc.AutoApproveAndExecute(proposed, req.Actor)

	for _, p := range result.AutoProcessed {
		if a, ok := h.svc.Get(p.ActionID); ok {
			h.hub.Broadcast(ws.EventActionUpdated, a)
		}
	}

	c.JSON(http.StatusOK, result)
}

func (h *ActionHandler) bindRequest(c *gin.Context) (actionRequest, bool) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "action_id is required")
		return req, false
	}
	return req, true
}

// respondLifecycleError maps lifecycle errors to HTTP statuses: missing
// actions are 404, disallowed transitions 409.
func (h *ActionHandler) respondLifecycleError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, models.ErrActionNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "action not found")
	case errors.Is(err, models.ErrInvalidTransition):
		respondError(c, http.StatusConflict, ErrCodeConflict, err.Error())
	default:
		h.log.WithError(err).WithField("op", op).Error("action lifecycle operation failed")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "operation failed")
	}
}
