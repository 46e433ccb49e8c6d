package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stockpilotai/stockpilot/internal/riskgen"
	"github.com/stockpilotai/stockpilot/internal/rules"
	"github.com/stockpilotai/stockpilot/internal/ws"
)

// AlertsHandler runs the alert pipeline: classifier predictions in, risk
// events out, then operator rules and the anti-spam cooldown filter.
type AlertsHandler struct {
	filter     AlertFilter
	rules      *rules.Rules
	hub        *ws.Hub
	log        *logrus.Logger
	outputPath string // classifier output file, used when no predictions are posted
}

// NewAlertsHandler creates an AlertsHandler.
func NewAlertsHandler(filter AlertFilter, r *rules.Rules, hub *ws.Hub, log *logrus.Logger, outputPath string) *AlertsHandler {
	return &AlertsHandler{
		filter:     filter,
		rules:      r,
		hub:        hub,
		log:        log,
		outputPath: outputPath,
	}
}

// runRequest is the body for POST /api/alerts/run. Predictions may be
// omitted; the configured classifier output file is read instead.
type runRequest struct {
	Predictions []riskgen.Prediction `json:"predictions"`
	Threshold   float64              `json:"threshold"`
}

// Run handles POST /api/alerts/run.
func (h *AlertsHandler) Run(c *gin.Context) {
	var req runRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
			return
		}
	}

	preds := req.Predictions
	if len(preds) == 0 {
		if h.outputPath == "" {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest,
				"no predictions posted and no classifier output file configured")
			return
		}

		var err error
		preds, err = riskgen.LoadPredictions(h.outputPath)
		if err != nil {
			h.log.WithError(err).Error("failed to load classifier output")
			respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "failed to load classifier output")
			return
		}
	}

	events := riskgen.GenerateRiskEvents(preds, req.Threshold)
	filtered := h.rules.Apply(events)
	eligible := h.filter.FilterEligible(c.Request.Context(), filtered, time.Time{})

	if len(eligible) > 0 {
		h.hub.Broadcast(ws.EventAlertsEligible, eligible)
	}

	c.JSON(http.StatusOK, gin.H{
		"predictions_read": len(preds),
		"events_generated": len(events),
		"after_rules":      len(filtered),
		"eligible":         eligible,
		"suppressed":       len(filtered) - len(eligible),
	})
}

// History handles GET /api/alerts/history: the per-item cooldown records.
func (h *AlertsHandler) History(c *gin.Context) {
	history := h.filter.History(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"history": history,
		"count":   len(history),
	})
}

// Reset handles POST /api/alerts/reset: clears the cooldown history so
// every item alerts again on the next run.
func (h *AlertsHandler) Reset(c *gin.Context) {
	h.filter.ResetHistory(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true})
}
