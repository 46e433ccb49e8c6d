package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stockpilotai/stockpilot/internal/models"
)

// AuditHandler serves the audit trail endpoints.
type AuditHandler struct {
	audit AuditReader
	log   *logrus.Logger
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(audit AuditReader, log *logrus.Logger) *AuditHandler {
	return &AuditHandler{audit: audit, log: log}
}

// History handles GET /agent/history. Entries come back newest-first and
// can be narrowed by ?action_id= and ?event=.
func (h *AuditHandler) History(c *gin.Context) {
	q := models.AuditQuery{
		Limit:    parseInt(c.Query("limit"), 0),
		ActionID: c.Query("action_id"),
		Event:    c.Query("event"),
	}

	entries := h.audit.Entries(q)
	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
		"total":   h.audit.Len(),
	})
}
