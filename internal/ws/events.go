package ws

import (
	"encoding/json"
	"time"
)

// Event types broadcast to dashboard clients.
const (
	EventActionsProposed = "actions.proposed"
	EventActionUpdated   = "action.updated"
	EventAlertsEligible  = "alerts.eligible"
)

// Event is the structured message sent to WebSocket clients.
type Event struct {
	Type string          `json:"type"`
	ID   uint64          `json:"id"`
	Data json.RawMessage `json:"data"`
	Time time.Time       `json:"time"`
}
