// Package domain defines the canonical interfaces shared across the API,
// service, and storage layers. Consumers should depend on these rather
// than re-declaring equivalent ones.
package domain

import (
	"context"

	"github.com/stockpilotai/stockpilot/internal/models"
)

// AuditStore persists the append-only audit log. Implementations are
// best-effort: the in-memory log is authoritative, and callers treat
// failures here as non-fatal.
type AuditStore interface {
	// Load returns all persisted entries in append order.
	Load(ctx context.Context) ([]models.AuditEntry, error)
	// Append persists one entry at the end of the log.
	Append(ctx context.Context, entry models.AuditEntry) error
	// Clear removes every persisted entry.
	Clear(ctx context.Context) error
}

// HistoryStore persists the per-item alert cooldown history.
type HistoryStore interface {
	Load(ctx context.Context) (map[string]models.AlertRecord, error)
	Save(ctx context.Context, history map[string]models.AlertRecord) error
	Clear(ctx context.Context) error
}

// ActionProposal is one raw candidate action from an external proposer,
// before validation and normalization by the planner.
type ActionProposal struct {
	ActionType      string         `json:"action_type"`
	Payload         map[string]any `json:"payload"`
	OwnerRole       string         `json:"owner_role"`
	RiskLevel       string         `json:"risk_level"`
	ExpectedImpact  string         `json:"expected_impact"`
	Reason          string         `json:"reason"`
	SourceAlertItem string         `json:"source_alert_item"`
}

// PlanRequest is the operational picture handed to a proposer.
type PlanRequest struct {
	Alerts       []models.Alert
	Inventory    []map[string]any
	History      []models.Action
	RestaurantID string
	HorizonHours int
	Command      string // set for operator commands, empty for scheduled plans
}

// Proposer generates candidate actions from the current operational
// picture. Implementations are black boxes (typically an LLM); the core
// never depends on how proposals are produced.
type Proposer interface {
	Propose(ctx context.Context, req PlanRequest) ([]ActionProposal, error)
}
