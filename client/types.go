package client

import (
	"encoding/json"
	"time"
)

// Action mirrors the server's action wire shape. Payload is left raw so
// callers can decode the type-specific fields they care about.
type Action struct {
	ID               string          `json:"action_id"`
	Type             string          `json:"action_type"`
	Payload          json.RawMessage `json:"payload"`
	OwnerRole        string          `json:"owner_role"`
	RiskLevel        string          `json:"risk_level"`
	RequiresApproval bool            `json:"requires_approval"`
	ExpectedImpact   string          `json:"expected_impact"`
	Reason           string          `json:"reason"`
	SourceAlertID    string          `json:"source_alert_id,omitempty"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ExecOutcome is the structured result of a (simulated) backend call.
type ExecOutcome struct {
	Reference  string         `json:"reference,omitempty"`
	Ingredient string         `json:"ingredient,omitempty"`
	Message    string         `json:"message"`
	Detail     map[string]any `json:"detail,omitempty"`
}

// ExecResult reports whether execution succeeded and what happened.
type ExecResult struct {
	Success bool        `json:"success"`
	Result  ExecOutcome `json:"result"`
	Error   string      `json:"error,omitempty"`
}

// AuditEntry is one immutable audit trail record.
type AuditEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	ActionID    string    `json:"action_id"`
	Event       string    `json:"event"`
	Actor       string    `json:"actor"`
	Snapshot    *Action   `json:"action_snapshot,omitempty"`
	BeforeState *Action   `json:"before_state,omitempty"`
	AfterState  *Action   `json:"after_state,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// RiskEvent is one predicted stockout or surplus risk.
type RiskEvent struct {
	EventType  string         `json:"event_type"`
	ItemID     string         `json:"item_id"`
	Confidence float64        `json:"confidence"`
	DaysUntil  int            `json:"days_until"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// HistoricalContext carries usage statistics attached to an alert.
type HistoricalContext struct {
	AvgDailyUse     float64 `json:"avg_daily_use,omitempty"`
	DaysOfSupplyEst float64 `json:"latest_days_of_supply_est,omitempty"`
	MaxSafeOrderQty float64 `json:"max_safe_order_qty,omitempty"`
	Trend           string  `json:"trend,omitempty"`
	WasteToUseRatio float64 `json:"waste_to_use_ratio,omitempty"`
}

// Alert is a risk event plus its historical context, as submitted to the
// planner.
type Alert struct {
	RiskEvent RiskEvent         `json:"risk_event"`
	Context   HistoricalContext `json:"historical_context"`
}

// AlertRecord is one per-item cooldown history record.
type AlertRecord struct {
	LastAlertTS float64 `json:"last_alert_ts"`
	Confidence  float64 `json:"confidence"`
	DaysUntil   int     `json:"days_until"`
}

// Prediction is one classifier output row submitted to the alert pipeline.
type Prediction struct {
	ItemID              string  `json:"item_id"`
	StockoutProbability float64 `json:"stockout_probability"`
	SurplusProbability  float64 `json:"surplus_probability"`
	DaysUntilEvent      int     `json:"days_until_event"`
	ExpectedUnits       float64 `json:"expected_units"`
}

// PlanMetadata describes one planning cycle.
type PlanMetadata struct {
	RestaurantID    string    `json:"restaurant_id,omitempty"`
	Command         string    `json:"command,omitempty"`
	HorizonHours    int       `json:"horizon_hours,omitempty"`
	PlannedAt       time.Time `json:"planned_at"`
	AlertsProcessed int       `json:"alerts_processed"`
	ActionsProposed int       `json:"actions_proposed"`
	Source          string    `json:"source"`
}

// Plan is the outcome of one planning cycle.
type Plan struct {
	Status         string              `json:"status"`
	Message        string              `json:"message"`
	ActionQueue    []Action            `json:"action_queue"`
	GroupedByOwner map[string][]Action `json:"grouped_by_owner"`
	Metadata       PlanMetadata        `json:"plan_metadata"`
}

// AutoProcessed summarizes one auto-approved and executed action.
type AutoProcessed struct {
	ActionID    string `json:"action_id"`
	ActionType  string `json:"action_type"`
	Status      string `json:"status"`
	ExecSuccess bool   `json:"exec_success"`
}

// AutoRunResult summarizes one autopilot batch.
type AutoRunResult struct {
	AutoProcessed []AutoProcessed `json:"auto_processed"`
	NeedsReview   []Action        `json:"needs_review"`
	Summary       string          `json:"summary"`
}

// HealthResponse is the liveness check payload.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// StatusResponse is the agent status summary.
type StatusResponse struct {
	RestaurantID   string         `json:"restaurant_id"`
	Autopilot      bool           `json:"autopilot"`
	PlannerEnabled bool           `json:"planner_enabled"`
	StatusCounts   map[string]int `json:"status_counts"`
	AuditEntries   int            `json:"audit_entries"`
	WSClients      int64          `json:"ws_clients"`
}
