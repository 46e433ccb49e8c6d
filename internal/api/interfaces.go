package api

import (
	"context"
	"time"

	"github.com/stockpilotai/stockpilot/internal/agent"
	"github.com/stockpilotai/stockpilot/internal/domain"
	"github.com/stockpilotai/stockpilot/internal/models"
)

// ActionService defines the action queue operations used by ActionHandler.
// *agent.Executor satisfies it.
type ActionService interface {
	StoreActions(actions []models.Action)
	Get(id string) (*models.Action, bool)
	All(status models.ActionStatus) []models.Action
	Approve(id, actor string) (*models.Action, error)
	Reject(id, actor, reason string) (*models.Action, error)
	Execute(id, actor string) (*models.Action, *agent.ExecResult, error)
	Rollback(id, actor, reason string) (*models.Action, error)
	AutoApproveAndExecute(actions []models.Action, actor string) agent.AutoRunResult
	StatusCounts() map[models.ActionStatus]int
}

// PlanService defines the planning operations used by PlanHandler.
// *agent.Planner satisfies it.
type PlanService interface {
	GeneratePlan(ctx context.Context, req domain.PlanRequest) *agent.Plan
	GeneratePlanFromCommand(ctx context.Context, req domain.PlanRequest) *agent.Plan
}

// AuditReader defines the audit log reads used by AuditHandler and
// StatusHandler. *audit.Log satisfies it.
type AuditReader interface {
	Entries(q models.AuditQuery) []models.AuditEntry
	Len() int
}

// AlertFilter defines the anti-spam eligibility operations used by
// AlertsHandler. *agent.EligibilityFilter satisfies it.
type AlertFilter interface {
	FilterEligible(ctx context.Context, events []models.RiskEvent, now time.Time) []models.RiskEvent
	History(ctx context.Context) map[string]models.AlertRecord
	ResetHistory(ctx context.Context)
}
