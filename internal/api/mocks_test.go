package api_test

import (
	"context"
	"time"

	"github.com/stockpilotai/stockpilot/internal/agent"
	"github.com/stockpilotai/stockpilot/internal/domain"
	"github.com/stockpilotai/stockpilot/internal/models"
)

// mockActionService implements api.ActionService for testing.
type mockActionService struct {
	storeFn    func(actions []models.Action)
	getFn      func(id string) (*models.Action, bool)
	allFn      func(status models.ActionStatus) []models.Action
	approveFn  func(id, actor string) (*models.Action, error)
	rejectFn   func(id, actor, reason string) (*models.Action, error)
	executeFn  func(id, actor string) (*models.Action, *agent.ExecResult, error)
	rollbackFn func(id, actor, reason string) (*models.Action, error)
	autoFn     func(actions []models.Action, actor string) agent.AutoRunResult
	countsFn   func() map[models.ActionStatus]int
}

func (m *mockActionService) StoreActions(actions []models.Action) {
	if m.storeFn != nil {
		m.storeFn(actions)
	}
}

func (m *mockActionService) Get(id string) (*models.Action, bool) {
	if m.getFn == nil {
		return nil, false
	}
	return m.getFn(id)
}

func (m *mockActionService) All(status models.ActionStatus) []models.Action {
	if m.allFn == nil {
		return nil
	}
	return m.allFn(status)
}

func (m *mockActionService) Approve(id, actor string) (*models.Action, error) {
	return m.approveFn(id, actor)
}

func (m *mockActionService) Reject(id, actor, reason string) (*models.Action, error) {
	return m.rejectFn(id, actor, reason)
}

func (m *mockActionService) Execute(id, actor string) (*models.Action, *agent.ExecResult, error) {
	return m.executeFn(id, actor)
}

func (m *mockActionService) Rollback(id, actor, reason string) (*models.Action, error) {
	return m.rollbackFn(id, actor, reason)
}

func (m *mockActionService) AutoApproveAndExecute(actions []models.Action, actor string) agent.AutoRunResult {
	return m.autoFn(actions, actor)
}

func (m *mockActionService) StatusCounts() map[models.ActionStatus]int {
	if m.countsFn == nil {
		return map[models.ActionStatus]int{}
	}
	return m.countsFn()
}

// mockPlanService implements api.PlanService for testing.
type mockPlanService struct {
	planFn    func(ctx context.Context, req domain.PlanRequest) *agent.Plan
	commandFn func(ctx context.Context, req domain.PlanRequest) *agent.Plan
}

func (m *mockPlanService) GeneratePlan(ctx context.Context, req domain.PlanRequest) *agent.Plan {
	return m.planFn(ctx, req)
}

func (m *mockPlanService) GeneratePlanFromCommand(ctx context.Context, req domain.PlanRequest) *agent.Plan {
	return m.commandFn(ctx, req)
}

// mockAuditReader implements api.AuditReader for testing.
type mockAuditReader struct {
	entriesFn func(q models.AuditQuery) []models.AuditEntry
	lenFn     func() int
}

func (m *mockAuditReader) Entries(q models.AuditQuery) []models.AuditEntry {
	if m.entriesFn == nil {
		return nil
	}
	return m.entriesFn(q)
}

func (m *mockAuditReader) Len() int {
	if m.lenFn == nil {
		return 0
	}
	return m.lenFn()
}

// mockAlertFilter implements api.AlertFilter for testing.
type mockAlertFilter struct {
	filterFn  func(ctx context.Context, events []models.RiskEvent, now time.Time) []models.RiskEvent
	historyFn func(ctx context.Context) map[string]models.AlertRecord
	resetFn   func(ctx context.Context)
}

func (m *mockAlertFilter) FilterEligible(ctx context.Context, events []models.RiskEvent, now time.Time) []models.RiskEvent {
	return m.filterFn(ctx, events, now)
}

func (m *mockAlertFilter) History(ctx context.Context) map[string]models.AlertRecord {
	if m.historyFn == nil {
		return nil
	}
	return m.historyFn(ctx)
}

func (m *mockAlertFilter) ResetHistory(ctx context.Context) {
	if m.resetFn != nil {
		m.resetFn(ctx)
	}
}
