package agent_test

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/stockpilotai/stockpilot/internal/agent"
	"github.com/stockpilotai/stockpilot/internal/audit"
	"github.com/stockpilotai/stockpilot/internal/domain"
	"github.com/stockpilotai/stockpilot/internal/models"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

// recordingAuditor captures every audit record for assertions.
type recordingAuditor struct {
	mu       sync.Mutex
	records  []audit.Record
	proposed []models.Action
}

func (r *recordingAuditor) Record(rec audit.Record) models.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)

	return models.AuditEntry{
		ActionID: rec.ActionID,
		Event:    rec.Event,
		Actor:    rec.Actor,
		Notes:    rec.Notes,
	}
}

func (r *recordingAuditor) RecentProposed(limit int) []models.Action {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Action, len(r.proposed))
	copy(out, r.proposed)
	return out
}

func (r *recordingAuditor) byEvent(event string) []audit.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []audit.Record
	for _, rec := range r.records {
		if rec.Event == event {
			out = append(out, rec)
		}
	}
	return out
}

// failingSimulator fails every execution.
type failingSimulator struct{}

func (failingSimulator) Execute(a *models.Action) agent.ExecResult {
	return agent.ExecResult{Success: false, Error: "vendor API unreachable"}
}

// stubProposer returns canned proposals or an error.
type stubProposer struct {
	proposals []domain.ActionProposal
	err       error
	calls     int
}

func (s *stubProposer) Propose(ctx context.Context, req domain.PlanRequest) ([]domain.ActionProposal, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.proposals, nil
}

// flakyHistoryStore fails loads to exercise fail-open behavior.
type flakyHistoryStore struct {
	loadErr error
	saveErr error
	saved   map[string]models.AlertRecord
}

func (s *flakyHistoryStore) Load(context.Context) (map[string]models.AlertRecord, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.saved, nil
}

func (s *flakyHistoryStore) Save(_ context.Context, history map[string]models.AlertRecord) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = history
	return nil
}

func (s *flakyHistoryStore) Clear(context.Context) error {
	s.saved = nil
	return nil
}

func mustAction(t interface {
	Helper()
	Fatalf(string, ...any)
}, typ models.ActionType, payload models.Payload, owner models.OwnerRole, risk models.RiskLevel) models.Action {
	t.Helper()
	a, err := models.NewAction(typ, payload, owner, risk, "impact", "reason", "item")
	if err != nil {
		t.Fatalf("NewAction: %v", err)
	}
	return *a
}
