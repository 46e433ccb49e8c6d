// Package agent implements the action lifecycle core: the executor state
// machine and store, the simulated execution backend, the alert
// eligibility filter, and the planner.
package agent

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stockpilotai/stockpilot/internal/audit"
	"github.com/stockpilotai/stockpilot/internal/metrics"
	"github.com/stockpilotai/stockpilot/internal/models"
)

// Auditor records lifecycle facts. *audit.Log satisfies it.
type Auditor interface {
	Record(rec audit.Record) models.AuditEntry
}

// Simulator carries out the side-effecting part of an action. The default
// implementation simulates every backend call.
type Simulator interface {
	Execute(a *models.Action) ExecResult
}

// validTransitions is the state machine adjacency table. rejected and
// rolled_back are terminal.
var validTransitions = map[models.ActionStatus][]models.ActionStatus{
	models.StatusProposed:  {models.StatusApproved, models.StatusRejected},
	models.StatusApproved:  {models.StatusExecuting},
	models.StatusExecuting: {models.StatusExecuted, models.StatusRolledBack},
	models.StatusExecuted:  {models.StatusRolledBack},
}

func transitionAllowed(from, to models.ActionStatus) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Executor owns the authoritative in-memory action store and is the only
// place status transitions are applied. The store mutex makes every
// check-then-set transition atomic: two racing Execute calls on the same
// approved action cannot both win.
type Executor struct {
	mu      sync.Mutex
	actions map[string]*models.Action
	auditor Auditor
	sim     Simulator
	log     *logrus.Logger
	now     func() time.Time
}

// NewExecutor creates an Executor. A nil simulator falls back to the
// built-in simulated backend.
func NewExecutor(auditor Auditor, sim Simulator, log *logrus.Logger) *Executor {
	if sim == nil {
		sim = &SimulatedBackend{}
	}
	return &Executor{
		actions: make(map[string]*models.Action),
		auditor: auditor,
		sim:     sim,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// StoreActions registers actions in the store, keyed by ID. Existing
// entries are overwritten; current status is not validated so the call
// serves both initial proposal and re-registration.
func (e *Executor) StoreActions(actions []models.Action) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range actions {
		a := actions[i]
		e.actions[a.ID] = &a
	}
}

// Get returns a copy of the action with the given ID.
func (e *Executor) Get(id string) (*models.Action, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.actions[id]
	if !ok {
		return nil, false
	}
	return a.Clone(), true
}

// All returns copies of all actions newest-created-first, optionally
// filtered by status (empty status means no filter).
func (e *Executor) All(status models.ActionStatus) []models.Action {
	e.mu.Lock()
	out := make([]models.Action, 0, len(e.actions))
	for _, a := range e.actions {
		if status != "" && a.Status != status {
			continue
		}
		out = append(out, *a.Clone())
	}
	e.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Clear removes all actions. Testing only.
func (e *Executor) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actions = make(map[string]*models.Action)
}

// transition validates a status change against the adjacency table and
// applies it. Callers must hold e.mu. On a disallowed transition the
// action is left unchanged and an error audit entry is written.
func (e *Executor) transition(a *models.Action, to models.ActionStatus, actor, notes string) bool {
	if !transitionAllowed(a.Status, to) {
		e.auditor.Record(audit.Record{
			ActionID: a.ID,
			Event:    models.AuditEventError,
			Actor:    actor,
			Snapshot: a,
			Notes:    fmt.Sprintf("invalid transition: %s -> %s. %s", a.Status, to, notes),
		})
		metrics.ErrorsTotal.WithLabelValues("invalid_transition").Inc()
		return false
	}

	before := a.Clone()
	a.Status = to
	a.UpdatedAt = e.now()

	e.auditor.Record(audit.Record{
		ActionID: a.ID,
		Event:    string(to),
		Actor:    actor,
		Snapshot: a,
		Before:   before,
		Notes:    notes,
	})
	metrics.Transitions.WithLabelValues(string(to)).Inc()
	return true
}

// Approve moves a proposed action to approved.
func (e *Executor) Approve(id, actor string) (*models.Action, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.actions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrActionNotFound, id)
	}

	if !e.transition(a, models.StatusApproved, actor, "") {
		return nil, fmt.Errorf("%w: action is %q, not %q",
			models.ErrInvalidTransition, a.Status, models.StatusProposed)
	}
	return a.Clone(), nil
}

// Reject moves a proposed action to rejected. The reason is stored in the
// audit notes. rejected is terminal.
func (e *Executor) Reject(id, actor, reason string) (*models.Action, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.actions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrActionNotFound, id)
	}

	if !e.transition(a, models.StatusRejected, actor, reason) {
		return nil, fmt.Errorf("%w: action is %q, not %q",
			models.ErrInvalidTransition, a.Status, models.StatusProposed)
	}
	return a.Clone(), nil
}

// Execute runs an approved action: transition to executing, perform the
// (simulated) backend call, then transition to executed on success or
// rolled_back on failure. The exec result is returned alongside the
// updated action.
func (e *Executor) Execute(id, actor string) (*models.Action, *ExecResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.actions[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", models.ErrActionNotFound, id)
	}

	if !e.transition(a, models.StatusExecuting, actor, "") {
		return nil, nil, fmt.Errorf("%w: action is %q, not %q",
			models.ErrInvalidTransition, a.Status, models.StatusApproved)
	}

	res := e.sim.Execute(a)

	if res.Success {
		e.transition(a, models.StatusExecuted, actor, res.Result.Message)
	} else {
		e.transition(a, models.StatusRolledBack, actor, "execution failed: "+res.Error)
	}

	return a.Clone(), &res, nil
}

// Rollback reverts an executing or executed action.
func (e *Executor) Rollback(id, actor, reason string) (*models.Action, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.actions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrActionNotFound, id)
	}

	if !e.transition(a, models.StatusRolledBack, actor, reason) {
		return nil, fmt.Errorf("%w: cannot rollback action in status %q",
			models.ErrInvalidTransition, a.Status)
	}
	return a.Clone(), nil
}

// AutoProcessed summarizes one auto-approved and executed action.
type AutoProcessed struct {
	ActionID    string              `json:"action_id"`
	ActionType  models.ActionType   `json:"action_type"`
	Status      models.ActionStatus `json:"status"`
	ExecSuccess bool                `json:"exec_success"`
}

// AutoRunResult summarizes one autopilot batch.
type AutoRunResult struct {
	AutoProcessed []AutoProcessed `json:"auto_processed"`
	NeedsReview   []models.Action `json:"needs_review"`
	Summary       string          `json:"summary"`
}

// AutoApproveAndExecute approves and executes every action that does not
// require approval; the rest are bucketed for human review. Items are
// processed sequentially and one failure does not block the rest.
func (e *Executor) AutoApproveAndExecute(actions []models.Action, actor string) AutoRunResult {
	var result AutoRunResult

	for _, a := range actions {
		if a.RequiresApproval {
			result.NeedsReview = append(result.NeedsReview, a)
			continue
		}

		approved, err := e.Approve(a.ID, actor)
		if err != nil {
			e.log.WithError(err).WithField("action_id", a.ID).Warn("autopilot approve failed")
			result.NeedsReview = append(result.NeedsReview, a)
			continue
		}

		updated, execRes, err := e.Execute(approved.ID, actor)
		if err != nil {
			e.log.WithError(err).WithField("action_id", a.ID).Warn("autopilot execute failed")
			result.NeedsReview = append(result.NeedsReview, a)
			continue
		}

		result.AutoProcessed = append(result.AutoProcessed, AutoProcessed{
			ActionID:    updated.ID,
			ActionType:  updated.Type,
			Status:      updated.Status,
			ExecSuccess: execRes.Success,
		})
	}

	result.Summary = fmt.Sprintf("%d auto-executed, %d awaiting approval.",
		len(result.AutoProcessed), len(result.NeedsReview))
	return result
}

// StatusCounts returns the number of actions per lifecycle status.
func (e *Executor) StatusCounts() map[models.ActionStatus]int {
	e.mu.Lock()
	defer e.mu.Unlock()

	counts := make(map[models.ActionStatus]int)
	for _, a := range e.actions {
		counts[a.Status]++
	}
	return counts
}
