package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stockpilotai/stockpilot/internal/agent"
	"github.com/stockpilotai/stockpilot/internal/api"
	"github.com/stockpilotai/stockpilot/internal/models"
)

func TestActionApprove_Valid(t *testing.T) {
	t.Parallel()

	svc := &mockActionService{
		approveFn: func(id, actor string) (*models.Action, error) {
			return &models.Action{ID: id, Status: models.StatusApproved}, nil
		},
	}

	r := newTestRouter()
	h := api.NewActionHandler(svc, testHub(), testLogger())
	r.POST("/agent/approve", h.Approve)

	w := doRequest(r, http.MethodPost, "/agent/approve", `{"action_id":"a1","actor":"manager"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool          `json:"success"`
		Action  models.Action `json:"action"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !resp.Success || resp.Action.Status != models.StatusApproved {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestActionApprove_MissingActionID(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	h := api.NewActionHandler(&mockActionService{}, testHub(), testLogger())
	r.POST("/agent/approve", h.Approve)

	w := doRequest(r, http.MethodPost, "/agent/approve", `{"actor":"manager"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestActionApprove_NotFound(t *testing.T) {
	t.Parallel()

	svc := &mockActionService{
		approveFn: func(id, actor string) (*models.Action, error) {
			return nil, fmt.Errorf("%w: %s", models.ErrActionNotFound, id)
		},
	}

	r := newTestRouter()
	h := api.NewActionHandler(svc, testHub(), testLogger())
	r.POST("/agent/approve", h.Approve)

	w := doRequest(r, http.MethodPost, "/agent/approve", `{"action_id":"missing"}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestActionExecute_InvalidTransitionConflicts(t *testing.T) {
	t.Parallel()

	svc := &mockActionService{
		executeFn: func(id, actor string) (*models.Action, *agent.ExecResult, error) {
			return nil, nil, fmt.Errorf("%w: action is %q, not %q",
				models.ErrInvalidTransition, models.StatusProposed, models.StatusApproved)
		},
	}

	r := newTestRouter()
	h := api.NewActionHandler(svc, testHub(), testLogger())
	r.POST("/agent/execute", h.Execute)

	w := doRequest(r, http.MethodPost, "/agent/execute", `{"action_id":"a1"}`)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestActionExecute_ReturnsResult(t *testing.T) {
	t.Parallel()

	svc := &mockActionService{
		executeFn: func(id, actor string) (*models.Action, *agent.ExecResult, error) {
			return &models.Action{ID: id, Status: models.StatusExecuted},
				&agent.ExecResult{Success: true, Result: agent.ExecOutcome{Reference: "PO-ABC12345"}},
				nil
		},
	}

	r := newTestRouter()
	h := api.NewActionHandler(svc, testHub(), testLogger())
	r.POST("/agent/execute", h.Execute)

	w := doRequest(r, http.MethodPost, "/agent/execute", `{"action_id":"a1","actor":"manager"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool             `json:"success"`
		Result  agent.ExecResult `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !resp.Success || resp.Result.Result.Reference != "PO-ABC12345" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestActionList_StatusFilter(t *testing.T) {
	t.Parallel()

	var gotStatus models.ActionStatus
	svc := &mockActionService{
		allFn: func(status models.ActionStatus) []models.Action {
			gotStatus = status
			return []models.Action{{ID: "a1", Status: status}}
		},
	}

	r := newTestRouter()
	h := api.NewActionHandler(svc, testHub(), testLogger())
	r.GET("/agent/actions", h.List)

	w := doRequest(r, http.MethodGet, "/agent/actions?status=proposed", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotStatus != models.StatusProposed {
		t.Errorf("status filter not forwarded, got %q", gotStatus)
	}
}

func TestActionList_UnknownStatus(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	h := api.NewActionHandler(&mockActionService{}, testHub(), testLogger())
	r.GET("/agent/actions", h.List)

	w := doRequest(r, http.MethodGet, "/agent/actions?status=pending", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestActionGet_NotFound(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	h := api.NewActionHandler(&mockActionService{}, testHub(), testLogger())
	r.GET("/agent/actions/:id", h.Get)

	w := doRequest(r, http.MethodGet, "/agent/actions/missing", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestActionAutoRun_DefaultsActor(t *testing.T) {
	t.Parallel()

	var gotActor string
	svc := &mockActionService{
		allFn: func(status models.ActionStatus) []models.Action {
			return []models.Action{{ID: "a1", Status: models.StatusProposed}}
		},
		autoFn: func(actions []models.Action, actor string) agent.AutoRunResult {
			gotActor = actor
			return agent.AutoRunResult{Summary: "1 auto-executed, 0 awaiting approval."}
		},
	}

	r := newTestRouter()
	h := api.NewActionHandler(svc, testHub(), testLogger())
	r.POST("/agent/auto", h.AutoRun)

	w := doRequest(r, http.MethodPost, "/agent/auto", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotActor != "autopilot" {
		t.Errorf("expected default actor autopilot, got %q", gotActor)
	}
}
