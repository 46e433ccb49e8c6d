package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestServer creates a test server that routes to the given handler map.
// Keys are "METHOD /path", values are handler funcs.
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, handler)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c := New(srv.URL)
	return srv, c
}

func jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func TestHealth(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/health": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, HealthResponse{Status: "ok", Version: "0.3.0"})
		},
	})
	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("got status %q, want ok", resp.Status)
	}
	if resp.Version != "0.3.0" {
		t.Errorf("got version %q, want 0.3.0", resp.Version)
	}
}

func TestStatus(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /agent/status": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, StatusResponse{
				RestaurantID: "main",
				Autopilot:    true,
				StatusCounts: map[string]int{"proposed": 3},
			})
		},
	})
	resp, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if resp.RestaurantID != "main" || !resp.Autopilot {
		t.Errorf("unexpected status: %+v", resp)
	}
	if resp.StatusCounts["proposed"] != 3 {
		t.Errorf("got counts %v", resp.StatusCounts)
	}
}

func TestActionLifecycle(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /agent/actions": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("status") != "proposed" {
				jsonResponse(w, 400, map[string]string{"code": "invalid_request", "message": "bad status"})
				return
			}
			jsonResponse(w, 200, map[string]any{
				"actions": []Action{{ID: "a1", Type: "draft_po", Status: "proposed"}},
				"count":   1,
			})
		},
		"GET /agent/actions/a1": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, Action{ID: "a1", Type: "draft_po", Status: "proposed"})
		},
		"POST /agent/approve": func(w http.ResponseWriter, r *http.Request) {
			var req lifecycleRequest
			json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
			jsonResponse(w, 200, map[string]any{
				"success": true,
				"action":  Action{ID: req.ActionID, Status: "approved"},
			})
		},
		"POST /agent/execute": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, map[string]any{
				"success": true,
				"action":  Action{ID: "a1", Status: "executed"},
				"result": ExecResult{
					Success: true,
					Result:  ExecOutcome{Reference: "PO-ABC12345", Message: "purchase order drafted"},
				},
			})
		},
		"POST /agent/rollback": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, map[string]any{
				"success": true,
				"action":  Action{ID: "a1", Status: "rolled_back"},
			})
		},
	})

	ctx := context.Background()

	actions, err := c.Actions.List(ctx, "proposed")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(actions) != 1 || actions[0].ID != "a1" {
		t.Errorf("List: got %+v", actions)
	}

	a, err := c.Actions.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if a.Type != "draft_po" {
		t.Errorf("Get: got type %q", a.Type)
	}

	a, err = c.Actions.Approve(ctx, "a1", "manager")
	if err != nil {
		t.Fatalf("Approve error: %v", err)
	}
	if a.Status != "approved" {
		t.Errorf("Approve: got status %q", a.Status)
	}

	a, result, err := c.Actions.Execute(ctx, "a1", "manager")
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if a.Status != "executed" {
		t.Errorf("Execute: got status %q", a.Status)
	}
	if result == nil || result.Result.Reference != "PO-ABC12345" {
		t.Errorf("Execute: got result %+v", result)
	}

	a, err = c.Actions.Rollback(ctx, "a1", "manager", "wrong vendor")
	if err != nil {
		t.Fatalf("Rollback error: %v", err)
	}
	if a.Status != "rolled_back" {
		t.Errorf("Rollback: got status %q", a.Status)
	}
}

func TestActionAuto(t *testing.T) {
	var gotActor string
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /agent/auto": func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Actor string `json:"actor"`
			}
			json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
			gotActor = req.Actor
			jsonResponse(w, 200, AutoRunResult{
				AutoProcessed: []AutoProcessed{{ActionID: "a1", Status: "executed", ExecSuccess: true}},
				Summary:       "1 auto-executed, 0 awaiting approval.",
			})
		},
	})

	result, err := c.Actions.Auto(context.Background(), "ops")
	if err != nil {
		t.Fatalf("Auto error: %v", err)
	}
	if gotActor != "ops" {
		t.Errorf("actor: got %q", gotActor)
	}
	if len(result.AutoProcessed) != 1 || result.Summary == "" {
		t.Errorf("Auto: got %+v", result)
	}
}

func TestPlanGenerate(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /agent/plan": func(w http.ResponseWriter, r *http.Request) {
			var req PlanRequest
			json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
			jsonResponse(w, 200, map[string]any{
				"plan": Plan{
					Status:      "planned",
					ActionQueue: []Action{{ID: "a1", Type: "draft_po"}},
					Metadata:    PlanMetadata{AlertsProcessed: len(req.Alerts), ActionsProposed: 1},
				},
				"auto_run": AutoRunResult{Summary: "1 auto-executed, 0 awaiting approval."},
			})
		},
	})

	plan, autoRun, err := c.Plan.Generate(context.Background(), PlanRequest{
		Alerts: []Alert{{RiskEvent: RiskEvent{EventType: "STOCKOUT_RISK", ItemID: "rice", Confidence: 0.8, DaysUntil: 2}}},
	})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if plan.Status != "planned" || len(plan.ActionQueue) != 1 {
		t.Errorf("Generate: got %+v", plan)
	}
	if plan.Metadata.AlertsProcessed != 1 {
		t.Errorf("alerts_processed: got %d", plan.Metadata.AlertsProcessed)
	}
	if autoRun == nil || autoRun.Summary == "" {
		t.Errorf("auto_run: got %+v", autoRun)
	}
}

func TestPlanCommand(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /agent/command": func(w http.ResponseWriter, r *http.Request) {
			var req PlanRequest
			json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
			if req.Command == "" {
				jsonResponse(w, 400, map[string]string{"code": "invalid_request", "message": "command is required"})
				return
			}
			jsonResponse(w, 200, map[string]any{
				"plan": Plan{Status: "planned", Metadata: PlanMetadata{Command: req.Command}},
			})
		},
	})

	ctx := context.Background()

	plan, err := c.Plan.Command(ctx, PlanRequest{Command: "order more rice"})
	if err != nil {
		t.Fatalf("Command error: %v", err)
	}
	if plan.Metadata.Command != "order more rice" {
		t.Errorf("Command: got %+v", plan)
	}

	_, err = c.Plan.Command(ctx, PlanRequest{})
	if err == nil {
		t.Fatal("expected error for missing command")
	}
}

func TestAlerts(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/alerts/run": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, RunResult{
				PredictionsRead: 3,
				EventsGenerated: 2,
				AfterRules:      2,
				Eligible:        []RiskEvent{{ItemID: "rice"}},
				Suppressed:      1,
			})
		},
		"GET /api/alerts/history": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, map[string]any{
				"history": map[string]AlertRecord{"rice": {LastAlertTS: 1700000000, Confidence: 0.8, DaysUntil: 2}},
				"count":   1,
			})
		},
		"POST /api/alerts/reset": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, map[string]bool{"success": true})
		},
	})

	ctx := context.Background()

	result, err := c.Alerts.Run(ctx, RunRequest{
		Predictions: []Prediction{{ItemID: "rice", StockoutProbability: 0.9, DaysUntilEvent: 2}},
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.Suppressed != 1 || len(result.Eligible) != 1 {
		t.Errorf("Run: got %+v", result)
	}

	history, err := c.Alerts.History(ctx)
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if history["rice"].DaysUntil != 2 {
		t.Errorf("History: got %+v", history)
	}

	if err := c.Alerts.Reset(ctx); err != nil {
		t.Fatalf("Reset error: %v", err)
	}
}

func TestAuditHistory(t *testing.T) {
	var gotQuery map[string]string
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /agent/history": func(w http.ResponseWriter, r *http.Request) {
			gotQuery = map[string]string{
				"action_id": r.URL.Query().Get("action_id"),
				"event":     r.URL.Query().Get("event"),
				"limit":     r.URL.Query().Get("limit"),
			}
			jsonResponse(w, 200, map[string]any{
				"entries": []AuditEntry{{ActionID: "a1", Event: "approved", Actor: "manager"}},
				"count":   1,
				"total":   9,
			})
		},
	})

	entries, err := c.Audit.History(context.Background(), &AuditQueryOptions{
		ActionID: "a1",
		Event:    "approved",
		Limit:    5,
	})
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(entries) != 1 || entries[0].Actor != "manager" {
		t.Errorf("History: got %+v", entries)
	}
	if gotQuery["action_id"] != "a1" || gotQuery["event"] != "approved" || gotQuery["limit"] != "5" {
		t.Errorf("query not forwarded: %v", gotQuery)
	}
}

func TestAPIError(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /agent/actions/missing": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 404, map[string]string{"code": "not_found", "message": "action not found"})
		},
		"POST /agent/execute": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 409, map[string]string{"code": "conflict", "message": "action is not approved"})
		},
	})

	ctx := context.Background()

	_, err := c.Actions.Get(ctx, "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNotFound(err) {
		t.Errorf("expected not found, got: %v", err)
	}

	_, _, err = c.Actions.Execute(ctx, "a1", "manager")
	if !IsConflict(err) {
		t.Errorf("expected conflict, got: %v", err)
	}
}
