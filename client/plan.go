package client

import "context"

// PlanService handles planning operations.
type PlanService struct {
	c *Client
}

// PlanRequest is the body for plan and command requests.
type PlanRequest struct {
	Alerts       []Alert          `json:"alerts"`
	Inventory    []map[string]any `json:"inventory,omitempty"`
	RestaurantID string           `json:"restaurant_id,omitempty"`
	HorizonHours int              `json:"horizon_hours,omitempty"`
	Command      string           `json:"command,omitempty"`
}

// planResponse wraps the plan payload.
type planResponse struct {
	Plan    *Plan          `json:"plan"`
	AutoRun *AutoRunResult `json:"auto_run,omitempty"`
}

// Generate runs a planning cycle over the given alerts. When autopilot is
// enabled server-side, the auto-run result is returned as well.
func (s *PlanService) Generate(ctx context.Context, req PlanRequest) (*Plan, *AutoRunResult, error) {
	var resp planResponse
	if err := s.c.post(ctx, "/agent/plan", req, &resp); err != nil {
		return nil, nil, err
	}
	return resp.Plan, resp.AutoRun, nil
}

// Command resolves a natural-language operator command into proposed
// actions. req.Command must be set.
func (s *PlanService) Command(ctx context.Context, req PlanRequest) (*Plan, error) {
	var resp planResponse
	if err := s.c.post(ctx, "/agent/command", req, &resp); err != nil {
		return nil, err
	}
	return resp.Plan, nil
}
