package client

import "context"

// AlertService handles the alert pipeline endpoints.
type AlertService struct {
	c *Client
}

// RunRequest is the body for an alert pipeline run. Predictions may be
// empty; the server then reads its configured classifier output file.
type RunRequest struct {
	Predictions []Prediction `json:"predictions,omitempty"`
	Threshold   float64      `json:"threshold,omitempty"`
}

// RunResult summarizes one alert pipeline run.
type RunResult struct {
	PredictionsRead int         `json:"predictions_read"`
	EventsGenerated int         `json:"events_generated"`
	AfterRules      int         `json:"after_rules"`
	Eligible        []RiskEvent `json:"eligible"`
	Suppressed      int         `json:"suppressed"`
}

// Run executes the alert pipeline: predictions to risk events, operator
// rules, then the anti-spam cooldown filter.
func (s *AlertService) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	var resp RunResult
	if err := s.c.post(ctx, "/api/alerts/run", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// historyResponse wraps the cooldown history payload.
type historyResponse struct {
	History map[string]AlertRecord `json:"history"`
	Count   int                    `json:"count"`
}

// History returns the per-item cooldown records.
func (s *AlertService) History(ctx context.Context) (map[string]AlertRecord, error) {
	var resp historyResponse
	if err := s.c.get(ctx, "/api/alerts/history", nil, &resp); err != nil {
		return nil, err
	}
	return resp.History, nil
}

// Reset clears the cooldown history.
func (s *AlertService) Reset(ctx context.Context) error {
	return s.c.post(ctx, "/api/alerts/reset", nil, nil)
}
