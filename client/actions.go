package client

import (
	"context"
	"net/url"
)

// ActionService handles action queue lifecycle operations.
type ActionService struct {
	c *Client
}

// listResponse wraps the action list payload.
type listResponse struct {
	Actions []Action `json:"actions"`
	Count   int      `json:"count"`
}

// actionResponse wraps single-action lifecycle responses.
type actionResponse struct {
	Success bool        `json:"success"`
	Action  *Action     `json:"action"`
	Result  *ExecResult `json:"result,omitempty"`
}

// lifecycleRequest is the shared body for lifecycle endpoints.
type lifecycleRequest struct {
	ActionID string `json:"action_id"`
	Actor    string `json:"actor,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// List returns all actions, optionally filtered by status.
func (s *ActionService) List(ctx context.Context, status string) ([]Action, error) {
	params := url.Values{}
	if status != "" {
		params.Set("status", status)
	}
	var resp listResponse
	if err := s.c.get(ctx, "/agent/actions", params, &resp); err != nil {
		return nil, err
	}
	return resp.Actions, nil
}

// Get returns one action by ID.
func (s *ActionService) Get(ctx context.Context, id string) (*Action, error) {
	var a Action
	if err := s.c.get(ctx, "/agent/actions/"+url.PathEscape(id), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Approve moves a proposed action to approved.
func (s *ActionService) Approve(ctx context.Context, id, actor string) (*Action, error) {
	var resp actionResponse
	if err := s.c.post(ctx, "/agent/approve", lifecycleRequest{ActionID: id, Actor: actor}, &resp); err != nil {
		return nil, err
	}
	return resp.Action, nil
}

// Reject moves a proposed action to rejected.
func (s *ActionService) Reject(ctx context.Context, id, actor, reason string) (*Action, error) {
	var resp actionResponse
	if err := s.c.post(ctx, "/agent/reject", lifecycleRequest{ActionID: id, Actor: actor, Reason: reason}, &resp); err != nil {
		return nil, err
	}
	return resp.Action, nil
}

// Execute runs an approved action and returns the final state plus the
// execution result.
func (s *ActionService) Execute(ctx context.Context, id, actor string) (*Action, *ExecResult, error) {
	var resp actionResponse
	if err := s.c.post(ctx, "/agent/execute", lifecycleRequest{ActionID: id, Actor: actor}, &resp); err != nil {
		return nil, nil, err
	}
	return resp.Action, resp.Result, nil
}

// Rollback reverts an executing or executed action.
func (s *ActionService) Rollback(ctx context.Context, id, actor, reason string) (*Action, error) {
	var resp actionResponse
	if err := s.c.post(ctx, "/agent/rollback", lifecycleRequest{ActionID: id, Actor: actor, Reason: reason}, &resp); err != nil {
		return nil, err
	}
	return resp.Action, nil
}

// Auto approves and executes every proposed action that qualifies for
// auto-approval.
func (s *ActionService) Auto(ctx context.Context, actor string) (*AutoRunResult, error) {
	body := struct {
		Actor string `json:"actor,omitempty"`
	}{Actor: actor}

	var resp AutoRunResult
	if err := s.c.post(ctx, "/agent/auto", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
