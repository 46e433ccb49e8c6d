package client

import (
	"context"
	"net/url"
	"strconv"
)

// AuditService handles audit trail operations.
type AuditService struct {
	c *Client
}

// AuditQueryOptions narrow an audit history query.
type AuditQueryOptions struct {
	ActionID string
	Event    string
	Limit    int
}

// auditHistoryResponse wraps the audit history payload.
type auditHistoryResponse struct {
	Entries []AuditEntry `json:"entries"`
	Count   int          `json:"count"`
	Total   int          `json:"total"`
}

// History returns audit entries newest-first. opts may be nil.
func (s *AuditService) History(ctx context.Context, opts *AuditQueryOptions) ([]AuditEntry, error) {
	params := url.Values{}
	if opts != nil {
		if opts.ActionID != "" {
			params.Set("action_id", opts.ActionID)
		}
		if opts.Event != "" {
			params.Set("event", opts.Event)
		}
		if opts.Limit > 0 {
			params.Set("limit", strconv.Itoa(opts.Limit))
		}
	}

	var resp auditHistoryResponse
	if err := s.c.get(ctx, "/agent/history", params, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}
