package models

import "time"

// Audit event names recorded by the executor. Callers may record free-form
// custom events as well.
const (
	AuditEventProposed   = "proposed"
	AuditEventApproved   = "approved"
	AuditEventRejected   = "rejected"
	AuditEventExecuting  = "executing"
	AuditEventExecuted   = "executed"
	AuditEventRolledBack = "rolled_back"
	AuditEventError      = "error"
)

// AuditEntry is one immutable fact about an action's history. Entries are
// never mutated or deleted after append.
type AuditEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	ActionID    string    `json:"action_id"`
	Event       string    `json:"event"`
	Actor       string    `json:"actor"`
	Snapshot    *Action   `json:"action_snapshot,omitempty"`
	BeforeState *Action   `json:"before_state,omitempty"`
	AfterState  *Action   `json:"after_state,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// AuditQuery holds filters for reading the audit log.
type AuditQuery struct {
	Limit    int
	ActionID string
	Event    string
}
