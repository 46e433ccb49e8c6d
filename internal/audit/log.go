// Package audit implements the append-only audit trail for action
// lifecycle events. The in-memory log is authoritative; persistence is
// best-effort and asynchronous. This package records facts, it never
// makes decisions.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stockpilotai/stockpilot/internal/domain"
	"github.com/stockpilotai/stockpilot/internal/models"
)

// DefaultQueryLimit caps audit reads when the caller gives no limit.
const DefaultQueryLimit = 100

// Record is the input for one audit entry.
type Record struct {
	ActionID string
	Event    string
	Actor    string
	Notes    string
	Snapshot *models.Action
	Before   *models.Action
	After    *models.Action
}

// Persister receives entries for best-effort background persistence.
type Persister interface {
	Enqueue(entry models.AuditEntry)
}

// Log is the append-only audit log. Entries are never mutated or deleted
// after append, except by Clear.
type Log struct {
	mu        sync.Mutex
	entries   []models.AuditEntry
	store     domain.AuditStore
	persister Persister
	log       *logrus.Logger
	now       func() time.Time
}

// NewLog creates an audit log backed by the given store. The persister may
// be nil; entries are then kept in memory only.
func NewLog(store domain.AuditStore, persister Persister, logger *logrus.Logger) *Log {
	return &Log{
		store:     store,
		persister: persister,
		log:       logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// LoadFromStore seeds the in-memory log from the backing store. A read
// failure falls back to an empty log.
func (l *Log) LoadFromStore(ctx context.Context) {
	if l.store == nil {
		return
	}

	entries, err := l.store.Load(ctx)
	if err != nil {
		l.log.WithError(err).Warn("audit log load failed, starting empty")
		return
	}

	l.mu.Lock()
	l.entries = entries
	l.mu.Unlock()
}

// Append adds an already-built entry, preserving its timestamp. Used when
// replaying entries from external sources; most callers want Record.
func (l *Log) Append(entry models.AuditEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	if l.persister != nil {
		l.persister.Enqueue(entry)
	}
}

// Record appends an immutable entry stamped with the current time and
// enqueues it for persistence. The returned entry is the recorded fact.
func (l *Log) Record(rec Record) models.AuditEntry {
	actor := rec.Actor
	if actor == "" {
		actor = "system"
	}

	entry := models.AuditEntry{
		Timestamp:   l.now(),
		ActionID:    rec.ActionID,
		Event:       rec.Event,
		Actor:       actor,
		Snapshot:    rec.Snapshot.Clone(),
		BeforeState: rec.Before.Clone(),
		AfterState:  rec.After.Clone(),
		Notes:       rec.Notes,
	}

	l.Append(entry)
	return entry
}

// Entries returns matching entries newest-first. A zero limit uses
// DefaultQueryLimit.
func (l *Log) Entries(q models.AuditQuery) []models.AuditEntry {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	l.mu.Lock()
	snapshot := make([]models.AuditEntry, len(l.entries))
	copy(snapshot, l.entries)
	l.mu.Unlock()

	// Walk backwards: append order is chronological order.
	out := make([]models.AuditEntry, 0, limit)
	for i := len(snapshot) - 1; i >= 0 && len(out) < limit; i-- {
		e := snapshot[i]
		if q.ActionID != "" && e.ActionID != q.ActionID {
			continue
		}
		if q.Event != "" && e.Event != q.Event {
			continue
		}
		out = append(out, e)
	}

	return out
}

// RecentProposed returns the snapshots of the most recently proposed
// actions, oldest-first, for planning context.
func (l *Log) RecentProposed(limit int) []models.Action {
	if limit <= 0 {
		limit = 50
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var proposed []models.Action
	for _, e := range l.entries {
		if e.Event == models.AuditEventProposed && e.Snapshot != nil {
			proposed = append(proposed, *e.Snapshot)
		}
	}

	if len(proposed) > limit {
		proposed = proposed[len(proposed)-limit:]
	}
	return proposed
}

// Len reports the number of recorded entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear wipes the in-memory log and the backing store. Intended for tests
// and explicit clean-cycle resets only.
func (l *Log) Clear(ctx context.Context) {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()

	if l.store == nil {
		return
	}
	if err := l.store.Clear(ctx); err != nil {
		l.log.WithError(err).Warn("audit store clear failed")
	}
}
