package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stockpilotai/stockpilot/internal/dbpool"
	"github.com/stockpilotai/stockpilot/internal/domain"
	"github.com/stockpilotai/stockpilot/internal/models"
)

const defaultQueryTimeout = 30 * time.Second

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// AuditPostgres persists audit entries in the audit_log table. Unlike the
// file backend, Append is a real insert; append order is preserved by the
// serial primary key.
type AuditPostgres struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var _ domain.AuditStore = (*AuditPostgres)(nil)

// NewAuditPostgres creates an AuditPostgres.
func NewAuditPostgres(pool *dbpool.Pool, log *logrus.Logger) *AuditPostgres {
	return &AuditPostgres{pool: pool, log: log}
}

func marshalAction(a *models.Action) ([]byte, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func unmarshalAction(data []byte) (*models.Action, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var a models.Action
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Append implements domain.AuditStore.
func (s *AuditPostgres) Append(ctx context.Context, entry models.AuditEntry) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	snapshot, err := marshalAction(entry.Snapshot)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	before, err := marshalAction(entry.BeforeState)
	if err != nil {
		return fmt.Errorf("encoding before state: %w", err)
	}
	after, err := marshalAction(entry.AfterState)
	if err != nil {
		return fmt.Errorf("encoding after state: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO audit_log (ts, action_id, event, actor, snapshot, before_state, after_state, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.Timestamp, entry.ActionID, entry.Event, entry.Actor,
		snapshot, before, after, entry.Notes,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
}

// Load implements domain.AuditStore. Entries come back in append order.
func (s *AuditPostgres) Load(ctx context.Context) ([]models.AuditEntry, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT ts, action_id, event, actor, snapshot, before_state, after_state, notes
		FROM audit_log ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var (
			e                       models.AuditEntry
			snapshot, before, after []byte
		)
		if err := rows.Scan(&e.Timestamp, &e.ActionID, &e.Event, &e.Actor,
			&snapshot, &before, &after, &e.Notes); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		if e.Snapshot, err = unmarshalAction(snapshot); err != nil {
			return nil, fmt.Errorf("decoding snapshot: %w", err)
		}
		if e.BeforeState, err = unmarshalAction(before); err != nil {
			return nil, fmt.Errorf("decoding before state: %w", err)
		}
		if e.AfterState, err = unmarshalAction(after); err != nil {
			return nil, fmt.Errorf("decoding after state: %w", err)
		}

		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading audit rows: %w", err)
	}

	return entries, nil
}

// Clear implements domain.AuditStore.
func (s *AuditPostgres) Clear(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := s.pool.Exec(ctx, `DELETE FROM audit_log`); err != nil {
		return fmt.Errorf("clearing audit log: %w", err)
	}
	return nil
}

// HistoryPostgres persists the alert cooldown history in the
// alert_history table. Save replaces the whole mapping in one
// transaction.
type HistoryPostgres struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var _ domain.HistoryStore = (*HistoryPostgres)(nil)

// NewHistoryPostgres creates a HistoryPostgres.
func NewHistoryPostgres(pool *dbpool.Pool, log *logrus.Logger) *HistoryPostgres {
	return &HistoryPostgres{pool: pool, log: log}
}

// Load implements domain.HistoryStore.
func (s *HistoryPostgres) Load(ctx context.Context) (map[string]models.AlertRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT item_id, last_alert_ts, confidence, days_until FROM alert_history`)
	if err != nil {
		return nil, fmt.Errorf("querying alert history: %w", err)
	}
	defer rows.Close()

	history := make(map[string]models.AlertRecord)
	for rows.Next() {
		var (
			itemID string
			rec    models.AlertRecord
		)
		if err := rows.Scan(&itemID, &rec.LastAlertTS, &rec.Confidence, &rec.DaysUntil); err != nil {
			return nil, fmt.Errorf("scanning alert record: %w", err)
		}
		history[itemID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history rows: %w", err)
	}

	return history, nil
}

// Save implements domain.HistoryStore.
func (s *HistoryPostgres) Save(ctx context.Context, history map[string]models.AlertRecord) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning history save: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	if _, err := tx.Exec(ctx, `DELETE FROM alert_history`); err != nil {
		return fmt.Errorf("clearing alert history: %w", err)
	}

	for itemID, rec := range history {
		if _, err := tx.Exec(ctx, `
			INSERT INTO alert_history (item_id, last_alert_ts, confidence, days_until)
			VALUES ($1, $2, $3, $4)`,
			itemID, rec.LastAlertTS, rec.Confidence, rec.DaysUntil,
		); err != nil {
			return fmt.Errorf("inserting alert record for %s: %w", itemID, err)
		}
	}

	return tx.Commit(ctx)
}

// Clear implements domain.HistoryStore.
func (s *HistoryPostgres) Clear(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := s.pool.Exec(ctx, `DELETE FROM alert_history`); err != nil {
		return fmt.Errorf("clearing alert history: %w", err)
	}
	return nil
}
