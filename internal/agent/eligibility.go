package agent

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stockpilotai/stockpilot/internal/domain"
	"github.com/stockpilotai/stockpilot/internal/metrics"
	"github.com/stockpilotai/stockpilot/internal/models"
)

// CooldownWindow is how long an item stays suppressed after an eligible
// alert unless the situation worsens.
const CooldownWindow = 24 * time.Hour

// EligibilityFilter is the deterministic anti-spam gate for risk events.
// It tracks, per item, the most recent eligible alert and suppresses
// repeats within the cooldown window unless confidence increased or
// days-until decreased. It applies timing rules only; it never makes
// subjective decisions.
type EligibilityFilter struct {
	mu       sync.Mutex
	history  map[string]models.AlertRecord
	loaded   bool
	store    domain.HistoryStore
	log      *logrus.Logger
	cooldown time.Duration
}

// NewEligibilityFilter creates a filter backed by the given history store.
func NewEligibilityFilter(store domain.HistoryStore, log *logrus.Logger) *EligibilityFilter {
	return &EligibilityFilter{
		history:  make(map[string]models.AlertRecord),
		store:    store,
		log:      log,
		cooldown: CooldownWindow,
	}
}

// ensureLoaded lazily seeds history from the store. Read failures fall
// open: an empty history makes every event eligible. Callers hold f.mu.
func (f *EligibilityFilter) ensureLoaded(ctx context.Context) {
	if f.loaded {
		return
	}
	f.loaded = true

	if f.store == nil {
		return
	}

	history, err := f.store.Load(ctx)
	if err != nil {
		f.log.WithError(err).Warn("alert history load failed, starting empty")
		return
	}
	if history != nil {
		f.history = history
	}
}

// FilterEligible returns the subset of events eligible to alert, and
// updates the cooldown history for each one that passes. Eligibility is
// judged against the last eligible alert for the same item:
//
//  1. no prior record, or
//  2. cooldown expired, or
//  3. confidence strictly increased, or
//  4. days_until strictly decreased.
//
// A zero now means wall-clock; tests inject fixed times. History is
// persisted best-effort after each call; write failures are swallowed so
// alerts still fire.
func (f *EligibilityFilter) FilterEligible(ctx context.Context, events []models.RiskEvent, now time.Time) []models.RiskEvent {
	if now.IsZero() {
		now = time.Now()
	}
	ts := float64(now.UnixNano()) / float64(time.Second)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureLoaded(ctx)

	eligible := make([]models.RiskEvent, 0, len(events))
	for _, ev := range events {
		prev, seen := f.history[ev.ItemID]

		switch {
		case !seen:
			eligible = append(eligible, ev)
		case ts-prev.LastAlertTS >= f.cooldown.Seconds():
			eligible = append(eligible, ev)
		case ev.Confidence > prev.Confidence:
			eligible = append(eligible, ev)
		case ev.DaysUntil < prev.DaysUntil:
			eligible = append(eligible, ev)
		default:
			metrics.AlertsSuppressed.Inc()
		}
	}

	for _, ev := range eligible {
		f.history[ev.ItemID] = models.AlertRecord{
			LastAlertTS: ts,
			Confidence:  ev.Confidence,
			DaysUntil:   ev.DaysUntil,
		}
		metrics.AlertsEligible.Inc()
	}

	f.saveLocked(ctx)
	return eligible
}

// History returns a copy of the current cooldown history.
func (f *EligibilityFilter) History(ctx context.Context) map[string]models.AlertRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureLoaded(ctx)

	out := make(map[string]models.AlertRecord, len(f.history))
	for k, v := range f.history {
		out[k] = v
	}
	return out
}

// ResetHistory clears all cooldown state and the backing store, forcing a
// clean alert cycle.
func (f *EligibilityFilter) ResetHistory(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.history = make(map[string]models.AlertRecord)
	f.loaded = true

	if f.store == nil {
		return
	}
	if err := f.store.Clear(ctx); err != nil {
		f.log.WithError(err).Warn("alert history clear failed")
	}
}

// saveLocked persists history best-effort. Callers hold f.mu.
func (f *EligibilityFilter) saveLocked(ctx context.Context) {
	if f.store == nil {
		return
	}
	if err := f.store.Save(ctx, f.history); err != nil {
		f.log.WithError(err).Warn("alert history save failed")
	}
}
