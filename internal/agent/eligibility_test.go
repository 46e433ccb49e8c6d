package agent_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stockpilotai/stockpilot/internal/agent"
	"github.com/stockpilotai/stockpilot/internal/models"
	"github.com/stockpilotai/stockpilot/internal/store"
)

func chickenEvent(confidence float64, daysUntil int) models.RiskEvent {
	return models.RiskEvent{
		EventType:  models.EventStockoutRisk,
		ItemID:     "chicken_breast",
		Confidence: confidence,
		DaysUntil:  daysUntil,
	}
}

func TestFilterEligible_FirstAlertPasses(t *testing.T) {
	t.Parallel()

	f := agent.NewEligibilityFilter(store.NewHistoryMemory(), testLogger())
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	eligible := f.FilterEligible(context.Background(), []models.RiskEvent{chickenEvent(0.7, 3)}, now)
	if len(eligible) != 1 {
		t.Fatalf("first alert should be eligible, got %d", len(eligible))
	}
}

func TestFilterEligible_RepeatWithinCooldownSuppressed(t *testing.T) {
	t.Parallel()

	f := agent.NewEligibilityFilter(store.NewHistoryMemory(), testLogger())
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	f.FilterEligible(ctx, []models.RiskEvent{chickenEvent(0.7, 3)}, now)

	// Same item, same numbers, one hour later.
	eligible := f.FilterEligible(ctx, []models.RiskEvent{chickenEvent(0.7, 3)}, now.Add(time.Hour))
	if len(eligible) != 0 {
		t.Fatalf("repeat within cooldown should be suppressed, got %d", len(eligible))
	}
}

func TestFilterEligible_CooldownExpiry(t *testing.T) {
	t.Parallel()

	f := agent.NewEligibilityFilter(store.NewHistoryMemory(), testLogger())
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	f.FilterEligible(ctx, []models.RiskEvent{chickenEvent(0.7, 3)}, now)

	eligible := f.FilterEligible(ctx, []models.RiskEvent{chickenEvent(0.7, 3)}, now.Add(agent.CooldownWindow))
	if len(eligible) != 1 {
		t.Fatalf("alert after cooldown should be eligible, got %d", len(eligible))
	}
}

func TestFilterEligible_WorseningReadmits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		event models.RiskEvent
		want  int
	}{
		{"higher confidence", chickenEvent(0.85, 3), 1},
		{"fewer days until", chickenEvent(0.7, 2), 1},
		{"equal numbers", chickenEvent(0.7, 3), 0},
		{"lower confidence more days", chickenEvent(0.6, 5), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := agent.NewEligibilityFilter(store.NewHistoryMemory(), testLogger())
			ctx := context.Background()
			now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

			f.FilterEligible(ctx, []models.RiskEvent{chickenEvent(0.7, 3)}, now)

			eligible := f.FilterEligible(ctx, []models.RiskEvent{tt.event}, now.Add(time.Hour))
			if len(eligible) != tt.want {
				t.Fatalf("got %d eligible, want %d", len(eligible), tt.want)
			}
		})
	}
}

func TestFilterEligible_SuppressedEventDoesNotUpdateHistory(t *testing.T) {
	t.Parallel()

	f := agent.NewEligibilityFilter(store.NewHistoryMemory(), testLogger())
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	f.FilterEligible(ctx, []models.RiskEvent{chickenEvent(0.7, 3)}, now)
	f.FilterEligible(ctx, []models.RiskEvent{chickenEvent(0.7, 3)}, now.Add(time.Hour))

	rec := f.History(ctx)["chicken_breast"]
	wantTS := float64(now.UnixNano()) / float64(time.Second)
	if rec.LastAlertTS != wantTS {
		t.Errorf("suppressed event must not refresh the cooldown: got %f, want %f", rec.LastAlertTS, wantTS)
	}
}

func TestFilterEligible_IndependentItems(t *testing.T) {
	t.Parallel()

	f := agent.NewEligibilityFilter(store.NewHistoryMemory(), testLogger())
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	f.FilterEligible(ctx, []models.RiskEvent{chickenEvent(0.7, 3)}, now)

	salmon := models.RiskEvent{
		EventType:  models.EventSurplusRisk,
		ItemID:     "salmon",
		Confidence: 0.65,
		DaysUntil:  4,
	}
	eligible := f.FilterEligible(ctx, []models.RiskEvent{salmon, chickenEvent(0.7, 3)}, now.Add(time.Hour))
	if len(eligible) != 1 || eligible[0].ItemID != "salmon" {
		t.Fatalf("expected only salmon eligible, got %+v", eligible)
	}
}

func TestFilterEligible_ResetHistory(t *testing.T) {
	t.Parallel()

	f := agent.NewEligibilityFilter(store.NewHistoryMemory(), testLogger())
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	f.FilterEligible(ctx, []models.RiskEvent{chickenEvent(0.7, 3)}, now)
	f.ResetHistory(ctx)

	eligible := f.FilterEligible(ctx, []models.RiskEvent{chickenEvent(0.7, 3)}, now.Add(time.Minute))
	if len(eligible) != 1 {
		t.Fatalf("after reset every item should alert again, got %d", len(eligible))
	}
}

func TestFilterEligible_StoreFailuresFailOpen(t *testing.T) {
	t.Parallel()

	st := &flakyHistoryStore{
		loadErr: errors.New("disk on fire"),
		saveErr: errors.New("still on fire"),
	}
	f := agent.NewEligibilityFilter(st, testLogger())
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	eligible := f.FilterEligible(context.Background(), []models.RiskEvent{chickenEvent(0.7, 3)}, now)
	if len(eligible) != 1 {
		t.Fatalf("store failures must not block alerts, got %d eligible", len(eligible))
	}
}

func TestFilterEligible_PersistsAcrossInstances(t *testing.T) {
	t.Parallel()

	st := store.NewHistoryMemory()
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	f1 := agent.NewEligibilityFilter(st, testLogger())
	f1.FilterEligible(ctx, []models.RiskEvent{chickenEvent(0.7, 3)}, now)

	// A fresh filter over the same store still suppresses.
	f2 := agent.NewEligibilityFilter(st, testLogger())
	eligible := f2.FilterEligible(ctx, []models.RiskEvent{chickenEvent(0.7, 3)}, now.Add(time.Hour))
	if len(eligible) != 0 {
		t.Fatalf("history should persist across filter instances, got %d eligible", len(eligible))
	}
}
