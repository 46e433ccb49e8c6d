package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stockpilotai/stockpilot/internal/audit"
	"github.com/stockpilotai/stockpilot/internal/domain"
	"github.com/stockpilotai/stockpilot/internal/metrics"
	"github.com/stockpilotai/stockpilot/internal/models"
)

// planAuditor is what the planner needs from the audit log: recording
// proposals and reading recent ones back for dedup context.
type planAuditor interface {
	Record(rec audit.Record) models.AuditEntry
	RecentProposed(limit int) []models.Action
}

// Plan statuses.
const (
	PlanStatusPlanned  = "planned"
	PlanStatusNoAlerts = "no_alerts"
)

// Plan sources.
const (
	PlanSourceProposer = "proposer"
	PlanSourceFallback = "fallback"
	PlanSourceNone     = "none"
)

// PlanMetadata describes one planning cycle.
type PlanMetadata struct {
	RestaurantID    string    `json:"restaurant_id,omitempty"`
	Command         string    `json:"command,omitempty"`
	HorizonHours    int       `json:"horizon_hours,omitempty"`
	PlannedAt       time.Time `json:"planned_at"`
	AlertsProcessed int       `json:"alerts_processed"`
	ActionsProposed int       `json:"actions_proposed"`
	Source          string    `json:"source"`
}

// Plan is the outcome of one Sense -> Plan -> Propose cycle.
type Plan struct {
	Status         string                             `json:"status"`
	Message        string                             `json:"message"`
	ActionQueue    []models.Action                    `json:"action_queue"`
	GroupedByOwner map[models.OwnerRole][]models.Action `json:"grouped_by_owner"`
	Metadata       PlanMetadata                       `json:"plan_metadata"`
}

// Planner turns alerts into a prioritized queue of proposed actions. An
// external proposer (LLM) is tried first when configured; a deterministic
// fallback always works without one.
type Planner struct {
	proposer domain.Proposer
	auditor  planAuditor
	log      *logrus.Logger
	now      func() time.Time
}

// NewPlanner creates a Planner. proposer may be nil; planning then uses
// the deterministic fallback only.
func NewPlanner(proposer domain.Proposer, auditor planAuditor, log *logrus.Logger) *Planner {
	return &Planner{
		proposer: proposer,
		auditor:  auditor,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GeneratePlan produces a prioritized action queue for the given alerts
// and records every proposed action in the audit log.
func (p *Planner) GeneratePlan(ctx context.Context, req domain.PlanRequest) *Plan {
	if len(req.Alerts) == 0 {
		return &Plan{
			Status:         PlanStatusNoAlerts,
			Message:        "No active alerts, no actions needed.",
			ActionQueue:    []models.Action{},
			GroupedByOwner: map[models.OwnerRole][]models.Action{},
			Metadata: PlanMetadata{
				RestaurantID:    req.RestaurantID,
				HorizonHours:    req.HorizonHours,
				PlannedAt:       p.now(),
				AlertsProcessed: 0,
				ActionsProposed: 0,
				Source:          PlanSourceNone,
			},
		}
	}

	req.History = p.auditor.RecentProposed(20)

	var (
		actions []models.Action
		source  = PlanSourceFallback
	)

	if p.proposer != nil {
		proposals, err := p.proposer.Propose(ctx, req)
		if err != nil {
			p.log.WithError(err).Warn("proposer failed, using fallback plan")
			actions = p.fallbackPlan(req.Alerts)
		} else {
			actions = p.validateProposals(proposals)
			source = PlanSourceProposer
		}
	} else {
		actions = p.fallbackPlan(req.Alerts)
	}

	actions = models.PrioritizeActions(actions)
	p.recordProposals(actions, "agent-planner",
		fmt.Sprintf("source: %s, restaurant: %s", source, req.RestaurantID))

	grouped := models.GroupByOwner(actions)

	return &Plan{
		Status:         PlanStatusPlanned,
		Message:        fmt.Sprintf("%d action(s) proposed across %d role(s).", len(actions), len(grouped)),
		ActionQueue:    actions,
		GroupedByOwner: grouped,
		Metadata: PlanMetadata{
			RestaurantID:    req.RestaurantID,
			HorizonHours:    req.HorizonHours,
			PlannedAt:       p.now(),
			AlertsProcessed: len(req.Alerts),
			ActionsProposed: len(actions),
			Source:          source,
		},
	}
}

// GeneratePlanFromCommand resolves an operator command ("fix top 3
// alerts", "draft a PO for chicken") into actions. Commands require the
// proposer; on failure the standard plan is generated instead.
func (p *Planner) GeneratePlanFromCommand(ctx context.Context, req domain.PlanRequest) *Plan {
	if len(req.Alerts) == 0 {
		return &Plan{
			Status:         PlanStatusNoAlerts,
			Message:        "No active alerts to act on.",
			ActionQueue:    []models.Action{},
			GroupedByOwner: map[models.OwnerRole][]models.Action{},
			Metadata: PlanMetadata{
				Command:   req.Command,
				PlannedAt: p.now(),
				Source:    PlanSourceNone,
			},
		}
	}

	if p.proposer == nil {
		return p.GeneratePlan(ctx, req)
	}

	proposals, err := p.proposer.Propose(ctx, req)
	if err != nil {
		p.log.WithError(err).Warn("command planning failed, using standard plan")
		return p.GeneratePlan(ctx, req)
	}

	actions := models.PrioritizeActions(p.validateProposals(proposals))
	p.recordProposals(actions, "operator-command", "command: "+req.Command)

	grouped := models.GroupByOwner(actions)

	return &Plan{
		Status:         PlanStatusPlanned,
		Message:        fmt.Sprintf("%d action(s) proposed for command: %q", len(actions), req.Command),
		ActionQueue:    actions,
		GroupedByOwner: grouped,
		Metadata: PlanMetadata{
			Command:         req.Command,
			PlannedAt:       p.now(),
			AlertsProcessed: len(req.Alerts),
			ActionsProposed: len(actions),
			Source:          PlanSourceProposer,
		},
	}
}

func (p *Planner) recordProposals(actions []models.Action, actor, notes string) {
	for i := range actions {
		a := actions[i]
		p.auditor.Record(audit.Record{
			ActionID: a.ID,
			Event:    models.AuditEventProposed,
			Actor:    actor,
			Snapshot: &a,
			Notes:    notes,
		})
		metrics.ActionsProposed.WithLabelValues(string(a.Type)).Inc()
	}
}

// validateProposals normalizes raw proposer output. Unknown action types
// are dropped; unknown owners default to Kitchen and unknown risk levels
// to medium, matching how the original pipeline tolerated sloppy model
// output.
func (p *Planner) validateProposals(proposals []domain.ActionProposal) []models.Action {
	actions := make([]models.Action, 0, len(proposals))

	for _, raw := range proposals {
		t := models.ActionType(raw.ActionType)
		if !t.Valid() {
			p.log.WithField("action_type", raw.ActionType).Debug("dropping proposal with unknown action type")
			continue
		}

		owner := models.OwnerRole(raw.OwnerRole)
		if !owner.Valid() {
			owner = models.RoleKitchen
		}

		risk := models.RiskLevel(raw.RiskLevel)
		if !risk.Valid() {
			risk = models.RiskMedium
		}

		payload, err := decodeProposalPayload(t, raw.Payload)
		if err != nil {
			p.log.WithError(err).Debug("dropping proposal with malformed payload")
			continue
		}

		a, err := models.NewAction(t, payload, owner, risk, raw.ExpectedImpact, raw.Reason, raw.SourceAlertItem)
		if err != nil {
			p.log.WithError(err).Debug("dropping invalid proposal")
			continue
		}
		actions = append(actions, *a)
	}

	return actions
}

// decodeProposalPayload converts a proposer's free-form payload map into
// the typed variant for the action type.
func decodeProposalPayload(t models.ActionType, payload map[string]any) (models.Payload, error) {
	if payload == nil {
		return nil, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return models.DecodePayload(t, raw)
}

// fallbackPlan generates a minimal action queue with deterministic rules,
// used when no proposer is configured or it is unavailable.
func (p *Planner) fallbackPlan(alerts []models.Alert) []models.Action {
	var actions []models.Action

	add := func(a *models.Action, err error) {
		if err != nil {
			p.log.WithError(err).Warn("fallback plan action construction failed")
			return
		}
		actions = append(actions, *a)
	}

	for _, alert := range alerts {
		ev := alert.RiskEvent
		ctx := alert.Context
		item := ev.ItemID
		if item == "" {
			item = "unknown"
		}

		risk := riskTier(ev.Confidence, ev.DaysUntil)

		switch ev.EventType {
		case models.EventStockoutRisk:
			add(models.NewAction(
				models.ActionDraftPO,
				models.DraftPOPayload{
					Ingredient: item,
					Quantity:   reorderQuantity(ctx),
					Unit:       "units",
					DueTime:    fmt.Sprintf("within %d day(s)", max(1, ev.DaysUntil-1)),
					Notes:      fmt.Sprintf("Avg daily use: %g, supply est: %g days", ctx.AvgDailyUse, ctx.DaysOfSupplyEst),
				},
				models.RolePurchasing,
				risk,
				fmt.Sprintf("Prevent stockout in ~%d day(s) for %s", ev.DaysUntil, displayName(item)),
				fmt.Sprintf("Stockout risk at %d%% confidence, %d day(s) out. Trend: %s.",
					int(ev.Confidence*100), ev.DaysUntil, orUnknown(ctx.Trend)),
				item,
			))

			add(models.NewAction(
				models.ActionCreateTask,
				models.TaskPayload{
					Ingredient: item,
					Notes:      "Verify actual on-hand count and report back.",
					DueTime:    "today",
				},
				models.RoleKitchen,
				risk,
				"Accurate inventory count to validate the prediction.",
				fmt.Sprintf("Predicted stockout for %s, physical count needed.", displayName(item)),
				item,
			))

		case models.EventSurplusRisk:
			add(models.NewAction(
				models.ActionCreateTask,
				models.TaskPayload{
					Ingredient: item,
					Notes:      "Prioritise use in today's specials or prep. Consider small promotion.",
					DueTime:    "today",
				},
				models.RoleKitchen,
				risk,
				fmt.Sprintf("Reduce surplus/waste risk for %s", displayName(item)),
				fmt.Sprintf("Surplus risk at %d%% confidence. Waste-to-use ratio: %g.",
					int(ev.Confidence*100), ctx.WasteToUseRatio),
				item,
			))

			if ctx.Trend == "usage declining" && ctx.AvgDailyUse > 0 {
				add(models.NewAction(
					models.ActionAdjustPar,
					models.ParAdjustPayload{
						Ingredient:   item,
						ParChangePct: -10,
						Notes:        "Usage declining, reduce par to align with demand.",
					},
					models.RolePurchasing,
					models.RiskLow,
					"Reduce over-ordering by ~10%, cutting waste.",
					fmt.Sprintf("Usage trend is declining for %s.", displayName(item)),
					item,
				))
			}
		}
	}

	return actions
}

// riskTier grades an event by confidence and urgency.
func riskTier(confidence float64, daysUntil int) models.RiskLevel {
	switch {
	case confidence >= 0.8 && daysUntil <= 2:
		return models.RiskHigh
	case confidence >= 0.6 || daysUntil <= 4:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// reorderQuantity sizes a draft PO at roughly five days of average use,
// capped at the max safe order quantity.
func reorderQuantity(ctx models.HistoricalContext) float64 {
	if ctx.AvgDailyUse <= 0 {
		return 0
	}
	qty := math.Round(ctx.AvgDailyUse * 5)
	if ctx.MaxSafeOrderQty > 0 && qty > ctx.MaxSafeOrderQty {
		qty = math.Floor(ctx.MaxSafeOrderQty)
	}
	return qty
}

// displayName renders an item_id like "chicken_breast" as "Chicken Breast".
func displayName(itemID string) string {
	words := strings.Split(strings.ReplaceAll(itemID, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
