package agent

import (
	"fmt"
	"strings"

	"github.com/stockpilotai/stockpilot/internal/models"
)

// ExecOutcome is the synthetic confirmation produced by executing an
// action.
type ExecOutcome struct {
	Reference  string         `json:"reference,omitempty"`
	Ingredient string         `json:"ingredient"`
	Message    string         `json:"message"`
	Detail     map[string]any `json:"detail,omitempty"`
}

// ExecResult reports the outcome of the backend call for one action.
type ExecResult struct {
	Success bool        `json:"success"`
	Result  ExecOutcome `json:"result"`
	Error   string      `json:"error,omitempty"`
}

// SimulatedBackend stands in for the real procurement, task, and vendor
// systems. Every call succeeds; the failure path through the executor
// exists for real backends and for tests.
type SimulatedBackend struct{}

// refFor derives a short human-readable reference from an action ID.
func refFor(prefix, actionID string) string {
	id := actionID
	if len(id) > 8 {
		id = id[:8]
	}
	return prefix + "-" + strings.ToUpper(id)
}

// Execute implements Simulator.
func (s *SimulatedBackend) Execute(a *models.Action) ExecResult {
	ingredient := models.PayloadIngredient(a.Payload)

	switch a.Type {
	case models.ActionDraftPO:
		p, _ := a.Payload.(models.DraftPOPayload)
		return ExecResult{
			Success: true,
			Result: ExecOutcome{
				Reference:  refFor("PO", a.ID),
				Ingredient: ingredient,
				Message:    fmt.Sprintf("Draft PO created for %s. Awaiting send approval.", ingredient),
				Detail:     map[string]any{"quantity": p.Quantity, "status": "DRAFT"},
			},
		}

	case models.ActionCreateTask:
		p, _ := a.Payload.(models.TaskPayload)
		notes := p.Notes
		if notes == "" {
			notes = "No details"
		}
		return ExecResult{
			Success: true,
			Result: ExecOutcome{
				Reference:  refFor("TASK", a.ID),
				Ingredient: ingredient,
				Message:    "Task created: " + notes,
				Detail:     map[string]any{"assigned_to": a.OwnerRole},
			},
		}

	case models.ActionAdjustPar:
		p, _ := a.Payload.(models.ParAdjustPayload)
		return ExecResult{
			Success: true,
			Result: ExecOutcome{
				Ingredient: ingredient,
				Message:    fmt.Sprintf("Par level adjusted by %g%% for %s.", p.ParChangePct, ingredient),
				Detail:     map[string]any{"par_change_pct": p.ParChangePct},
			},
		}

	case models.ActionUpdateDeliveryETA:
		p, _ := a.Payload.(models.DeliveryETAPayload)
		return ExecResult{
			Success: true,
			Result: ExecOutcome{
				Ingredient: ingredient,
				Message:    fmt.Sprintf("Delivery ETA updated for %s.", ingredient),
				Detail:     map[string]any{"new_eta": p.NewETA},
			},
		}

	case models.ActionTransferStock:
		p, _ := a.Payload.(models.TransferPayload)
		return ExecResult{
			Success: true,
			Result: ExecOutcome{
				Ingredient: ingredient,
				Message:    fmt.Sprintf("Stock transfer initiated for %s.", ingredient),
				Detail:     map[string]any{"quantity": p.Quantity},
			},
		}

	case models.ActionAcknowledgeAlert:
		return ExecResult{
			Success: true,
			Result: ExecOutcome{
				Ingredient: ingredient,
				Message:    fmt.Sprintf("Alert acknowledged for %s.", ingredient),
			},
		}
	}

	return ExecResult{
		Success: true,
		Result:  ExecOutcome{Ingredient: ingredient, Message: "Action executed."},
	}
}
