package models

import (
	"encoding/json"
	"fmt"
)

// Payload carries the type-specific fields of an action. Each action type
// has its own variant; the variant is selected by the action's type when
// decoding. Variants are value types so copies are cheap and safe.
type Payload interface {
	Kind() ActionType
}

// DraftPOPayload describes a draft purchase order. The PO is never sent
// automatically — drafting is the whole action.
type DraftPOPayload struct {
	Ingredient string  `json:"ingredient"`
	Quantity   float64 `json:"quantity,omitempty"`
	Unit       string  `json:"unit,omitempty"`
	Vendor     string  `json:"vendor,omitempty"`
	DueTime    string  `json:"due_time,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

// Kind implements Payload.
func (DraftPOPayload) Kind() ActionType { return ActionDraftPO }

// TaskPayload describes a kitchen or purchasing task.
type TaskPayload struct {
	Ingredient string `json:"ingredient"`
	Notes      string `json:"notes,omitempty"`
	DueTime    string `json:"due_time,omitempty"`
}

// Kind implements Payload.
func (TaskPayload) Kind() ActionType { return ActionCreateTask }

// ParAdjustPayload describes a par-level change as a signed percentage.
type ParAdjustPayload struct {
	Ingredient   string  `json:"ingredient"`
	ParChangePct float64 `json:"par_change_pct"`
	Notes        string  `json:"notes,omitempty"`
}

// Kind implements Payload.
func (ParAdjustPayload) Kind() ActionType { return ActionAdjustPar }

// DeliveryETAPayload describes a delivery ETA update.
type DeliveryETAPayload struct {
	Ingredient string `json:"ingredient"`
	NewETA     string `json:"due_time,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// Kind implements Payload.
func (DeliveryETAPayload) Kind() ActionType { return ActionUpdateDeliveryETA }

// TransferPayload describes a stock transfer between locations.
type TransferPayload struct {
	Ingredient string  `json:"ingredient"`
	Quantity   float64 `json:"quantity,omitempty"`
	Unit       string  `json:"unit,omitempty"`
	From       string  `json:"from_location,omitempty"`
	To         string  `json:"to_location,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

// Kind implements Payload.
func (TransferPayload) Kind() ActionType { return ActionTransferStock }

// AckPayload describes acknowledging an alert without further action.
type AckPayload struct {
	Ingredient string `json:"ingredient"`
	Notes      string `json:"notes,omitempty"`
}

// Kind implements Payload.
func (AckPayload) Kind() ActionType { return ActionAcknowledgeAlert }

// DecodePayload unmarshals raw payload bytes into the variant matching the
// given action type. A missing or null payload decodes to nil.
func DecodePayload(t ActionType, raw json.RawMessage) (Payload, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var (
		p   Payload
		err error
	)

	switch t {
	case ActionDraftPO:
		var v DraftPOPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case ActionCreateTask:
		var v TaskPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case ActionAdjustPar:
		var v ParAdjustPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case ActionUpdateDeliveryETA:
		var v DeliveryETAPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case ActionTransferStock:
		var v TransferPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case ActionAcknowledgeAlert:
		var v AckPayload
		err = json.Unmarshal(raw, &v)
		p = v
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownActionType, t)
	}

	if err != nil {
		return nil, fmt.Errorf("decoding %s payload: %w", t, err)
	}
	return p, nil
}

// PayloadIngredient returns the ingredient named by the payload, or
// "unknown" when the payload carries none.
func PayloadIngredient(p Payload) string {
	var ing string
	switch v := p.(type) {
	case DraftPOPayload:
		ing = v.Ingredient
	case TaskPayload:
		ing = v.Ingredient
	case ParAdjustPayload:
		ing = v.Ingredient
	case DeliveryETAPayload:
		ing = v.Ingredient
	case TransferPayload:
		ing = v.Ingredient
	case AckPayload:
		ing = v.Ingredient
	}
	if ing == "" {
		return "unknown"
	}
	return ing
}
