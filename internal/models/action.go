// Package models defines the core data types of the stockpilot agent:
// actions, payload variants, audit entries, and risk events.
package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ActionType enumerates the operational actions the agent can propose.
type ActionType string

const (
	ActionDraftPO           ActionType = "draft_po"
	ActionCreateTask        ActionType = "create_task"
	ActionAdjustPar         ActionType = "adjust_par"
	ActionUpdateDeliveryETA ActionType = "update_delivery_eta"
	ActionTransferStock     ActionType = "transfer_stock"
	ActionAcknowledgeAlert  ActionType = "acknowledge_alert"
)

// ActionTypes lists every recognized action type.
var ActionTypes = []ActionType{
	ActionDraftPO,
	ActionCreateTask,
	ActionAdjustPar,
	ActionUpdateDeliveryETA,
	ActionTransferStock,
	ActionAcknowledgeAlert,
}

// Valid reports whether t is a recognized action type.
func (t ActionType) Valid() bool {
	return slices.Contains(ActionTypes, t)
}

// OwnerRole identifies the party responsible for carrying out an action.
type OwnerRole string

const (
	RolePurchasing OwnerRole = "Purchasing"
	RoleKitchen    OwnerRole = "Kitchen"
	RoleVendorOps  OwnerRole = "VendorOps"
)

// Valid reports whether r is a recognized owner role.
func (r OwnerRole) Valid() bool {
	switch r {
	case RolePurchasing, RoleKitchen, RoleVendorOps:
		return true
	}
	return false
}

// RiskLevel grades how urgent an action is.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether l is a recognized risk level.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// ActionStatus is the lifecycle state of an action.
type ActionStatus string

const (
	StatusProposed   ActionStatus = "proposed"
	StatusApproved   ActionStatus = "approved"
	StatusExecuting  ActionStatus = "executing"
	StatusExecuted   ActionStatus = "executed"
	StatusRolledBack ActionStatus = "rolled_back"
	StatusRejected   ActionStatus = "rejected"
)

// Valid reports whether s is a recognized lifecycle state.
func (s ActionStatus) Valid() bool {
	switch s {
	case StatusProposed, StatusApproved, StatusExecuting,
		StatusExecuted, StatusRolledBack, StatusRejected:
		return true
	}
	return false
}

// Action is a proposed or completed operational unit subject to the
// approval lifecycle. The executor's store holds the canonical record;
// everything else works on copies.
type Action struct {
	ID               string       `json:"action_id"`
	Type             ActionType   `json:"action_type"`
	Payload          Payload      `json:"payload"`
	OwnerRole        OwnerRole    `json:"owner_role"`
	RiskLevel        RiskLevel    `json:"risk_level"`
	RequiresApproval bool         `json:"requires_approval"`
	ExpectedImpact   string       `json:"expected_impact"`
	Reason           string       `json:"reason"`
	SourceAlertID    string       `json:"source_alert_id,omitempty"`
	Status           ActionStatus `json:"status"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// NewAction builds a fully-formed action. RequiresApproval is computed once
// here and never recomputed. All actions start as proposed.
func NewAction(
	actionType ActionType,
	payload Payload,
	owner OwnerRole,
	risk RiskLevel,
	expectedImpact, reason, sourceAlertID string,
) (*Action, error) {
	if !actionType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownActionType, actionType)
	}
	if payload != nil && payload.Kind() != actionType {
		return nil, fmt.Errorf("%w: payload kind %q does not match action type %q",
			ErrInvalidPayload, payload.Kind(), actionType)
	}

	now := time.Now().UTC()

	return &Action{
		ID:               uuid.New().String(),
		Type:             actionType,
		Payload:          payload,
		OwnerRole:        owner,
		RiskLevel:        risk,
		RequiresApproval: RequiresApproval(actionType, payload),
		ExpectedImpact:   expectedImpact,
		Reason:           reason,
		SourceAlertID:    sourceAlertID,
		Status:           StatusProposed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Clone returns a copy of the action. Payload variants are value types, so
// a shallow copy is a full copy.
func (a *Action) Clone() *Action {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// actionJSON mirrors Action with the payload held raw, so the variant can
// be decoded once the action type is known.
type actionJSON struct {
	ID               string          `json:"action_id"`
	Type             ActionType      `json:"action_type"`
	Payload          json.RawMessage `json:"payload"`
	OwnerRole        OwnerRole       `json:"owner_role"`
	RiskLevel        RiskLevel       `json:"risk_level"`
	RequiresApproval bool            `json:"requires_approval"`
	ExpectedImpact   string          `json:"expected_impact"`
	Reason           string          `json:"reason"`
	SourceAlertID    string          `json:"source_alert_id,omitempty"`
	Status           ActionStatus    `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// UnmarshalJSON decodes an action, selecting the payload variant by the
// action_type field.
func (a *Action) UnmarshalJSON(data []byte) error {
	var raw actionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	payload, err := DecodePayload(raw.Type, raw.Payload)
	if err != nil {
		return err
	}

	*a = Action{
		ID:               raw.ID,
		Type:             raw.Type,
		Payload:          payload,
		OwnerRole:        raw.OwnerRole,
		RiskLevel:        raw.RiskLevel,
		RequiresApproval: raw.RequiresApproval,
		ExpectedImpact:   raw.ExpectedImpact,
		Reason:           raw.Reason,
		SourceAlertID:    raw.SourceAlertID,
		Status:           raw.Status,
		CreatedAt:        raw.CreatedAt,
		UpdatedAt:        raw.UpdatedAt,
	}
	return nil
}

// riskPriority orders risk levels for queue sorting. Lower sorts first.
var riskPriority = map[RiskLevel]int{
	RiskHigh:   0,
	RiskMedium: 1,
	RiskLow:    2,
}

// PrioritizeActions sorts actions high risk first, then by creation time
// ascending. The sort is stable, so equal keys keep their relative order.
func PrioritizeActions(actions []Action) []Action {
	sorted := make([]Action, len(actions))
	copy(sorted, actions)

	sort.SliceStable(sorted, func(i, j int) bool {
		pi, ok := riskPriority[sorted[i].RiskLevel]
		if !ok {
			pi = 9
		}
		pj, ok := riskPriority[sorted[j].RiskLevel]
		if !ok {
			pj = 9
		}
		if pi != pj {
			return pi < pj
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	return sorted
}

// GroupByOwner partitions actions by owner role, preserving relative order
// within each group.
func GroupByOwner(actions []Action) map[OwnerRole][]Action {
	groups := make(map[OwnerRole][]Action)
	for _, a := range actions {
		groups[a.OwnerRole] = append(groups[a.OwnerRole], a)
	}
	return groups
}
