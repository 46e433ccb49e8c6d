package models

// approvalRule describes how the auto-approve policy treats one action type.
type approvalRule int

const (
	ruleAlwaysAuto approvalRule = iota
	ruleNeverAuto
	ruleParThreshold
)

// autoApproveRules is the static policy table. Draft POs are auto-approvable
// because drafting is not sending; par adjustments are auto-approvable only
// within the threshold.
var autoApproveRules = map[ActionType]approvalRule{
	ActionAcknowledgeAlert:  ruleAlwaysAuto,
	ActionCreateTask:        ruleAlwaysAuto,
	ActionDraftPO:           ruleAlwaysAuto,
	ActionAdjustPar:         ruleParThreshold,
	ActionUpdateDeliveryETA: ruleNeverAuto,
	ActionTransferStock:     ruleNeverAuto,
}

// ParAutoApproveMaxPct is the largest absolute par change (in percent) that
// may skip human review.
const ParAutoApproveMaxPct = 10

// RequiresApproval decides, once at creation time, whether an action needs
// human sign-off before execution. Unknown types require approval.
func RequiresApproval(t ActionType, p Payload) bool {
	rule, ok := autoApproveRules[t]
	if !ok {
		return true
	}

	switch rule {
	case ruleAlwaysAuto:
		return false
	case ruleNeverAuto:
		return true
	case ruleParThreshold:
		par, ok := p.(ParAdjustPayload)
		if !ok {
			// No par payload to judge the size of the change.
			return true
		}
		pct := par.ParChangePct
		if pct < 0 {
			pct = -pct
		}
		return pct > ParAutoApproveMaxPct
	}

	return true
}
