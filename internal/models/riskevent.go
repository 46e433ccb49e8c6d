package models

// Risk event types produced by the classifier pipeline.
const (
	EventStockoutRisk = "STOCKOUT_RISK"
	EventSurplusRisk  = "SURPLUS_RISK"
)

// RiskEvent is an upstream-classified prediction for one inventory item.
// It is the eventual trigger for proposing actions.
type RiskEvent struct {
	EventType  string       `json:"event_type"`
	ItemID     string       `json:"item_id"`
	Confidence float64      `json:"confidence"`
	DaysUntil  int          `json:"days_until"`
	Metadata   RiskMetadata `json:"metadata,omitempty"`
}

// RiskMetadata carries the raw classifier probabilities behind an event.
type RiskMetadata struct {
	ExpectedUnits       float64 `json:"expected_units,omitempty"`
	StockoutProbability float64 `json:"stockout_probability,omitempty"`
	SurplusProbability  float64 `json:"surplus_probability,omitempty"`
}

// AlertRecord is the per-item cooldown record kept by the eligibility
// filter. It describes the most recent eligible (not suppressed) alert.
// last_alert_ts is epoch seconds to match the persisted layout.
type AlertRecord struct {
	LastAlertTS float64 `json:"last_alert_ts"`
	Confidence  float64 `json:"confidence"`
	DaysUntil   int     `json:"days_until"`
}

// HistoricalContext is the usage summary an external warehouse supplies per
// ingredient. The planner uses it to size orders and judge trends.
type HistoricalContext struct {
	AvgDailyUse     float64 `json:"avg_daily_use,omitempty"`
	DaysOfSupplyEst float64 `json:"latest_days_of_supply_est,omitempty"`
	MaxSafeOrderQty float64 `json:"max_safe_order_qty,omitempty"`
	Trend           string  `json:"trend,omitempty"`
	WasteToUseRatio float64 `json:"waste_to_use_ratio,omitempty"`
}

// Alert pairs a risk event with its historical context, ready for planning.
type Alert struct {
	RiskEvent RiskEvent         `json:"risk_event"`
	Context   HistoricalContext `json:"historical_context"`
}
