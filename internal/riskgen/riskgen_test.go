package riskgen_test

import (
	"strings"
	"testing"

	"github.com/stockpilotai/stockpilot/internal/models"
	"github.com/stockpilotai/stockpilot/internal/riskgen"
)

func TestReadPredictions(t *testing.T) {
	t.Parallel()

	input := `{"item_id":"chicken_breast","stockout_probability":0.82,"surplus_probability":0.05,"days_until_event":2,"expected_units":12}

{"item_id":"tofu","stockout_probability":0.1,"surplus_probability":0.7,"days_until_event":5}
`
	preds, err := riskgen.ReadPredictions(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadPredictions: %v", err)
	}
	if len(preds) != 2 {
		t.Fatalf("expected 2 predictions, got %d", len(preds))
	}
	if preds[0].ItemID != "chicken_breast" || preds[0].ExpectedUnits != 12 {
		t.Errorf("unexpected first prediction: %+v", preds[0])
	}
}

func TestReadPredictions_BadLine(t *testing.T) {
	t.Parallel()

	input := "{\"item_id\":\"a\"}\nnot json\n"
	_, err := riskgen.ReadPredictions(strings.NewReader(input))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line-numbered error, got %v", err)
	}
}

func TestGenerateRiskEvents(t *testing.T) {
	t.Parallel()

	preds := []riskgen.Prediction{
		{ItemID: "chicken_breast", StockoutProbability: 0.824, SurplusProbability: 0.05, DaysUntilEvent: 2},
		{ItemID: "tofu", StockoutProbability: 0.1, SurplusProbability: 0.7, DaysUntilEvent: 5},
		{ItemID: "rice", StockoutProbability: 0.3, SurplusProbability: 0.3, DaysUntilEvent: 4}, // below threshold
		{ItemID: "salt", StockoutProbability: 0.6, SurplusProbability: 0.6, DaysUntilEvent: 3}, // tie
	}

	events := riskgen.GenerateRiskEvents(preds, 0.6)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	if events[0].EventType != models.EventStockoutRisk {
		t.Errorf("dominant stockout should yield stockout_risk, got %q", events[0].EventType)
	}
	if events[0].Confidence != 0.82 {
		t.Errorf("confidence should round to 2dp, got %g", events[0].Confidence)
	}
	if events[1].EventType != models.EventSurplusRisk {
		t.Errorf("dominant surplus should yield surplus_risk, got %q", events[1].EventType)
	}
	// Ties go to stockout.
	if events[2].ItemID != "salt" || events[2].EventType != models.EventStockoutRisk {
		t.Errorf("tie should resolve to stockout, got %+v", events[2])
	}
}

func TestGenerateRiskEvents_DefaultThreshold(t *testing.T) {
	t.Parallel()

	preds := []riskgen.Prediction{
		{ItemID: "a", StockoutProbability: 0.59},
		{ItemID: "b", StockoutProbability: 0.61},
	}

	events := riskgen.GenerateRiskEvents(preds, 0)
	if len(events) != 1 || events[0].ItemID != "b" {
		t.Fatalf("zero threshold should fall back to the default, got %+v", events)
	}
}
