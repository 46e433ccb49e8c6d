// Package riskgen converts raw classifier predictions into structured
// risk events by selecting the dominant probability and applying a
// confidence threshold. It only transforms data shapes.
package riskgen

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/stockpilotai/stockpilot/internal/models"
)

// DefaultConfidenceThreshold is the minimum dominant probability for a
// prediction to qualify as a risk event.
const DefaultConfidenceThreshold = 0.6

// Prediction is one classifier output row.
type Prediction struct {
	ItemID              string  `json:"item_id"`
	StockoutProbability float64 `json:"stockout_probability"`
	SurplusProbability  float64 `json:"surplus_probability"`
	DaysUntilEvent      int     `json:"days_until_event"`
	ExpectedUnits       float64 `json:"expected_units"`
}

// ReadPredictions parses classifier output, one JSON object per line.
// Blank lines are skipped.
func ReadPredictions(r io.Reader) ([]Prediction, error) {
	var preds []Prediction

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var p Prediction
		if err := json.Unmarshal([]byte(text), &p); err != nil {
			return nil, fmt.Errorf("parsing prediction on line %d: %w", line, err)
		}
		preds = append(preds, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading predictions: %w", err)
	}

	return preds, nil
}

// LoadPredictions reads classifier output from a file.
func LoadPredictions(path string) ([]Prediction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening classifier output: %w", err)
	}
	defer f.Close()

	return ReadPredictions(f)
}

// GenerateRiskEvents converts predictions into risk events. The dominant
// probability picks the event type (ties go to stockout); predictions
// below the threshold are dropped.
func GenerateRiskEvents(preds []Prediction, threshold float64) []models.RiskEvent {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}

	events := make([]models.RiskEvent, 0, len(preds))
	for _, p := range preds {
		eventType := models.EventStockoutRisk
		confidence := p.StockoutProbability
		if p.SurplusProbability > p.StockoutProbability {
			eventType = models.EventSurplusRisk
			confidence = p.SurplusProbability
		}

		if confidence < threshold {
			continue
		}

		events = append(events, models.RiskEvent{
			EventType:  eventType,
			ItemID:     p.ItemID,
			Confidence: math.Round(confidence*100) / 100,
			DaysUntil:  p.DaysUntilEvent,
			Metadata: models.RiskMetadata{
				ExpectedUnits:       p.ExpectedUnits,
				StockoutProbability: p.StockoutProbability,
				SurplusProbability:  p.SurplusProbability,
			},
		})
	}

	return events
}
