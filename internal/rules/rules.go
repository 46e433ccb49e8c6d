// Package rules applies the configurable, deterministic pass/fail rules
// that risk events must clear before alerting. Rules come from a YAML
// file with environment overrides; a missing or unreadable file falls
// back to defaults.
package rules

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/stockpilotai/stockpilot/internal/models"
)

// Rules is the rule-engine configuration.
type Rules struct {
	MinConfidence      float64  `koanf:"min_confidence" json:"min_confidence"`
	MaxDaysOut         int      `koanf:"max_days_out" json:"max_days_out"`
	IgnoredIngredients []string `koanf:"ignored_ingredients" json:"ignored_ingredients"`
	RestaurantID       string   `koanf:"restaurant_id" json:"restaurant_id"`
}

// Defaults returns the built-in rule set.
func Defaults() *Rules {
	return &Rules{
		MinConfidence: 0.6,
		MaxDaysOut:    7,
		RestaurantID:  "main",
	}
}

// envPrefix is the prefix for rule overrides, e.g.
// STOCKPILOT_RULE_MIN_CONFIDENCE.
const envPrefix = "STOCKPILOT_RULE_"

// Load reads rules from the given YAML file, overlays environment
// variables, and merges the result over defaults. Missing files are not
// an error.
func Load(path string) (*Rules, error) {
	k := koanf.New(".")
	r := Defaults()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading rules %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing rules %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading rule env overrides: %w", err)
	}

	if err := k.Unmarshal("", r); err != nil {
		return nil, fmt.Errorf("unmarshalling rules: %w", err)
	}

	return r, nil
}

// Apply filters risk events through the rules: minimum confidence, the
// days-out window, and the ignore list. All rules are deterministic.
func (r *Rules) Apply(events []models.RiskEvent) []models.RiskEvent {
	passed := make([]models.RiskEvent, 0, len(events))

	for _, ev := range events {
		if ev.Confidence < r.MinConfidence {
			continue
		}
		if ev.DaysUntil > r.MaxDaysOut {
			continue
		}
		if slices.Contains(r.IgnoredIngredients, ev.ItemID) {
			continue
		}
		passed = append(passed, ev)
	}

	return passed
}
