package domain

import "github.com/lmdi-explainer/lmdi-go/internal/lmdi"

const (
	DefaultBaselineLabel   = "Scenario"
	DefaultComparisonLabel = "Forecast"
)

// Factor is one multiplicative component of a segment's aggregate value.
type Factor struct {
	Key   string `json:"key" yaml:"key" toml:"key"`
	Label string `json:"label" yaml:"label" toml:"label"`
	Color string `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty"`
}

// DisplayLabel returns Label, falling back to Key.
func (f Factor) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Key
}

// Segment is one named entity with factor values for both periods, ordered
// like Scenario.Factors.
type Segment struct {
	Name   string    `json:"name" yaml:"name" toml:"name"`
	Before []float64 `json:"before" yaml:"before" toml:"before"`
	After  []float64 `json:"after" yaml:"after" toml:"after"`
}

// Scenario is a named two-period dataset: several segments whose aggregate
// is the product of the same ordered factors.
type Scenario struct {
	Name            string    `json:"name" yaml:"name" toml:"name"`
	Title           string    `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Description     string    `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	BaselineLabel   string    `json:"baseline_label,omitempty" yaml:"baseline_label,omitempty" toml:"baseline_label,omitempty"`
	ComparisonLabel string    `json:"comparison_label,omitempty" yaml:"comparison_label,omitempty" toml:"comparison_label,omitempty"`
	Factors         []Factor  `json:"factors" yaml:"factors" toml:"factors"`
	Segments        []Segment `json:"segments" yaml:"segments" toml:"segments"`
}

// FactorKeys returns the factor keys in order.
func (s Scenario) FactorKeys() []string {
	keys := make([]string, len(s.Factors))
	for i, f := range s.Factors {
		keys[i] = f.Key
	}
	return keys
}

// Baseline returns the label of the first period.
func (s Scenario) Baseline() string {
	if s.BaselineLabel != "" {
		return s.BaselineLabel
	}
	return DefaultBaselineLabel
}

// Comparison returns the label of the second period.
func (s Scenario) Comparison() string {
	if s.ComparisonLabel != "" {
		return s.ComparisonLabel
	}
	return DefaultComparisonLabel
}

// Entities converts the segments to engine input. The vectors are shared
// with the scenario, not copied; the engine never writes to them.
func (s Scenario) Entities() []lmdi.Entity {
	out := make([]lmdi.Entity, len(s.Segments))
	for i, seg := range s.Segments {
		out[i] = lmdi.Entity{Before: seg.Before, After: seg.After}
	}
	return out
}

// ScenarioSummary is the listing form of a Scenario.
type ScenarioSummary struct {
	Name     string   `json:"name"`
	Title    string   `json:"title,omitempty"`
	Factors  []string `json:"factors"`
	Segments int      `json:"segments"`
}

// Summary returns the listing form of s.
func (s Scenario) Summary() ScenarioSummary {
	return ScenarioSummary{
		Name:     s.Name,
		Title:    s.Title,
		Factors:  s.FactorKeys(),
		Segments: len(s.Segments),
	}
}
