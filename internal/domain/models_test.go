package domain

import (
	"encoding/json"
	"testing"
)

func twoFactorScenario() Scenario {
	return Scenario{
		Name:    "users-price",
		Factors: []Factor{{Key: "users", Label: "Users"}, {Key: "price"}},
		Segments: []Segment{
			{Name: "all", Before: []float64{1000, 50}, After: []float64{1200, 60}},
		},
	}
}

func TestScenarioEntities(t *testing.T) {
	t.Parallel()
	s := twoFactorScenario()
	entities := s.Entities()
	if len(entities) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(entities))
	}
	if got := entities[0].Before.Product(); got != 50000 {
		t.Errorf("before product = %v, want 50000", got)
	}
	if got := entities[0].After.Product(); got != 72000 {
		t.Errorf("after product = %v, want 72000", got)
	}
}

func TestScenarioLabels(t *testing.T) {
	t.Parallel()
	s := twoFactorScenario()
	if s.Baseline() != "Scenario" || s.Comparison() != "Forecast" {
		t.Errorf("default labels = %q/%q", s.Baseline(), s.Comparison())
	}
	s.BaselineLabel, s.ComparisonLabel = "Revenue0", "Revenue1"
	if s.Baseline() != "Revenue0" || s.Comparison() != "Revenue1" {
		t.Errorf("custom labels = %q/%q", s.Baseline(), s.Comparison())
	}
	if got := s.Factors[1].DisplayLabel(); got != "price" {
		t.Errorf("DisplayLabel fallback = %q, want price", got)
	}
}

func TestScenarioSummary(t *testing.T) {
	t.Parallel()
	sum := twoFactorScenario().Summary()
	if sum.Name != "users-price" || sum.Segments != 1 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if len(sum.Factors) != 2 || sum.Factors[0] != "users" {
		t.Errorf("factors = %v", sum.Factors)
	}
}

func TestScenarioJSONKeys(t *testing.T) {
	t.Parallel()
	s := twoFactorScenario()
	s.BaselineLabel = "Before"
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"name", "factors", "segments", "baseline_label"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing JSON key %q", key)
		}
	}
	if _, ok := m["comparison_label"]; ok {
		t.Error("empty comparison_label should be omitted")
	}
}
