package domain

import (
	"fmt"
	"math"
)

// ValidateFactor checks required fields on a Factor.
func ValidateFactor(f Factor) error {
	if f.Key == "" {
		return fmt.Errorf("factor key is required")
	}
	return nil
}

// ValidateSegment checks a segment against the expected factor count.
// Values must be finite and strictly positive.
func ValidateSegment(s Segment, factors int) error {
	if s.Name == "" {
		return fmt.Errorf("segment name is required")
	}
	if len(s.Before) != factors {
		return fmt.Errorf("segment %q: before has %d values, want %d", s.Name, len(s.Before), factors)
	}
	if len(s.After) != factors {
		return fmt.Errorf("segment %q: after has %d values, want %d", s.Name, len(s.After), factors)
	}
	for k := range s.Before {
		if err := validateValue(s.Before[k]); err != nil {
			return fmt.Errorf("segment %q: before[%d]: %w", s.Name, k, err)
		}
		if err := validateValue(s.After[k]); err != nil {
			return fmt.Errorf("segment %q: after[%d]: %w", s.Name, k, err)
		}
	}
	return nil
}

// ValidateScenario checks a Scenario before it reaches the engine.
func ValidateScenario(s Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if len(s.Factors) == 0 {
		return fmt.Errorf("scenario %q: at least one factor is required", s.Name)
	}
	seen := make(map[string]bool, len(s.Factors))
	for i, f := range s.Factors {
		if err := ValidateFactor(f); err != nil {
			return fmt.Errorf("scenario %q: factor %d: %w", s.Name, i, err)
		}
		if seen[f.Key] {
			return fmt.Errorf("scenario %q: duplicate factor key %q", s.Name, f.Key)
		}
		seen[f.Key] = true
	}
	names := make(map[string]bool, len(s.Segments))
	for _, seg := range s.Segments {
		if err := ValidateSegment(seg, len(s.Factors)); err != nil {
			return fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		if names[seg.Name] {
			return fmt.Errorf("scenario %q: duplicate segment %q", s.Name, seg.Name)
		}
		names[seg.Name] = true
	}
	return nil
}

func validateValue(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("value %g is not finite", v)
	}
	if v <= 0 {
		return fmt.Errorf("value %g must be positive", v)
	}
	return nil
}
