package analysis

import (
	"fmt"

	"github.com/lmdi-explainer/lmdi-go/internal/domain"
	"github.com/lmdi-explainer/lmdi-go/internal/lmdi"
)

// FactorComparison holds one factor's effect under both methods.
type FactorComparison struct {
	Key       string  `json:"key"`
	Label     string  `json:"label"`
	Color     string  `json:"color,omitempty"`
	LMDI      float64 `json:"lmdi"`
	Laspeyres float64 `json:"laspeyres"`
}

// Comparison sets LMDI against the one-at-a-time Laspeyres split, which
// leaves the interaction effect as an unexplained residual.
type Comparison struct {
	Scenario          string             `json:"scenario"`
	BaselineLabel     string             `json:"baseline_label"`
	ComparisonLabel   string             `json:"comparison_label"`
	Factors           []FactorComparison `json:"factors"`
	Before            float64            `json:"before"`
	After             float64            `json:"after"`
	Delta             float64            `json:"delta"`
	LMDIResidual      float64            `json:"lmdi_residual"`
	LaspeyresResidual float64            `json:"laspeyres_residual"`
	// ResidualPct is |LaspeyresResidual| as a percentage of |Delta|.
	ResidualPct float64 `json:"residual_pct"`
}

// Compare decomposes s with both methods.
func Compare(s domain.Scenario) (Comparison, error) {
	if err := domain.ValidateScenario(s); err != nil {
		return Comparison{}, fmt.Errorf("analysis: %w", err)
	}
	entities := s.Entities()
	ld, err := lmdi.Decompose(entities)
	if err != nil {
		return Comparison{}, fmt.Errorf("analysis: lmdi %q: %w", s.Name, err)
	}
	lp, err := lmdi.Laspeyres(entities)
	if err != nil {
		return Comparison{}, fmt.Errorf("analysis: laspeyres %q: %w", s.Name, err)
	}

	cmp := Comparison{
		Scenario:          s.Name,
		BaselineLabel:     s.Baseline(),
		ComparisonLabel:   s.Comparison(),
		Factors:           make([]FactorComparison, len(s.Factors)),
		Before:            ld.Before,
		After:             ld.After,
		Delta:             ld.Delta(),
		LMDIResidual:      ld.Residual(),
		LaspeyresResidual: lp.Residual,
	}
	if cmp.Delta != 0 {
		cmp.ResidualPct = Share(abs(lp.Residual), abs(cmp.Delta))
	}
	for k, f := range s.Factors {
		fc := FactorComparison{Key: f.Key, Label: f.DisplayLabel(), Color: f.Color}
		if k < len(ld.Contributions) {
			fc.LMDI = ld.Contributions[k]
			fc.Laspeyres = lp.Effects[k]
		}
		cmp.Factors[k] = fc
	}
	return cmp, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
