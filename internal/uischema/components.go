package uischema

import (
	"math"

	"github.com/lmdi-explainer/lmdi-go/internal/analysis"
	"github.com/lmdi-explainer/lmdi-go/internal/domain"
	"github.com/lmdi-explainer/lmdi-go/internal/format"
	"github.com/lmdi-explainer/lmdi-go/internal/waterfall"
)

// residualTolerance is relative to the size of the aggregate change.
const residualTolerance = 1e-9

// kpiCards builds the always-present headline figures.
func kpiCards(r analysis.Report) Component {
	return Component{
		Type:       ComponentKPICards,
		Title:      "Summary",
		Priority:   0,
		Visibility: VisibilityVisible,
		Data: map[string]any{
			"baseline_label":   r.BaselineLabel,
			"comparison_label": r.ComparisonLabel,
			"before":           r.Before,
			"after":            r.After,
			"delta":            r.Delta,
			"delta_pct":        r.DeltaPct,
			"top_factor":       r.TopFactor,
			"before_text":      format.Currency(r.Before),
			"after_text":       format.Currency(r.After),
			"delta_text":       format.Signed(r.Delta),
			"delta_pct_text":   format.Percent(r.DeltaPct),
		},
	}
}

func waterfallChart(r analysis.Report) Component {
	return Component{
		Type:       ComponentWaterfallChart,
		Title:      r.BaselineLabel + " to " + r.ComparisonLabel,
		Priority:   10,
		Visibility: VisibilityVisible,
		Data: map[string]any{
			"bars": waterfall.FromReport(r),
		},
	}
}

// decompositionTable lists per-segment contributions, in currency or as a
// share of the total change depending on view.
func decompositionTable(r analysis.Report, view domain.ViewMode) Component {
	columns := make([]string, len(r.Totals))
	totals := make([]float64, len(r.Totals))
	for k, t := range r.Totals {
		columns[k] = t.Label
		totals[k] = t.Contribution
		if view == domain.ViewPercent {
			totals[k] = t.Share
		}
	}

	rows := make([]map[string]any, len(r.Rows))
	for i, row := range r.Rows {
		values := row.Contributions
		if view == domain.ViewPercent {
			values = row.Shares
		}
		rows[i] = map[string]any{
			"name":      row.Name,
			"before":    row.Before,
			"after":     row.After,
			"delta":     row.Delta,
			"delta_pct": row.DeltaPct,
			"values":    values,
			"check":     row.Check,
		}
	}

	return Component{
		Type:       ComponentDecompositionTable,
		Title:      "Impact by segment",
		Priority:   20,
		Visibility: VisibilityVisible,
		Data: map[string]any{
			"view":    string(view),
			"columns": columns,
			"rows":    rows,
			"totals":  totals,
		},
	}
}

// residualCheck shows that the factor contributions close the gap exactly.
// It is collapsed while the check passes.
func residualCheck(r analysis.Report) Component {
	ok := math.Abs(r.Residual) <= residualTolerance*math.Max(1, math.Abs(r.Delta))
	vis := VisibilityCollapsed
	if !ok {
		vis = VisibilityVisible
	}
	return Component{
		Type:       ComponentResidualCheck,
		Title:      "Residual check",
		Priority:   30,
		Visibility: vis,
		Data: map[string]any{
			"sum":      r.Delta + r.Residual,
			"delta":    r.Delta,
			"residual": r.Residual,
			"ok":       ok,
		},
	}
}

func methodComparison(c analysis.Comparison) Component {
	return Component{
		Type:       ComponentMethodComparison,
		Title:      "LMDI vs Laspeyres",
		Priority:   40,
		Visibility: VisibilityVisible,
		Data: map[string]any{
			"factors":            c.Factors,
			"lmdi_residual":      c.LMDIResidual,
			"laspeyres_residual": c.LaspeyresResidual,
			"residual_pct":       c.ResidualPct,
			"bars":               waterfall.FromComparison(c),
		},
	}
}
