// Package analysis turns a scenario into the tables and totals the
// explainer presents: per-segment decomposition rows, factor totals and
// the LMDI-versus-Laspeyres comparison.
package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/lmdi-explainer/lmdi-go/internal/domain"
	"github.com/lmdi-explainer/lmdi-go/internal/lmdi"
)

// Options tunes report building.
type Options struct {
	// Workers > 1 decomposes segments concurrently.
	Workers int
}

// SegmentRow is one line of the impact table.
type SegmentRow struct {
	Name     string  `json:"name"`
	Before   float64 `json:"before"`
	After    float64 `json:"after"`
	Delta    float64 `json:"delta"`
	DeltaPct float64 `json:"delta_pct"`
	// DeltaShare is Delta as a percentage of the scenario's total delta.
	DeltaShare    float64   `json:"delta_share"`
	Contributions []float64 `json:"contributions"`
	// Shares[k] is Contributions[k] as a percentage of |total delta|.
	Shares []float64 `json:"shares"`
	// Check is the sum of Contributions; it equals Delta.
	Check float64 `json:"check"`
}

// FactorTotal is one factor's contribution across all segments.
type FactorTotal struct {
	Key          string  `json:"key"`
	Label        string  `json:"label"`
	Color        string  `json:"color,omitempty"`
	Contribution float64 `json:"contribution"`
	// Share is Contribution as a percentage of the total delta.
	Share float64 `json:"share"`
}

// Report is the full decomposition of one scenario.
type Report struct {
	Scenario        string        `json:"scenario"`
	Title           string        `json:"title,omitempty"`
	BaselineLabel   string        `json:"baseline_label"`
	ComparisonLabel string        `json:"comparison_label"`
	Rows            []SegmentRow  `json:"rows"`
	Totals          []FactorTotal `json:"totals"`
	Before          float64       `json:"before"`
	After           float64       `json:"after"`
	Delta           float64       `json:"delta"`
	DeltaPct        float64       `json:"delta_pct"`
	TopFactor       string        `json:"top_factor,omitempty"`
	Residual        float64       `json:"residual"`
}

// Contributions returns the per-factor totals in factor order.
func (r Report) Contributions() []float64 {
	out := make([]float64, len(r.Totals))
	for k, t := range r.Totals {
		out[k] = t.Contribution
	}
	return out
}

// Build validates s and decomposes it.
func Build(ctx context.Context, s domain.Scenario, opts Options) (Report, error) {
	if err := domain.ValidateScenario(s); err != nil {
		return Report{}, fmt.Errorf("analysis: %w", err)
	}
	res, err := lmdi.DecomposeParallel(ctx, s.Entities(), opts.Workers)
	if err != nil {
		return Report{}, fmt.Errorf("analysis: decompose %q: %w", s.Name, err)
	}

	delta := res.Delta()
	report := Report{
		Scenario:        s.Name,
		Title:           s.Title,
		BaselineLabel:   s.Baseline(),
		ComparisonLabel: s.Comparison(),
		Rows:            make([]SegmentRow, len(s.Segments)),
		Totals:          make([]FactorTotal, len(s.Factors)),
		Before:          res.Before,
		After:           res.After,
		Delta:           delta,
		DeltaPct:        PctChange(res.After, res.Before) * 100,
		Residual:        res.Residual(),
	}

	for i, seg := range s.Segments {
		before := lmdi.FactorVector(seg.Before).Product()
		after := lmdi.FactorVector(seg.After).Product()
		contrib := res.PerEntity[i]
		row := SegmentRow{
			Name:          seg.Name,
			Before:        before,
			After:         after,
			Delta:         after - before,
			DeltaPct:      PctChange(after, before) * 100,
			DeltaShare:    Share(after-before, delta),
			Contributions: contrib,
			Shares:        make([]float64, len(contrib)),
		}
		for k, c := range contrib {
			row.Check += c
			row.Shares[k] = Share(c, math.Abs(delta))
		}
		report.Rows[i] = row
	}

	// With no segments the engine reports no factors at all.
	contributions := res.Contributions
	if len(contributions) == 0 {
		contributions = make([]float64, len(s.Factors))
	}
	for k, f := range s.Factors {
		report.Totals[k] = FactorTotal{
			Key:          f.Key,
			Label:        f.DisplayLabel(),
			Color:        f.Color,
			Contribution: contributions[k],
			Share:        Share(contributions[k], delta),
		}
	}
	if top := res.TopFactor(); top >= 0 {
		report.TopFactor = s.Factors[top].Key
	}
	return report, nil
}
