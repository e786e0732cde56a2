// Package waterfall lays out bridge charts: a starting total, one floating
// bar per contribution and a closing total.
package waterfall

import (
	"math"

	"github.com/lmdi-explainer/lmdi-go/internal/analysis"
)

const (
	// AnchorColor fills the start and end total bars.
	AnchorColor = "#111111"
	// ResidualColor fills the unexplained Laspeyres interaction bar.
	ResidualColor = "#ef4444"
	// DefaultColor is used for factors without a colour.
	DefaultColor = "#6b7280"
)

// Entry is one input step of the bridge.
type Entry struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
	// Total marks an anchor bar drawn from zero.
	Total bool `json:"total,omitempty"`
}

// Bar is a positioned bar: an invisible spacer of height Base with the
// visible bar of height Height stacked on top.
type Bar struct {
	Name         string  `json:"name"`
	Base         float64 `json:"base"`
	Height       float64 `json:"height"`
	DisplayValue float64 `json:"display_value"`
	Color        string  `json:"color"`
	Total        bool    `json:"total,omitempty"`
}

// Top returns the upper edge of the bar.
func (b Bar) Top() float64 { return b.Base + b.Height }

// Build positions entries on a running total. Anchor entries start at zero
// and reset the running total to their value. A delta entry spans from the
// running total to running total + value, so negative values hang down.
func Build(entries []Entry) []Bar {
	bars := make([]Bar, 0, len(entries))
	var running float64
	for _, e := range entries {
		bar := Bar{
			Name:         e.Name,
			Height:       math.Abs(e.Value),
			DisplayValue: e.Value,
			Color:        e.Color,
			Total:        e.Total,
		}
		if e.Total {
			running = e.Value
		} else {
			end := running + e.Value
			bar.Base = math.Min(running, end)
			running = end
		}
		bars = append(bars, bar)
	}
	return bars
}

// Extent returns the lowest and highest edges over bars, always including
// zero.
func Extent(bars []Bar) (lo, hi float64) {
	for _, b := range bars {
		lo = math.Min(lo, b.Base)
		hi = math.Max(hi, b.Top())
	}
	return lo, hi
}

// FromReport builds the LMDI bridge: baseline total, one bar per factor and
// the comparison total.
func FromReport(r analysis.Report) []Bar {
	entries := make([]Entry, 0, len(r.Totals)+2)
	entries = append(entries, Entry{Name: r.BaselineLabel, Value: r.Before, Color: AnchorColor, Total: true})
	for _, t := range r.Totals {
		entries = append(entries, Entry{Name: t.Label, Value: t.Contribution, Color: colorOr(t.Color)})
	}
	entries = append(entries, Entry{Name: r.ComparisonLabel, Value: r.After, Color: AnchorColor, Total: true})
	return Build(entries)
}

// FromComparison builds the Laspeyres bridge, with the interaction residual
// as its own bar before the closing total.
func FromComparison(c analysis.Comparison) []Bar {
	entries := make([]Entry, 0, len(c.Factors)+3)
	entries = append(entries, Entry{Name: c.BaselineLabel, Value: c.Before, Color: AnchorColor, Total: true})
	for _, f := range c.Factors {
		entries = append(entries, Entry{Name: f.Label, Value: f.Laspeyres, Color: colorOr(f.Color)})
	}
	entries = append(entries,
		Entry{Name: "Residual", Value: c.LaspeyresResidual, Color: ResidualColor},
		Entry{Name: c.ComparisonLabel, Value: c.After, Color: AnchorColor, Total: true},
	)
	return Build(entries)
}

func colorOr(c string) string {
	if c == "" {
		return DefaultColor
	}
	return c
}
