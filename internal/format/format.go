// Package format renders monetary and percentage values the way the
// explainer displays them.
package format

import (
	"fmt"
	"math"
)

// Currency formats v with a dollar sign and a B, M or k suffix:
// $1.23B, $4.5M, $12k, $7. Negative values carry a leading minus.
func Currency(v float64) string {
	if v < 0 {
		return "-$" + scaled(-v, "k")
	}
	return "$" + scaled(v, "k")
}

// Compact is Currency without the dollar sign and with an upper-case K,
// used for axis ticks.
func Compact(v float64) string {
	if v < 0 {
		return "-" + scaled(-v, "K")
	}
	return scaled(v, "K")
}

// Signed is Currency with an explicit plus sign for positive values.
func Signed(v float64) string {
	if v > 0 {
		return "+" + Currency(v)
	}
	return Currency(v)
}

// Percent formats a percentage with one decimal and an explicit sign.
func Percent(v float64) string {
	if math.Abs(v) < 0.05 {
		return "0.0%"
	}
	return fmt.Sprintf("%+.1f%%", v)
}

func scaled(v float64, thousands string) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.0f%s", v/1e3, thousands)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
