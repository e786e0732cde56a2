package lmdi

import (
	"fmt"
	"math"
)

// Epsilon is the absolute tolerance below which two values are treated as
// equal and the logarithmic mean collapses to its limit L(a, a) = a.
const Epsilon = 1e-10

// LogMean returns the logarithmic mean L(a, b) = (a - b) / (ln a - ln b),
// the unique weight for which a - b = L(a, b) * (ln a - ln b).
// It fails with ErrInvalidDomain when either input is not strictly positive.
func LogMean(a, b float64) (float64, error) {
	if !(a > 0) || !(b > 0) {
		return 0, fmt.Errorf("log mean of (%g, %g): %w", a, b, ErrInvalidDomain)
	}
	return logMean(a, b), nil
}

// LogMeanOrZero is LogMean with the graceful-degradation fallback: invalid
// inputs yield 0 instead of an error. Presentation code that must never
// fail opts into this explicitly.
func LogMeanOrZero(a, b float64) float64 {
	if !(a > 0) || !(b > 0) {
		return 0
	}
	return logMean(a, b)
}

// logMean assumes a > 0 and b > 0. The denominator is ln(hi/lo) taken
// through Log1p, so nearly equal inputs at large magnitude keep their
// precision; the result is clamped to [lo, hi] against rounding.
func logMean(a, b float64) float64 {
	if math.Abs(a-b) < Epsilon {
		return a
	}
	lo, hi := math.Min(a, b), math.Max(a, b)
	den := logRatio(hi, lo)
	if den == 0 {
		return a
	}
	return math.Min(math.Max((hi-lo)/den, lo), hi)
}

// logRatio returns ln(x1/x0) for positive x0 and x1, accurate when the two
// are within a few ulps of each other.
func logRatio(x1, x0 float64) float64 {
	return math.Log1p((x1 - x0) / x0)
}

// GeometricMean returns sqrt(a*b), the lower bound of L(a, b).
func GeometricMean(a, b float64) float64 {
	return math.Sqrt(a * b)
}

// ArithmeticMean returns (a+b)/2, the upper bound of L(a, b).
func ArithmeticMean(a, b float64) float64 {
	return (a + b) / 2
}
