// Package lmdi implements the Logarithmic Mean Divisia Index (LMDI-I)
// additive decomposition.
//
// An aggregate V = x1 * x2 * ... * xn observed in two periods is split into
// per-factor contributions that sum exactly to V1 - V0. Across several
// entities the per-factor contributions are summed, so the batch total still
// equals the change in the summed aggregates.
//
// The package is pure: no I/O, no logging, no retained state. Inputs are
// borrowed read-only and every result is freshly allocated.
package lmdi
