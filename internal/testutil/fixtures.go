// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"path/filepath"
	"runtime"

	"github.com/lmdi-explainer/lmdi-go/internal/lmdi"
)

// ScenarioDir returns the absolute path to the scenario fixture directory.
func ScenarioDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "testdata", "scenarios")
}

// ScenarioFile returns the absolute path to a named scenario fixture.
func ScenarioFile(name string) string {
	return filepath.Join(ScenarioDir(), name)
}

// FourFactorBatch is a two-entity batch whose aggregates move 29 -> 58.
// Factor 0 contributes 24 and factor 3 contributes 5; factors 1 and 2 are
// unchanged.
func FourFactorBatch() []lmdi.Entity {
	return []lmdi.Entity{
		{Before: lmdi.FactorVector{1, 2, 3, 4}, After: lmdi.FactorVector{2, 2, 3, 4}},
		{Before: lmdi.FactorVector{5, 1, 1, 1}, After: lmdi.FactorVector{5, 1, 1, 2}},
	}
}
