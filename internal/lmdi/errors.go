package lmdi

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDomain is returned when a logarithm would be taken of a
	// non-positive value.
	ErrInvalidDomain = errors.New("lmdi: value must be strictly positive")

	// ErrFactorCountMismatch is returned when entities in one batch disagree
	// on the number of factors.
	ErrFactorCountMismatch = errors.New("lmdi: factor count mismatch")

	// ErrVectorLength is returned when an entity's before and after vectors
	// differ in length.
	ErrVectorLength = errors.New("lmdi: before/after length mismatch")
)

// Period identifies which side of an entity snapshot a value came from.
type Period string

const (
	PeriodBefore Period = "before"
	PeriodAfter  Period = "after"
)

// DomainError pinpoints a non-positive factor value.
type DomainError struct {
	Entity int
	Factor int
	Period Period
	Value  float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("lmdi: entity %d factor %d (%s) = %g: value must be strictly positive",
		e.Entity, e.Factor, e.Period, e.Value)
}

func (e *DomainError) Unwrap() error { return ErrInvalidDomain }
