package lmdi

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// FactorVector holds one period's factor values for one entity, in the
// batch-wide factor order.
type FactorVector []float64

// Product returns the aggregate value the vector represents.
func (v FactorVector) Product() float64 {
	return floats.Prod(v)
}

// Entity is one unit of aggregation observed in two periods.
type Entity struct {
	Before FactorVector `json:"before"`
	After  FactorVector `json:"after"`
}

// Skip marks a factor whose contribution was zeroed for one entity because
// one of its two values was not strictly positive.
type Skip struct {
	Entity int `json:"entity"`
	Factor int `json:"factor"`
}

// Result is the outcome of a decomposition run.
type Result struct {
	// Contributions[k] is factor k's contribution summed over all entities,
	// in the units of the aggregate.
	Contributions []float64 `json:"contributions"`
	// PerEntity[i][k] is factor k's contribution from entity i.
	PerEntity [][]float64 `json:"per_entity"`
	// Before and After are the summed entity aggregates.
	Before  float64 `json:"before"`
	After   float64 `json:"after"`
	Skipped []Skip  `json:"skipped,omitempty"`
}

// Delta returns the exact aggregate change After - Before.
func (r Result) Delta() float64 {
	return r.After - r.Before
}

// Sum returns the sum of all factor contributions.
func (r Result) Sum() float64 {
	return floats.Sum(r.Contributions)
}

// Residual returns Sum() - Delta(). It is zero up to rounding whenever no
// factor was skipped.
func (r Result) Residual() float64 {
	return r.Sum() - r.Delta()
}

// TopFactor returns the index of the contribution with the largest
// magnitude, or -1 for an empty result. Ties keep the lower index.
func (r Result) TopFactor() int {
	top := -1
	for k, c := range r.Contributions {
		if top < 0 || math.Abs(c) > math.Abs(r.Contributions[top]) {
			top = k
		}
	}
	return top
}

// Decompose runs the LMDI additive decomposition over a batch of entities.
//
// The factor count is taken from the first entity and every entity must
// match it; a mismatch fails with ErrFactorCountMismatch or ErrVectorLength.
// A factor with a non-positive value in either period contributes 0 for
// that entity and is listed in Result.Skipped. An empty batch yields an
// empty result.
func Decompose(entities []Entity) (Result, error) {
	n, err := factorCount(entities)
	if err != nil {
		return Result{}, err
	}
	res := newResult(n, len(entities))
	for i, e := range entities {
		c, skipped := decomposeEntity(i, e, n)
		res.add(e, c, skipped)
	}
	return res, nil
}

// Contributions returns only the per-factor totals of Decompose.
func Contributions(entities []Entity) ([]float64, error) {
	res, err := Decompose(entities)
	if err != nil {
		return nil, err
	}
	return res.Contributions, nil
}

// DecomposeStrict is Decompose without the zero fallback: any factor value
// that is not strictly positive fails with a *DomainError.
func DecomposeStrict(entities []Entity) (Result, error) {
	if _, err := factorCount(entities); err != nil {
		return Result{}, err
	}
	for i, e := range entities {
		for k := range e.Before {
			if !(e.Before[k] > 0) {
				return Result{}, &DomainError{Entity: i, Factor: k, Period: PeriodBefore, Value: e.Before[k]}
			}
			if !(e.After[k] > 0) {
				return Result{}, &DomainError{Entity: i, Factor: k, Period: PeriodAfter, Value: e.After[k]}
			}
		}
	}
	return Decompose(entities)
}

// DecomposeParallel computes per-entity contributions on up to workers
// goroutines and reduces them in entity order, so the result is identical
// to Decompose. workers <= 1 runs sequentially.
func DecomposeParallel(ctx context.Context, entities []Entity, workers int) (Result, error) {
	n, err := factorCount(entities)
	if err != nil {
		return Result{}, err
	}
	if workers <= 1 || len(entities) < 2 {
		return Decompose(entities)
	}

	type part struct {
		contrib []float64
		skipped []Skip
	}
	parts := make([]part, len(entities))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range entities {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, s := decomposeEntity(i, entities[i], n)
			parts[i] = part{contrib: c, skipped: s}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("decompose: %w", err)
	}

	res := newResult(n, len(entities))
	for i, p := range parts {
		res.add(entities[i], p.contrib, p.skipped)
	}
	return res, nil
}

func factorCount(entities []Entity) (int, error) {
	if len(entities) == 0 {
		return 0, nil
	}
	n := len(entities[0].Before)
	for i, e := range entities {
		if len(e.Before) != len(e.After) {
			return 0, fmt.Errorf("entity %d has %d before and %d after values: %w",
				i, len(e.Before), len(e.After), ErrVectorLength)
		}
		if len(e.Before) != n {
			return 0, fmt.Errorf("entity %d has %d factors, entity 0 has %d: %w",
				i, len(e.Before), n, ErrFactorCountMismatch)
		}
	}
	return n, nil
}

func newResult(factors, entities int) Result {
	return Result{
		Contributions: make([]float64, factors),
		PerEntity:     make([][]float64, 0, entities),
	}
}

func (r *Result) add(e Entity, contrib []float64, skipped []Skip) {
	r.Before += e.Before.Product()
	r.After += e.After.Product()
	for k, c := range contrib {
		r.Contributions[k] += c
	}
	r.PerEntity = append(r.PerEntity, contrib)
	r.Skipped = append(r.Skipped, skipped...)
}

// decomposeEntity returns entity idx's contribution vector. The entity
// weight L(V1, V0) is shared by all of its factors.
func decomposeEntity(idx int, e Entity, n int) ([]float64, []Skip) {
	w := LogMeanOrZero(e.After.Product(), e.Before.Product())
	contrib := make([]float64, n)
	var skipped []Skip
	for k := 0; k < n; k++ {
		x0, x1 := e.Before[k], e.After[k]
		if !(x0 > 0) || !(x1 > 0) {
			skipped = append(skipped, Skip{Entity: idx, Factor: k})
			continue
		}
		contrib[k] = w * logRatio(x1, x0)
	}
	return contrib, skipped
}
