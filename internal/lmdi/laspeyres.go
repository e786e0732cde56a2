package lmdi

import "gonum.org/v1/gonum/floats"

// LaspeyresResult is the one-at-a-time decomposition: each factor moves
// from its base value while the others stay at theirs. The interaction
// terms it cannot attribute are left in Residual.
type LaspeyresResult struct {
	Effects  []float64 `json:"effects"`
	Residual float64   `json:"residual"`
	Before   float64   `json:"before"`
	After    float64   `json:"after"`
}

// Delta returns After - Before.
func (r LaspeyresResult) Delta() float64 {
	return r.After - r.Before
}

// Laspeyres computes base-period effects (x1k - x0k) * prod_{j!=k} x0j per
// entity, summed per factor, with Residual = Delta - sum(Effects).
func Laspeyres(entities []Entity) (LaspeyresResult, error) {
	n, err := factorCount(entities)
	if err != nil {
		return LaspeyresResult{}, err
	}
	res := LaspeyresResult{Effects: make([]float64, n)}
	for _, e := range entities {
		res.Before += e.Before.Product()
		res.After += e.After.Product()
		for k := 0; k < n; k++ {
			others := 1.0
			for j, x := range e.Before {
				if j != k {
					others *= x
				}
			}
			res.Effects[k] += (e.After[k] - e.Before[k]) * others
		}
	}
	res.Residual = res.Delta() - floats.Sum(res.Effects)
	return res, nil
}

// LaspeyresSimpleResult is the two-factor Laspeyres split of V = x * y.
type LaspeyresSimpleResult struct {
	DX       float64 `json:"dx"`
	DY       float64 `json:"dy"`
	Residual float64 `json:"residual"`
	Total    float64 `json:"total"`
}

// LaspeyresSimple splits x0*y0 -> x1*y1 into (x1-x0)*y0, x0*(y1-y0) and
// the residual, which equals (x1-x0)*(y1-y0) up to rounding.
func LaspeyresSimple(x0, y0, x1, y1 float64) LaspeyresSimpleResult {
	res, _ := Laspeyres([]Entity{{
		Before: FactorVector{x0, y0},
		After:  FactorVector{x1, y1},
	}})
	return LaspeyresSimpleResult{
		DX:       res.Effects[0],
		DY:       res.Effects[1],
		Residual: res.Residual,
		Total:    res.Delta(),
	}
}
