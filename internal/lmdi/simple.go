package lmdi

// SimpleResult is the two-factor, single-entity decomposition of V = x * y.
type SimpleResult struct {
	DX    float64 `json:"dx"`
	DY    float64 `json:"dy"`
	Total float64 `json:"total"`
}

// Simple decomposes the change from x0*y0 to x1*y1. Total is the raw
// delta v1 - v0, so DX + DY can be checked against it.
func Simple(x0, y0, x1, y1 float64) SimpleResult {
	// One entity of fixed width cannot trip the shape checks.
	res, _ := Decompose([]Entity{{
		Before: FactorVector{x0, y0},
		After:  FactorVector{x1, y1},
	}})
	return SimpleResult{
		DX:    res.Contributions[0],
		DY:    res.Contributions[1],
		Total: res.Delta(),
	}
}
