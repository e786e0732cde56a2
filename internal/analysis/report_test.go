package analysis_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmdi-explainer/lmdi-go/internal/analysis"
	"github.com/lmdi-explainer/lmdi-go/internal/domain"
	"github.com/lmdi-explainer/lmdi-go/internal/scenario"
)

func TestBuild_Revenue(t *testing.T) {
	t.Parallel()
	r, err := analysis.Build(context.Background(), scenario.Revenue(), analysis.Options{})
	require.NoError(t, err)

	require.Len(t, r.Rows, 6)
	require.Len(t, r.Totals, 4)
	assert.Equal(t, "revenue", r.Scenario)
	assert.Equal(t, "Scenario", r.BaselineLabel)
	assert.Equal(t, "Forecast", r.ComparisonLabel)
	assert.InDelta(t, 310_240_000, r.Before, 1e-3)
	assert.InDelta(t, 378_567_500, r.After, 1e-3)
	assert.InDelta(t, 68_327_500, r.Delta, 1e-3)
	assert.InDelta(t, 0, r.Residual, 1e-3)
	assert.Equal(t, "ipo", r.TopFactor)

	var segmentShares float64
	for _, row := range r.Rows {
		assert.InDelta(t, row.Delta, row.Check, 1e-3, row.Name)
		assert.InDelta(t, row.Delta/r.Delta*100, row.DeltaShare, 1e-9, row.Name)
		segmentShares += row.DeltaShare
	}
	assert.InDelta(t, 100, segmentShares, 1e-6)
	// Anonymous shrinks: 300000*0.8*1.5*65 -> 250000*0.7*1.4*70.
	assert.Less(t, r.Rows[5].DeltaShare, 0.0)

	var shares float64
	for _, tot := range r.Totals {
		shares += tot.Share
	}
	assert.InDelta(t, 100, shares, 1e-6)
	assert.Equal(t, "IPO", r.Totals[2].Label)
	assert.InDelta(t, 28_496_235.34, r.Totals[2].Contribution, 0.01)
}

func TestBuild_WorkersMatchSequential(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	seq, err := analysis.Build(ctx, scenario.Revenue(), analysis.Options{})
	require.NoError(t, err)
	par, err := analysis.Build(ctx, scenario.Revenue(), analysis.Options{Workers: 4})
	require.NoError(t, err)
	assert.Equal(t, seq, par)
}

func TestBuild_UsersPrice(t *testing.T) {
	t.Parallel()
	r, err := analysis.Build(context.Background(), scenario.UsersPrice(), analysis.Options{})
	require.NoError(t, err)

	assert.InDelta(t, 22_000, r.Delta, 1e-9)
	assert.InDelta(t, 20, r.DeltaPct, 1e-9)
	c := r.Contributions()
	require.Len(t, c, 2)
	assert.InDelta(t, 22_000, c[0]+c[1], 1e-9)
	assert.Greater(t, c[0], c[1])
	assert.Equal(t, "users", r.TopFactor)
}

func TestBuild_NoSegments(t *testing.T) {
	t.Parallel()
	s := domain.Scenario{
		Name:    "empty",
		Factors: []domain.Factor{{Key: "a"}, {Key: "b"}},
	}
	r, err := analysis.Build(context.Background(), s, analysis.Options{})
	require.NoError(t, err)
	assert.Empty(t, r.Rows)
	require.Len(t, r.Totals, 2)
	assert.Zero(t, r.Totals[0].Contribution)
	assert.Zero(t, r.Totals[0].Share)
	assert.Empty(t, r.TopFactor)
}

func TestBuild_InvalidScenario(t *testing.T) {
	t.Parallel()
	_, err := analysis.Build(context.Background(), domain.Scenario{Name: "x"}, analysis.Options{})
	require.Error(t, err)
}

func TestBuild_CancelledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := analysis.Build(ctx, scenario.Revenue(), analysis.Options{Workers: 2})
	require.ErrorIs(t, err, context.Canceled)
}

func TestCompare_UsersPrice(t *testing.T) {
	t.Parallel()
	cmp, err := analysis.Compare(scenario.UsersPrice())
	require.NoError(t, err)

	require.Len(t, cmp.Factors, 2)
	assert.InDelta(t, 10_000, cmp.Factors[0].Laspeyres, 1e-9)
	assert.InDelta(t, 10_000, cmp.Factors[1].Laspeyres, 1e-9)
	assert.InDelta(t, 2_000, cmp.LaspeyresResidual, 1e-9)
	assert.InDelta(t, 0, cmp.LMDIResidual, 1e-9)
	assert.InDelta(t, 22_000, cmp.Delta, 1e-9)
	assert.InDelta(t, 2_000.0/22_000*100, cmp.ResidualPct, 1e-9)
	assert.InDelta(t, 22_000, cmp.Factors[0].LMDI+cmp.Factors[1].LMDI, 1e-9)
}

func TestCompare_Revenue(t *testing.T) {
	t.Parallel()
	cmp, err := analysis.Compare(scenario.Revenue())
	require.NoError(t, err)
	assert.InDelta(t, 0, cmp.LMDIResidual, 1e-3)
	assert.NotZero(t, cmp.LaspeyresResidual)
}
