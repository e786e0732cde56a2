package uischema_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmdi-explainer/lmdi-go/internal/analysis"
	"github.com/lmdi-explainer/lmdi-go/internal/domain"
	"github.com/lmdi-explainer/lmdi-go/internal/scenario"
	"github.com/lmdi-explainer/lmdi-go/internal/uischema"
	"github.com/lmdi-explainer/lmdi-go/internal/waterfall"
)

func revenueReport(t *testing.T) analysis.Report {
	t.Helper()
	r, err := analysis.Build(context.Background(), scenario.Revenue(), analysis.Options{})
	require.NoError(t, err)
	return r
}

func TestBuild_AbsoluteView(t *testing.T) {
	schema := uischema.Build(revenueReport(t), domain.ViewAbsolute, nil)

	assert.Equal(t, "v1", schema.Version)
	assert.Equal(t, "revenue", schema.Scenario)
	assert.Equal(t, "absolute", schema.View)
	assert.Equal(t, "lmdi", schema.Method)
	require.Len(t, schema.Components, 4)
	assert.Equal(t, uischema.ComponentKPICards, schema.Components[0].Type)
	assert.Equal(t, uischema.ComponentWaterfallChart, schema.Components[1].Type)
	assert.Equal(t, uischema.ComponentDecompositionTable, schema.Components[2].Type)
	assert.Equal(t, uischema.ComponentResidualCheck, schema.Components[3].Type)

	require.Len(t, schema.Actions, 2)
	assert.Equal(t, uischema.ActionToggleView, schema.Actions[0].Type)
	assert.Equal(t, "percent", schema.Actions[0].Value)
	assert.Equal(t, uischema.ActionToggleMethod, schema.Actions[1].Type)
	assert.Equal(t, "laspeyres", schema.Actions[1].Value)
}

func TestBuild_KPICards(t *testing.T) {
	schema := uischema.Build(revenueReport(t), domain.ViewAbsolute, nil)
	kpi := schema.Components[0].Data
	assert.Equal(t, "ipo", kpi["top_factor"])
	assert.Equal(t, "$310.2M", kpi["before_text"])
	assert.Equal(t, "$378.6M", kpi["after_text"])
	assert.Equal(t, "+$68.3M", kpi["delta_text"])
}

func TestBuild_PercentViewUsesShares(t *testing.T) {
	r := revenueReport(t)
	schema := uischema.Build(r, domain.ViewPercent, nil)
	assert.Equal(t, "percent", schema.View)
	assert.Equal(t, "absolute", schema.Actions[0].Value)

	table := schema.Components[2].Data
	totals, ok := table["totals"].([]float64)
	require.True(t, ok)
	var sum float64
	for _, v := range totals {
		sum += v
	}
	assert.InDelta(t, 100, sum, 1e-6)

	rows, ok := table["rows"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, rows, 6)
	assert.Equal(t, r.Rows[0].Shares, rows[0]["values"])
}

func TestBuild_InvalidViewFallsBackToAbsolute(t *testing.T) {
	schema := uischema.Build(revenueReport(t), domain.ViewMode("sideways"), nil)
	assert.Equal(t, "absolute", schema.View)
}

func TestBuild_ResidualCheckCollapsedWhenClean(t *testing.T) {
	schema := uischema.Build(revenueReport(t), domain.ViewAbsolute, nil)
	check := schema.Components[3]
	assert.Equal(t, uischema.VisibilityCollapsed, check.Visibility)
	assert.Equal(t, true, check.Data["ok"])
}

func TestBuild_ResidualCheckVisibleWhenOff(t *testing.T) {
	r := revenueReport(t)
	r.Residual = 1000
	schema := uischema.Build(r, domain.ViewAbsolute, nil)
	check := schema.Components[3]
	assert.Equal(t, uischema.VisibilityVisible, check.Visibility)
	assert.Equal(t, false, check.Data["ok"])
}

func TestBuild_WithComparison(t *testing.T) {
	s := scenario.UsersPrice()
	r, err := analysis.Build(context.Background(), s, analysis.Options{})
	require.NoError(t, err)
	cmp, err := analysis.Compare(s)
	require.NoError(t, err)

	schema := uischema.Build(r, domain.ViewAbsolute, &cmp)
	assert.Equal(t, "laspeyres", schema.Method)
	require.Len(t, schema.Components, 5)
	mc := schema.Components[4]
	assert.Equal(t, uischema.ComponentMethodComparison, mc.Type)
	assert.InDelta(t, 2000, mc.Data["laspeyres_residual"], 1e-9)
	bars, ok := mc.Data["bars"].([]waterfall.Bar)
	require.True(t, ok)
	assert.Len(t, bars, 5)
	assert.Equal(t, "lmdi", schema.Actions[1].Value)
}

func TestBuild_JSONShape(t *testing.T) {
	schema := uischema.Build(revenueReport(t), domain.ViewAbsolute, nil)
	raw, err := json.Marshal(schema)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "v1", decoded["ui_schema_version"])
	assert.Contains(t, decoded, "components")
	assert.Contains(t, decoded, "actions")
}
