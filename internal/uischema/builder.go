package uischema

import (
	"github.com/lmdi-explainer/lmdi-go/internal/analysis"
	"github.com/lmdi-explainer/lmdi-go/internal/domain"
)

const schemaVersion = "v1"

// Build constructs a UISchema for a decomposition report. A non-nil cmp
// switches the method to Laspeyres and adds the comparison panel.
// The schema drives what the frontend renders -- no raw JSX from the backend.
func Build(r analysis.Report, view domain.ViewMode, cmp *analysis.Comparison) UISchema {
	if !view.Valid() {
		view = domain.ViewAbsolute
	}
	method := domain.MethodLMDI
	if cmp != nil {
		method = domain.MethodLaspeyres
	}

	schema := UISchema{
		Version:  schemaVersion,
		Scenario: r.Scenario,
		View:     string(view),
		Method:   string(method),
	}

	schema.Components = append(schema.Components,
		kpiCards(r),
		waterfallChart(r),
		decompositionTable(r, view),
		residualCheck(r),
	)
	if cmp != nil {
		schema.Components = append(schema.Components, methodComparison(*cmp))
	}

	schema.Actions = append(schema.Actions, toggleView(view), toggleMethod(method))
	return schema
}

func toggleView(current domain.ViewMode) Action {
	if current == domain.ViewPercent {
		return Action{Type: ActionToggleView, Label: "Show absolute values", Value: string(domain.ViewAbsolute)}
	}
	return Action{Type: ActionToggleView, Label: "Show percent of change", Value: string(domain.ViewPercent)}
}

func toggleMethod(current domain.Method) Action {
	if current == domain.MethodLaspeyres {
		return Action{Type: ActionToggleMethod, Label: "Back to LMDI", Value: string(domain.MethodLMDI)}
	}
	return Action{Type: ActionToggleMethod, Label: "Compare with Laspeyres", Value: string(domain.MethodLaspeyres)}
}
