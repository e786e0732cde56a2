// Package uischema defines the typed UI contract emitted by the backend.
// The frontend renders dynamic components based on this schema -- it never
// decides what to show on its own.
package uischema

// UISchema is the top-level schema the backend emits for a scenario report.
type UISchema struct {
	Version    string      `json:"ui_schema_version"`
	Scenario   string      `json:"scenario"`
	View       string      `json:"view"`
	Method     string      `json:"method"`
	Components []Component `json:"components"`
	Actions    []Action    `json:"actions"`
}

// ComponentType identifies what React component to render.
type ComponentType string

const (
	ComponentKPICards           ComponentType = "kpi_cards"
	ComponentWaterfallChart     ComponentType = "waterfall_chart"
	ComponentDecompositionTable ComponentType = "decomposition_table"
	ComponentResidualCheck      ComponentType = "residual_check"
	ComponentMethodComparison   ComponentType = "method_comparison"
)

// Visibility controls component rendering.
type Visibility string

const (
	VisibilityVisible   Visibility = "visible"
	VisibilityHidden    Visibility = "hidden"
	VisibilityCollapsed Visibility = "collapsed"
)

// Component is a single renderable UI element.
type Component struct {
	Type       ComponentType  `json:"type"`
	Title      string         `json:"title"`
	Priority   int            `json:"priority"`
	Visibility Visibility     `json:"visibility"`
	Data       map[string]any `json:"data,omitempty"`
}

// ActionUIType classifies the user-facing action.
type ActionUIType string

const (
	ActionToggleView   ActionUIType = "toggle_view"
	ActionToggleMethod ActionUIType = "toggle_method"
)

// ConfirmConfig describes confirmation requirements for an action.
type ConfirmConfig struct {
	Required        bool   `json:"required"`
	AcknowledgeText string `json:"acknowledge_text,omitempty"`
}

// Action is a user-triggerable operation from the UI. Value is the state
// the action switches to.
type Action struct {
	Type    ActionUIType   `json:"type"`
	Label   string         `json:"label"`
	Value   string         `json:"value,omitempty"`
	Confirm *ConfirmConfig `json:"confirm,omitempty"`
}
