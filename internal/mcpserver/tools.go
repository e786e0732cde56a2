// Package mcpserver exposes the decomposition engine and scenario reports
// via MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lmdi-explainer/lmdi-go/internal/analysis"
	"github.com/lmdi-explainer/lmdi-go/internal/domain"
	"github.com/lmdi-explainer/lmdi-go/internal/lmdi"
	"github.com/lmdi-explainer/lmdi-go/internal/observability"
	"github.com/lmdi-explainer/lmdi-go/internal/scenario"
	"github.com/lmdi-explainer/lmdi-go/internal/uischema"
)

// Options tunes the registered tools.
type Options struct {
	Workers int
	Metrics *observability.Metrics
}

// RegisterTools registers all LMDI MCP tools on the given server.
func RegisterTools(server *mcp.Server, src scenario.Source, opts Options) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "log_mean",
			Description: "Logarithmic mean L(a, b) = (a - b) / (ln a - ln b) of two positive numbers",
		},
		logMeanHandler(),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "lmdi_decompose",
			Description: "LMDI-I additive decomposition of a batch of entities, each a before/after factor vector whose product is the entity value",
		},
		decomposeHandler(opts),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "lmdi_simple",
			Description: "Split the change from x0*y0 to x1*y1 into an x effect and a y effect, optionally with the Laspeyres split for comparison",
		},
		simpleHandler(),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "list_scenarios",
			Description: "List the scenarios available for reports",
		},
		listScenariosHandler(src),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "scenario_report",
			Description: "Per-segment and per-factor decomposition report for a named scenario",
		},
		scenarioReportHandler(src, opts),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "scenario_ui",
			Description: "Get UI schema (components + actions) for rendering a scenario report",
		},
		scenarioUIHandler(src, opts),
	)
}

type logMeanInput struct {
	A float64 `json:"a" jsonschema:"first positive value"`
	B float64 `json:"b" jsonschema:"second positive value"`
}

func logMeanHandler() mcp.ToolHandlerFor[logMeanInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input logMeanInput) (*mcp.CallToolResult, any, error) {
		v, err := lmdi.LogMean(input.A, input.B)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return textResult(map[string]float64{"value": v})
	}
}

type decomposeInput struct {
	Entities []lmdi.Entity `json:"entities" jsonschema:"entities with before and after factor vectors of equal length"`
	Strict   bool          `json:"strict,omitempty" jsonschema:"fail on non-positive factor values instead of zeroing them"`
}

type decomposeOutput struct {
	lmdi.Result
	Delta    float64 `json:"delta"`
	Residual float64 `json:"residual"`
}

func decomposeHandler(opts Options) mcp.ToolHandlerFor[decomposeInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input decomposeInput) (*mcp.CallToolResult, any, error) {
		start := time.Now()
		var (
			res lmdi.Result
			err error
		)
		if input.Strict {
			res, err = lmdi.DecomposeStrict(input.Entities)
		} else {
			res, err = lmdi.DecomposeParallel(ctx, input.Entities, opts.Workers)
		}
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, nil, fmt.Errorf("lmdi_decompose: %w", err)
		case err != nil:
			return errorResult(err.Error()), nil, nil
		}
		opts.Metrics.RecordDecomposition(ctx, "mcp", len(input.Entities), res, time.Since(start))
		return textResult(decomposeOutput{Result: res, Delta: res.Delta(), Residual: res.Residual()})
	}
}

type simpleInput struct {
	X0        float64 `json:"x0"`
	Y0        float64 `json:"y0"`
	X1        float64 `json:"x1"`
	Y1        float64 `json:"y1"`
	Laspeyres bool    `json:"laspeyres,omitempty" jsonschema:"include the Laspeyres split and its residual"`
}

type simpleOutput struct {
	lmdi.SimpleResult
	Laspeyres *lmdi.LaspeyresSimpleResult `json:"laspeyres,omitempty"`
}

func simpleHandler() mcp.ToolHandlerFor[simpleInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input simpleInput) (*mcp.CallToolResult, any, error) {
		out := simpleOutput{SimpleResult: lmdi.Simple(input.X0, input.Y0, input.X1, input.Y1)}
		if input.Laspeyres {
			lp := lmdi.LaspeyresSimple(input.X0, input.Y0, input.X1, input.Y1)
			out.Laspeyres = &lp
		}
		return textResult(out)
	}
}

type emptyInput struct{}

func listScenariosHandler(src scenario.Source) mcp.ToolHandlerFor[emptyInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
		return textResult(src.List())
	}
}

type scenarioInput struct {
	Name   string `json:"name,omitempty" jsonschema:"scenario name from list_scenarios"`
	View   string `json:"view,omitempty" jsonschema:"absolute (default) or percent"`
	Method string `json:"method,omitempty" jsonschema:"lmdi (default) or laspeyres to add the comparison"`
}

type reportOutput struct {
	View       string               `json:"view"`
	Method     string               `json:"method"`
	Report     analysis.Report      `json:"report"`
	Comparison *analysis.Comparison `json:"comparison,omitempty"`
}

func scenarioReportHandler(src scenario.Source, opts Options) mcp.ToolHandlerFor[scenarioInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input scenarioInput) (*mcp.CallToolResult, any, error) {
		view, method, report, cmp, msg := analyze(ctx, src, opts, input)
		if msg != "" {
			return errorResult(msg), nil, nil
		}
		return textResult(reportOutput{View: string(view), Method: string(method), Report: report, Comparison: cmp})
	}
}

func scenarioUIHandler(src scenario.Source, opts Options) mcp.ToolHandlerFor[scenarioInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input scenarioInput) (*mcp.CallToolResult, any, error) {
		view, _, report, cmp, msg := analyze(ctx, src, opts, input)
		if msg != "" {
			return errorResult(msg), nil, nil
		}
		return textResult(uischema.Build(report, view, cmp))
	}
}

// analyze resolves input and builds the report. A non-empty msg is a tool
// error for the caller.
func analyze(ctx context.Context, src scenario.Source, opts Options, input scenarioInput) (
	view domain.ViewMode, method domain.Method, report analysis.Report, cmp *analysis.Comparison, msg string,
) {
	if input.Name == "" {
		return "", "", analysis.Report{}, nil, "name is required"
	}
	view, ok := domain.ParseViewMode(input.View)
	if !ok {
		return "", "", analysis.Report{}, nil, fmt.Sprintf("unknown view %q: use absolute or percent", input.View)
	}
	method, ok = domain.ParseMethod(input.Method)
	if !ok {
		return "", "", analysis.Report{}, nil, fmt.Sprintf("unknown method %q: use lmdi or laspeyres", input.Method)
	}
	sc, err := src.Get(input.Name)
	if err != nil {
		return "", "", analysis.Report{}, nil, err.Error()
	}

	start := time.Now()
	report, err = analysis.Build(ctx, sc, analysis.Options{Workers: opts.Workers})
	if err != nil {
		return "", "", analysis.Report{}, nil, err.Error()
	}
	opts.Metrics.RecordDecomposition(ctx, "mcp", len(sc.Segments), lmdi.Result{
		Contributions: report.Contributions(),
		Before:        report.Before,
		After:         report.After,
	}, time.Since(start))

	if method == domain.MethodLaspeyres {
		c, err := analysis.Compare(sc)
		if err != nil {
			return "", "", analysis.Report{}, nil, err.Error()
		}
		cmp = &c
	}
	return view, method, report, cmp, ""
}

func textResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshal result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
