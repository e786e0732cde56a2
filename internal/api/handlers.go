package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lmdi-explainer/lmdi-go/internal/analysis"
	"github.com/lmdi-explainer/lmdi-go/internal/chart"
	"github.com/lmdi-explainer/lmdi-go/internal/domain"
	"github.com/lmdi-explainer/lmdi-go/internal/lmdi"
	"github.com/lmdi-explainer/lmdi-go/internal/scenario"
	"github.com/lmdi-explainer/lmdi-go/internal/uischema"
	"github.com/lmdi-explainer/lmdi-go/internal/waterfall"
)

const maxBodyBytes = 1 << 20

var tracer = otel.Tracer("github.com/lmdi-explainer/lmdi-go/internal/api")

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type logMeanRequest struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

func (s *Server) handleLogMean(w http.ResponseWriter, r *http.Request) {
	var req logMeanRequest
	if !decodeBody(w, r, &req) {
		return
	}
	v, err := lmdi.LogMean(req.A, req.B)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"value": v})
}

type decomposeRequest struct {
	Entities []lmdi.Entity `json:"entities"`
	// Strict fails on the first non-positive factor value instead of
	// zeroing its contribution.
	Strict bool `json:"strict,omitempty"`
}

type decomposeResponse struct {
	lmdi.Result
	Delta    float64 `json:"delta"`
	Residual float64 `json:"residual"`
}

func (s *Server) handleDecompose(w http.ResponseWriter, r *http.Request) {
	var req decomposeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, span := tracer.Start(r.Context(), "lmdi.Decompose",
		trace.WithAttributes(attribute.Int("entities", len(req.Entities)), attribute.Bool("strict", req.Strict)))
	defer span.End()

	start := time.Now()
	var (
		res lmdi.Result
		err error
	)
	if req.Strict {
		res, err = lmdi.DecomposeStrict(req.Entities)
	} else {
		res, err = lmdi.DecomposeParallel(ctx, req.Entities, s.workers)
	}
	if err != nil {
		span.RecordError(err)
		writeError(w, decomposeStatus(err), err.Error())
		return
	}
	s.otel.RecordDecomposition(ctx, "api", len(req.Entities), res, time.Since(start))
	s.prom.recordDecomposition("decompose", len(res.Skipped))

	writeJSON(w, http.StatusOK, decomposeResponse{Result: res, Delta: res.Delta(), Residual: res.Residual()})
}

func decomposeStatus(err error) int {
	switch {
	case errors.Is(err, lmdi.ErrFactorCountMismatch), errors.Is(err, lmdi.ErrVectorLength):
		return http.StatusBadRequest
	case errors.Is(err, lmdi.ErrInvalidDomain):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type simpleRequest struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

type simpleResponse struct {
	lmdi.SimpleResult
	Laspeyres lmdi.LaspeyresSimpleResult `json:"laspeyres"`
}

func (s *Server) handleSimple(w http.ResponseWriter, r *http.Request) {
	var req simpleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.prom.recordDecomposition("simple", 0)
	writeJSON(w, http.StatusOK, simpleResponse{
		SimpleResult: lmdi.Simple(req.X0, req.Y0, req.X1, req.Y1),
		Laspeyres:    lmdi.LaspeyresSimple(req.X0, req.Y0, req.X1, req.Y1),
	})
}

func (s *Server) handleListScenarios(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.source.List())
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.scenario(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

type reportResponse struct {
	View       string               `json:"view"`
	Method     string               `json:"method"`
	Report     analysis.Report      `json:"report"`
	Comparison *analysis.Comparison `json:"comparison,omitempty"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	sc, view, method, ok := s.scenarioQuery(w, r)
	if !ok {
		return
	}
	report, cmp, err := s.analyze(r.Context(), sc, method)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{
		View:       string(view),
		Method:     string(method),
		Report:     report,
		Comparison: cmp,
	})
}

func (s *Server) handleUI(w http.ResponseWriter, r *http.Request) {
	sc, view, method, ok := s.scenarioQuery(w, r)
	if !ok {
		return
	}
	report, cmp, err := s.analyze(r.Context(), sc, method)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, uischema.Build(report, view, cmp))
}

// handleWaterfall serves waterfall.svg and waterfall.png.
func (s *Server) handleWaterfall(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	base, ext, found := strings.Cut(file, ".")
	if !found || base != "waterfall" || (ext != chart.FormatSVG && ext != chart.FormatPNG) {
		writeError(w, http.StatusNotFound, "unknown resource "+file)
		return
	}
	sc, _, method, ok := s.scenarioQuery(w, r)
	if !ok {
		return
	}
	report, cmp, err := s.analyze(r.Context(), sc, method)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	bars := waterfall.FromReport(report)
	title := report.BaselineLabel + " to " + report.ComparisonLabel
	if cmp != nil {
		bars = waterfall.FromComparison(*cmp)
		title += " (Laspeyres)"
	}
	img, err := chart.Render(bars, chart.Options{Title: title, Format: ext})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", chart.ContentType(ext))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img); err != nil {
		slog.Warn("write chart", "scenario", sc.Name, "error", err)
	}
}

func (s *Server) scenario(w http.ResponseWriter, r *http.Request) (domain.Scenario, bool) {
	name := r.PathValue("name")
	sc, err := s.source.Get(name)
	if err != nil {
		if errors.Is(err, scenario.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return domain.Scenario{}, false
	}
	return sc, true
}

// scenarioQuery resolves the scenario plus the view and method query
// parameters.
func (s *Server) scenarioQuery(w http.ResponseWriter, r *http.Request) (domain.Scenario, domain.ViewMode, domain.Method, bool) {
	q := r.URL.Query()
	view, ok := domain.ParseViewMode(q.Get("view"))
	if !ok {
		writeError(w, http.StatusBadRequest, "view must be absolute or percent")
		return domain.Scenario{}, "", "", false
	}
	method, ok := domain.ParseMethod(q.Get("method"))
	if !ok {
		writeError(w, http.StatusBadRequest, "method must be lmdi or laspeyres")
		return domain.Scenario{}, "", "", false
	}
	sc, ok := s.scenario(w, r)
	if !ok {
		return domain.Scenario{}, "", "", false
	}
	return sc, view, method, true
}

// analyze builds the report, plus the Laspeyres comparison when asked for.
func (s *Server) analyze(ctx context.Context, sc domain.Scenario, method domain.Method) (analysis.Report, *analysis.Comparison, error) {
	ctx, span := tracer.Start(ctx, "analysis.Build",
		trace.WithAttributes(attribute.String("scenario", sc.Name), attribute.String("method", string(method))))
	defer span.End()

	start := time.Now()
	report, err := analysis.Build(ctx, sc, analysis.Options{Workers: s.workers})
	if err != nil {
		span.RecordError(err)
		return analysis.Report{}, nil, err
	}
	s.otel.RecordDecomposition(ctx, "scenario", len(sc.Segments), lmdi.Result{
		Contributions: report.Contributions(),
		Before:        report.Before,
		After:         report.After,
	}, time.Since(start))
	s.prom.recordDecomposition("scenario", 0)

	if method != domain.MethodLaspeyres {
		return report, nil, nil
	}
	cmp, err := analysis.Compare(sc)
	if err != nil {
		span.RecordError(err)
		return analysis.Report{}, nil, err
	}
	return report, &cmp, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
