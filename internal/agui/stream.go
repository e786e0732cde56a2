package agui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lmdi-explainer/lmdi-go/internal/analysis"
	"github.com/lmdi-explainer/lmdi-go/internal/domain"
	"github.com/lmdi-explainer/lmdi-go/internal/scenario"
	"github.com/lmdi-explainer/lmdi-go/internal/uischema"
)

// StreamConfig controls SSE stream behavior.
type StreamConfig struct {
	// StepDelay paces the per-segment deltas so a UI can animate the
	// table filling in. Zero sends them back to back.
	StepDelay   time.Duration
	MaxDuration time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() StreamConfig {
	return StreamConfig{
		StepDelay:   0,
		MaxDuration: 30 * time.Second,
	}
}

// AnalyzeFunc builds the report for a scenario, plus the Laspeyres
// comparison when method asks for it.
type AnalyzeFunc func(ctx context.Context, sc domain.Scenario, method domain.Method) (analysis.Report, *analysis.Comparison, error)

// StreamHandler serves a scenario run as SSE events: run and step
// boundaries, one STATE_DELTA per decomposed segment, then a snapshot of
// the report with its UI schema.
func StreamHandler(src scenario.Source, analyze AnalyzeFunc, cfg StreamConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		if name == "" {
			http.Error(w, "scenario name required", http.StatusBadRequest)
			return
		}
		q := r.URL.Query()
		view, ok := domain.ParseViewMode(q.Get("view"))
		if !ok {
			http.Error(w, "view must be absolute or percent", http.StatusBadRequest)
			return
		}
		method, ok := domain.ParseMethod(q.Get("method"))
		if !ok {
			http.Error(w, "method must be lmdi or laspeyres", http.StatusBadRequest)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		ctx, cancel := context.WithTimeout(r.Context(), cfg.MaxDuration)
		defer cancel()

		e := emitter{w: w, flusher: flusher, runID: uuid.NewString(), scenario: name}
		e.send(EventRunStarted, nil)

		e.send(EventStepStarted, StepData{Step: StepResolve})
		sc, err := src.Get(name)
		if err != nil {
			e.send(EventRunError, ErrorData{Message: err.Error()})
			return
		}
		e.send(EventStepFinished, StepData{Step: StepResolve})

		e.send(EventStepStarted, StepData{Step: StepDecompose})
		report, cmp, err := analyze(ctx, sc, method)
		if err != nil {
			e.send(EventRunError, ErrorData{Message: err.Error()})
			return
		}
		for i, row := range report.Rows {
			if !pause(ctx, cfg.StepDelay) {
				e.send(EventRunError, ErrorData{Message: ctx.Err().Error()})
				return
			}
			e.send(EventStateDelta, StateDeltaData{
				Step:    StepDecompose,
				Patches: segmentPatches(i, row),
			})
		}
		e.send(EventStepFinished, StepData{Step: StepDecompose})

		e.send(EventStepStarted, StepData{Step: StepRender})
		e.send(EventStateSnapshot, StateSnapshotData{
			State:    report,
			UISchema: uischema.Build(report, view, cmp),
		})
		e.send(EventStepFinished, StepData{Step: StepRender})

		e.send(EventRunFinished, FinishedData{
			Reason:    "completed",
			Segments:  len(report.Rows),
			TopFactor: report.TopFactor,
		})
	}
}

// segmentPatches adds row i and advances the progress counter.
func segmentPatches(i int, row analysis.SegmentRow) []Patch {
	return []Patch{
		{Op: "add", Path: fmt.Sprintf("/rows/%d", i), Value: row},
		{Op: "replace", Path: "/progress", Value: i + 1},
	}
}

// pause waits d, returning false if ctx ends first.
func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

type emitter struct {
	w        http.ResponseWriter
	flusher  http.Flusher
	runID    string
	scenario string
}

func (e emitter) send(t EventType, data any) {
	writeSSE(e.w, e.flusher, Event{
		Type:      t,
		Timestamp: time.Now().UTC(),
		RunID:     e.runID,
		Scenario:  e.scenario,
		Data:      data,
	})
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
	flusher.Flush()
}
