package observability

import (
	"context"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/lmdi-explainer/lmdi-go/internal/lmdi"
)

// Metrics holds OTel metric instruments for decomposition runs.
type Metrics struct {
	Decompositions metric.Int64Counter
	Entities       metric.Int64Counter
	SkippedFactors metric.Int64Counter
	ResidualAbs    metric.Float64Histogram
	Duration       metric.Float64Histogram
}

// NewMetrics creates the decomposition instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	decompositions, err := meter.Int64Counter("lmdi.decompositions",
		metric.WithDescription("Number of decomposition runs"),
	)
	if err != nil {
		return nil, err
	}

	entities, err := meter.Int64Counter("lmdi.entities",
		metric.WithDescription("Entities decomposed"),
	)
	if err != nil {
		return nil, err
	}

	skipped, err := meter.Int64Counter("lmdi.skipped_factors",
		metric.WithDescription("Factor values outside the log-mean domain that contributed zero"),
	)
	if err != nil {
		return nil, err
	}

	residual, err := meter.Float64Histogram("lmdi.residual_abs",
		metric.WithDescription("Absolute gap between summed contributions and the aggregate change"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("lmdi.duration_seconds",
		metric.WithDescription("Decomposition wall time"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		Decompositions: decompositions,
		Entities:       entities,
		SkippedFactors: skipped,
		ResidualAbs:    residual,
		Duration:       duration,
	}, nil
}

// RecordDecomposition records one run. It is a no-op on a nil receiver.
func (m *Metrics) RecordDecomposition(ctx context.Context, source string, entities int, res lmdi.Result, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("source", source))
	m.Decompositions.Add(ctx, 1, attrs)
	m.Entities.Add(ctx, int64(entities), attrs)
	if len(res.Skipped) > 0 {
		m.SkippedFactors.Add(ctx, int64(len(res.Skipped)), attrs)
	}
	m.ResidualAbs.Record(ctx, math.Abs(res.Residual()), attrs)
	m.Duration.Record(ctx, d.Seconds(), attrs)
}
