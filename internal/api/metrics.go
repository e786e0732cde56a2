package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// promMetrics is a per-server registry so tests can build many servers.
type promMetrics struct {
	registry       *prometheus.Registry
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	decompositions *prometheus.CounterVec
	skipped        prometheus.Counter
}

func newPromMetrics() *promMetrics {
	m := &promMetrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lmdi_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lmdi_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		decompositions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lmdi_decompositions_total",
			Help: "Decomposition runs by endpoint.",
		}, []string{"endpoint"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lmdi_skipped_factors_total",
			Help: "Factor values outside the log-mean domain that contributed zero.",
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.decompositions,
		m.skipped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *promMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// instrument must wrap the mux directly: the mux records the matched
// pattern on the request it receives.
func (m *promMetrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (m *promMetrics) recordDecomposition(endpoint string, skipped int) {
	m.decompositions.WithLabelValues(endpoint).Inc()
	if skipped > 0 {
		m.skipped.Add(float64(skipped))
	}
}
