// Package api serves the decomposition engine and scenario reports over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/lmdi-explainer/lmdi-go/internal/agui"
	"github.com/lmdi-explainer/lmdi-go/internal/observability"
	"github.com/lmdi-explainer/lmdi-go/internal/ratelimit"
	"github.com/lmdi-explainer/lmdi-go/internal/scenario"
)

// Options configures a Server.
type Options struct {
	Source      scenario.Source
	CORSOrigins []string
	OIDC        OIDCConfig
	// Limiter is optional; nil disables rate limiting.
	Limiter *ratelimit.ClientLimiter
	// Metrics is optional; nil skips OTel instruments.
	Metrics *observability.Metrics
	// Workers > 1 decomposes segments concurrently.
	Workers int
}

// Server is the HTTP API server for the LMDI explainer.
type Server struct {
	source  scenario.Source
	limiter *ratelimit.ClientLimiter
	otel    *observability.Metrics
	prom    *promMetrics
	workers int
	mux     *http.ServeMux
	handler http.Handler
}

// New creates a Server. When OIDC is enabled the issuer is discovered with
// ctx, so New fails if the issuer is unreachable.
func New(ctx context.Context, opts Options) (*Server, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("api: scenario source required")
	}
	s := &Server{
		source:  opts.Source,
		limiter: opts.Limiter,
		otel:    opts.Metrics,
		prom:    newPromMetrics(),
		workers: opts.Workers,
		mux:     http.NewServeMux(),
	}
	s.routes()

	var h http.Handler = s.prom.instrument(s.mux)
	if opts.OIDC.Enabled {
		provider, err := oidc.NewProvider(ctx, opts.OIDC.IssuerURL)
		if err != nil {
			return nil, fmt.Errorf("api: oidc discovery %s: %w", opts.OIDC.IssuerURL, err)
		}
		h = oidcAuth(provider, opts.OIDC.Audience)(h)
	}
	h = rateLimit(s.limiter, h)
	s.handler = requestID(logging(cors(opts.CORSOrigins, h)))
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/v1/logmean", s.handleLogMean)
	s.mux.HandleFunc("POST /api/v1/decompose", s.handleDecompose)
	s.mux.HandleFunc("POST /api/v1/simple", s.handleSimple)
	s.mux.HandleFunc("GET /api/v1/scenarios", s.handleListScenarios)
	s.mux.HandleFunc("GET /api/v1/scenarios/{name}", s.handleGetScenario)
	s.mux.HandleFunc("GET /api/v1/scenarios/{name}/report", s.handleReport)
	s.mux.HandleFunc("GET /api/v1/scenarios/{name}/ui", s.handleUI)
	s.mux.HandleFunc("GET /api/v1/scenarios/{name}/stream", agui.StreamHandler(s.source, s.analyze, agui.DefaultConfig()))
	s.mux.HandleFunc("GET /api/v1/scenarios/{name}/{file}", s.handleWaterfall)
	s.mux.Handle("GET /metrics", s.prom.handler())
}
