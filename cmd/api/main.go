// Command api runs the HTTP API server for the LMDI explainer.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/lmdi-explainer/lmdi-go/internal/api"
	"github.com/lmdi-explainer/lmdi-go/internal/config"
	"github.com/lmdi-explainer/lmdi-go/internal/observability"
	"github.com/lmdi-explainer/lmdi-go/internal/ratelimit"
	"github.com/lmdi-explainer/lmdi-go/internal/scenario"
)

const version = "v0.3.0"

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTelEnabled {
		shutdown, err := observability.InitTracer(ctx, "lmdi-api", version)
		if err != nil {
			logger.Error("otel init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	metrics, err := observability.NewMetrics(otel.Meter(observability.TracerName))
	if err != nil {
		logger.Error("metrics init failed", "error", err)
		os.Exit(1)
	}

	catalog := scenario.Builtin()
	if cfg.ScenarioDir != "" {
		n, err := catalog.LoadDir(cfg.ScenarioDir)
		if err != nil {
			logger.Error("load scenarios", "dir", cfg.ScenarioDir, "error", err)
			os.Exit(1)
		}
		logger.Info("loaded scenarios", "dir", cfg.ScenarioDir, "count", n)
	}

	oidcCfg := api.OIDCConfig{
		IssuerURL: cfg.OIDCIssuer,
		Audience:  cfg.OIDCAudience,
		Enabled:   cfg.OIDCEnabled(),
	}
	srv, err := api.New(ctx, api.Options{
		Source:      catalog,
		CORSOrigins: cfg.CORSOrigins,
		OIDC:        oidcCfg,
		Limiter:     ratelimit.NewClientLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Metrics:     metrics,
		Workers:     cfg.Workers,
	})
	if err != nil {
		logger.Error("api init failed", "error", err)
		os.Exit(1)
	}

	var handler http.Handler = srv
	if cfg.OTelEnabled {
		handler = otelhttp.NewHandler(handler, "lmdi-api")
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting API server", "addr", httpServer.Addr, "oidc_enabled", oidcCfg.Enabled, "workers", cfg.Workers)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("API server stopped")
}
