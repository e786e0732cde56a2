// Command mcp-lmdi runs the MCP tool server for LMDI decompositions.
// Uses stdio transport for integration with AI assistants, so logs go to
// stderr.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lmdi-explainer/lmdi-go/internal/config"
	"github.com/lmdi-explainer/lmdi-go/internal/mcpserver"
	"github.com/lmdi-explainer/lmdi-go/internal/observability"
	"github.com/lmdi-explainer/lmdi-go/internal/scenario"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}
	logger := observability.InitLoggerTo(os.Stderr, cfg.LogLevel)

	catalog := scenario.Builtin()
	if cfg.ScenarioDir != "" {
		if _, err := catalog.LoadDir(cfg.ScenarioDir); err != nil {
			logger.Error("load scenarios", "dir", cfg.ScenarioDir, "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "lmdi-explainer",
		Version: "v0.3.0",
	}, nil)
	mcpserver.RegisterTools(server, catalog, mcpserver.Options{Workers: cfg.Workers})

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
