package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lmdi-explainer/lmdi-go/internal/domain"
	"github.com/lmdi-explainer/lmdi-go/internal/observability"
	"github.com/lmdi-explainer/lmdi-go/internal/scenario"
)

type rootOptions struct {
	logLevel    string
	scenarioDir string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "lmdi",
		Short: "Explain aggregate changes with the LMDI decomposition",
		Long: `lmdi splits the change of a product-form aggregate, V = x1 * x2 * ... * xn,
summed over segments, into per-factor contributions that add up exactly.

Examples:
  lmdi logmean 48 24
  lmdi simple 1000 50 1200 60 --laspeyres
  lmdi decompose --scenario revenue --view percent
  lmdi chart --scenario revenue --out revenue.svg`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			observability.InitLoggerTo(cmd.ErrOrStderr(), opts.logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", envOr("LMDI_LOG_LEVEL", "warn"), "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.scenarioDir, "scenario-dir", os.Getenv("LMDI_SCENARIO_DIR"), "directory of YAML/JSON/TOML scenarios to add to the built-ins")

	cmd.AddCommand(
		newLogMeanCmd(),
		newSimpleCmd(),
		newDecomposeCmd(opts),
		newScenariosCmd(opts),
		newChartCmd(opts),
	)
	return cmd
}

// catalog returns the built-in scenarios plus any from --scenario-dir.
func (o *rootOptions) catalog() (*scenario.Catalog, error) {
	c := scenario.Builtin()
	if o.scenarioDir == "" {
		return c, nil
	}
	n, err := c.LoadDir(o.scenarioDir)
	if err != nil {
		return nil, err
	}
	slog.Debug("loaded scenarios", "dir", o.scenarioDir, "count", n)
	return c, nil
}

// resolve picks the scenario named by --scenario or loaded from --file.
func (o *rootOptions) resolve(name, file string) (domain.Scenario, error) {
	if file != "" {
		return scenario.LoadFile(file)
	}
	c, err := o.catalog()
	if err != nil {
		return domain.Scenario{}, err
	}
	sc, err := c.Get(name)
	if err != nil {
		return domain.Scenario{}, fmt.Errorf("%w (see `lmdi scenarios`)", err)
	}
	return sc, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
