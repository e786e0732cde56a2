package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lmdi-explainer/lmdi-go/internal/analysis"
	"github.com/lmdi-explainer/lmdi-go/internal/chart"
	"github.com/lmdi-explainer/lmdi-go/internal/domain"
	"github.com/lmdi-explainer/lmdi-go/internal/format"
	"github.com/lmdi-explainer/lmdi-go/internal/waterfall"
)

func newScenariosCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List available scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.catalog()
			if err != nil {
				return err
			}
			var rows [][]string
			for _, s := range c.List() {
				rows = append(rows, []string{s.Name, s.Title, strings.Join(s.Factors, " x "), strconv.Itoa(s.Segments)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Name", "Title", "Factors", "Segments"}, rows))
			return nil
		},
	}
}

type decomposeFlags struct {
	scenario string
	file     string
	view     string
	method   string
	workers  int
	json     bool
}

func newDecomposeCmd(opts *rootOptions) *cobra.Command {
	f := &decomposeFlags{}
	cmd := &cobra.Command{
		Use:   "decompose",
		Short: "Decompose a scenario by segment and factor",
		Long: `Decompose a built-in or file-based scenario and print the impact table.

Examples:
  lmdi decompose --scenario revenue
  lmdi decompose --file energy.yaml --view percent
  lmdi decompose --scenario users-price --method laspeyres --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, ok := domain.ParseViewMode(f.view)
			if !ok {
				return fmt.Errorf("invalid --view %q: use absolute or percent", f.view)
			}
			method, ok := domain.ParseMethod(f.method)
			if !ok {
				return fmt.Errorf("invalid --method %q: use lmdi or laspeyres", f.method)
			}
			sc, err := opts.resolve(f.scenario, f.file)
			if err != nil {
				return err
			}

			report, err := analysis.Build(cmd.Context(), sc, analysis.Options{Workers: f.workers})
			if err != nil {
				return err
			}
			var cmp *analysis.Comparison
			if method == domain.MethodLaspeyres {
				c, err := analysis.Compare(sc)
				if err != nil {
					return err
				}
				cmp = &c
			}
			slog.Debug("decomposed", "scenario", sc.Name, "segments", len(sc.Segments), "workers", f.workers)

			out := cmd.OutOrStdout()
			if f.json {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					View       string               `json:"view"`
					Method     string               `json:"method"`
					Report     analysis.Report      `json:"report"`
					Comparison *analysis.Comparison `json:"comparison,omitempty"`
				}{string(view), string(method), report, cmp})
			}
			printReport(out, report, view)
			if cmp != nil {
				printComparison(out, *cmp)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&f.scenario, "scenario", "", "built-in or --scenario-dir scenario name")
	cmd.Flags().StringVar(&f.file, "file", "", "scenario file (.yaml, .json or .toml)")
	cmd.Flags().StringVar(&f.view, "view", "absolute", "absolute or percent")
	cmd.Flags().StringVar(&f.method, "method", "lmdi", "lmdi, or laspeyres to add the comparison")
	cmd.Flags().IntVar(&f.workers, "workers", 1, "decompose segments on this many goroutines")
	cmd.Flags().BoolVar(&f.json, "json", false, "print the report as JSON")
	cmd.MarkFlagsMutuallyExclusive("scenario", "file")
	cmd.MarkFlagsOneRequired("scenario", "file")
	return cmd
}

func printReport(w io.Writer, r analysis.Report, view domain.ViewMode) {
	title := r.Title
	if title == "" {
		title = r.Scenario
	}
	fmt.Fprintln(w, titleStyle.Render(title))
	fmt.Fprintf(w, "%s %s -> %s %s (%s, %s)\n",
		r.BaselineLabel, format.Currency(r.Before),
		r.ComparisonLabel, format.Currency(r.After),
		format.Signed(r.Delta), format.Percent(r.DeltaPct))

	headers := []string{"Segment", r.BaselineLabel, r.ComparisonLabel, "Delta"}
	for _, t := range r.Totals {
		headers = append(headers, t.Label)
	}
	cell := func(contribution, share float64) string {
		if view == domain.ViewPercent {
			return format.Percent(share)
		}
		return format.Signed(contribution)
	}

	rows := make([][]string, 0, len(r.Rows)+1)
	for _, row := range r.Rows {
		line := []string{row.Name, format.Currency(row.Before), format.Currency(row.After), format.Signed(row.Delta)}
		for k, c := range row.Contributions {
			line = append(line, cell(c, row.Shares[k]))
		}
		rows = append(rows, line)
	}
	total := []string{"total", format.Currency(r.Before), format.Currency(r.After), format.Signed(r.Delta)}
	for _, t := range r.Totals {
		total = append(total, cell(t.Contribution, t.Share))
	}
	rows = append(rows, total)
	fmt.Fprintln(w, renderTable(headers, rows))

	if r.TopFactor != "" {
		for _, t := range r.Totals {
			if t.Key == r.TopFactor {
				fmt.Fprintf(w, "Top factor: %s (%s)\n", t.Label, format.Signed(t.Contribution))
			}
		}
	}
	fmt.Fprintln(w, noteStyle.Render(fmt.Sprintf("Residual: %.3g", r.Residual)))
}

func printComparison(w io.Writer, c analysis.Comparison) {
	rows := make([][]string, 0, len(c.Factors)+2)
	for _, f := range c.Factors {
		rows = append(rows, []string{f.Label, format.Signed(f.LMDI), format.Signed(f.Laspeyres)})
	}
	rows = append(rows,
		[]string{"residual", format.Signed(c.LMDIResidual), format.Signed(c.LaspeyresResidual)},
		[]string{"total", format.Signed(c.Delta), format.Signed(c.Delta)},
	)
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("LMDI vs Laspeyres"))
	fmt.Fprintln(w, renderTable([]string{"Factor", "LMDI", "Laspeyres"}, rows))
	fmt.Fprintln(w, noteStyle.Render(fmt.Sprintf("Laspeyres leaves %.1f%% of the change unexplained.", c.ResidualPct)))
}

type chartFlags struct {
	scenario string
	file     string
	out      string
	method   string
	width    float64
	height   float64
}

func newChartCmd(opts *rootOptions) *cobra.Command {
	f := &chartFlags{}
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render a scenario waterfall to SVG or PNG",
		Long: `Render the waterfall bridge of a scenario. The image format follows the
--out extension (.svg or .png).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			imgFormat := strings.TrimPrefix(strings.ToLower(filepath.Ext(f.out)), ".")
			if imgFormat != chart.FormatSVG && imgFormat != chart.FormatPNG {
				return fmt.Errorf("--out must end in .svg or .png, got %q", f.out)
			}
			method, ok := domain.ParseMethod(f.method)
			if !ok {
				return fmt.Errorf("invalid --method %q: use lmdi or laspeyres", f.method)
			}
			sc, err := opts.resolve(f.scenario, f.file)
			if err != nil {
				return err
			}

			var bars []waterfall.Bar
			title := sc.Baseline() + " to " + sc.Comparison()
			if method == domain.MethodLaspeyres {
				c, err := analysis.Compare(sc)
				if err != nil {
					return err
				}
				bars = waterfall.FromComparison(c)
				title += " (Laspeyres)"
			} else {
				r, err := analysis.Build(cmd.Context(), sc, analysis.Options{})
				if err != nil {
					return err
				}
				bars = waterfall.FromReport(r)
			}

			img, err := chart.Render(bars, chart.Options{Title: title, Width: f.width, Height: f.height, Format: imgFormat})
			if err != nil {
				return err
			}
			if err := os.WriteFile(f.out, img, 0o644); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", f.out, len(img))
			return nil
		},
	}
	cmd.Flags().StringVar(&f.scenario, "scenario", "", "built-in or --scenario-dir scenario name")
	cmd.Flags().StringVar(&f.file, "file", "", "scenario file (.yaml, .json or .toml)")
	cmd.Flags().StringVar(&f.out, "out", "", "output image path (.svg or .png)")
	cmd.Flags().StringVar(&f.method, "method", "lmdi", "lmdi, or laspeyres for the bridge with its residual bar")
	cmd.Flags().Float64Var(&f.width, "width", 720, "image width in points")
	cmd.Flags().Float64Var(&f.height, "height", 360, "image height in points")
	cmd.MarkFlagsMutuallyExclusive("scenario", "file")
	cmd.MarkFlagsOneRequired("scenario", "file")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
