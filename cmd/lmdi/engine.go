package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lmdi-explainer/lmdi-go/internal/format"
	"github.com/lmdi-explainer/lmdi-go/internal/lmdi"
)

func newLogMeanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logmean A B",
		Short: "Logarithmic mean of two positive numbers",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vals, err := parseFloats(args)
			if err != nil {
				return err
			}
			v, err := lmdi.LogMean(vals[0], vals[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(v, 'g', -1, 64))
			return nil
		},
	}
}

func newSimpleCmd() *cobra.Command {
	var laspeyres bool
	cmd := &cobra.Command{
		Use:   "simple X0 Y0 X1 Y1",
		Short: "Two-factor decomposition of x0*y0 -> x1*y1",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseFloats(args)
			if err != nil {
				return err
			}
			headers, rows := simpleTable(v[0], v[1], v[2], v[3], laspeyres)
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&laspeyres, "laspeyres", false, "also show the Laspeyres split and its residual")
	return cmd
}

// simpleTable lays out the two-factor effects. With laspeyres set it adds
// the Laspeyres column and a residual row, where the LMDI cell is the
// engine's own DX + DY - Total.
func simpleTable(x0, y0, x1, y1 float64, laspeyres bool) ([]string, [][]string) {
	res := lmdi.Simple(x0, y0, x1, y1)
	headers := []string{"Effect", "LMDI"}
	rows := [][]string{
		{"x", format.Signed(res.DX)},
		{"y", format.Signed(res.DY)},
	}
	total := []string{"total", format.Signed(res.Total)}
	if laspeyres {
		lp := lmdi.LaspeyresSimple(x0, y0, x1, y1)
		headers = append(headers, "Laspeyres")
		rows[0] = append(rows[0], format.Signed(lp.DX))
		rows[1] = append(rows[1], format.Signed(lp.DY))
		rows = append(rows, []string{"residual", format.Signed(res.DX + res.DY - res.Total), format.Signed(lp.Residual)})
		total = append(total, format.Signed(res.Total))
	}
	return headers, append(rows, total)
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		out[i] = v
	}
	return out, nil
}
