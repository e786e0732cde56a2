// Command lmdi decomposes aggregate changes into per-factor contributions.
//
// Usage:
//
//	lmdi logmean A B
//	lmdi simple X0 Y0 X1 Y1 [--laspeyres]
//	lmdi decompose --scenario NAME | --file PATH [--view percent] [--workers N] [--json]
//	lmdi scenarios
//	lmdi chart --scenario NAME --out FILE [--method laspeyres]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
