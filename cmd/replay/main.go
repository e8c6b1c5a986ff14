package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/relational-ledger/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	f, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		os.Exit(2)
	}

	results, summary, err := replay.Run(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run fixture: %v\n", err)
		os.Exit(2)
	}

	if f.Description != "" {
		fmt.Printf("Fixture: %s\n\n", f.Description)
	}
	os.Exit(printResults(results, summary))
}

// #endregion main

// #region output

// printResults outputs a per-step comparison table and returns the exit code.
func printResults(results []replay.StepResult, summary replay.Summary) int {
	fmt.Printf("%-12s| %-12s| %6s| %-6s| %-8s| %s\n", "Step", "Op", "Risk", "Gated", "Signals", "Match")
	fmt.Printf("%-12s+%-13s+%7s+%-7s+%-9s+%s\n",
		"------------", "-------------", "-------", "-------", "---------", "------")

	for _, r := range results {
		match := "OK"
		if !r.Matched {
			match = "DIFF"
		}
		fmt.Printf("%-12s| %-12s| %6.2f| %-6v| %-8d| %s\n",
			r.StepID, r.Op, r.RuptureRisk, r.Gated, r.SignalCount, match)
		if r.Err != "" {
			fmt.Printf("%-12s|   error: %s\n", "", r.Err)
		}
		if len(r.Mismatches) > 0 {
			fmt.Printf("%-12s|   %s\n", "", strings.Join(r.Mismatches, "; "))
		}
	}

	fmt.Printf("\nSummary: %d steps, %d match, %d diverge\n",
		summary.TotalSteps, summary.Matches, summary.Divergences)

	if summary.Divergences > 0 {
		return 1
	}
	return 0
}

// #endregion output
