package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ftahirops/swiftsweep/internal/model"
	"github.com/spf13/cobra"
)

var flagFailOnCritical bool

func init() {
	scanCmd.Flags().BoolVar(&flagFailOnCritical, "fail-on-critical", false, "Exit with code 2 if any recommendation is critical severity")
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Build context and evaluate cleanup rules",
	RunE:  runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	a.serveMetrics(flagMetricsAddr)

	ctx := cmd.Context()
	rc := a.cache.Get(ctx)
	recs, err := a.engine.Evaluate(ctx, rc, a.cfg.RuleSettings)
	a.publishSchedulerMetrics()
	if err != nil {
		return fmt.Errorf("evaluate rules: %w", err)
	}

	if flagJSON {
		if err := json.NewEncoder(os.Stdout).Encode(recs); err != nil {
			return err
		}
	} else {
		printRecommendations(recs)
	}

	if flagFailOnCritical && hasCritical(recs) {
		return ExitCodeError{Code: 2}
	}
	return nil
}

// hasCritical reports whether any recommendation carries critical severity.
func hasCritical(recs []model.Recommendation) bool {
	for _, r := range recs {
		if r.Severity == model.SeverityCritical {
			return true
		}
	}
	return false
}

func printRecommendations(recs []model.Recommendation) {
	if len(recs) == 0 {
		fmt.Println("No recommendations.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "SEVERITY\tRECLAIM\tID\tTITLE")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", r.Severity, r.ReclaimBytes(), r.ID, r.Title)
	}
	w.Flush()
}
