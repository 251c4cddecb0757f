package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ftahirops/swiftsweep/internal/model"
	"github.com/spf13/cobra"
)

var (
	flagExecRecIDs         []string
	flagExecPaths          []string
	flagExecMode           string
	flagExecDryRun         bool
	flagExecForceBigDelete bool
)

func init() {
	execCmd.Flags().StringSliceVar(&flagExecRecIDs, "rec-id", nil, "Recommendation id(s) to execute (repeatable)")
	execCmd.Flags().StringSliceVar(&flagExecPaths, "path", nil, "Explicit path(s) to execute against, bypassing recommendations (repeatable)")
	execCmd.Flags().StringVar(&flagExecMode, "mode", string(model.ModeTrash), "Execution mode: trash or delete")
	execCmd.Flags().BoolVar(&flagExecDryRun, "dry-run", false, "Report what would happen without mutating anything")
	execCmd.Flags().BoolVar(&flagExecForceBigDelete, "force-big-delete", false, "Override the big-delete guard for this call")
	rootCmd.AddCommand(execCmd)
}

var execCmd = &cobra.Command{
	Use:   "exec",
	Short: "Execute one or more recommendations' actions",
	RunE:  runExec,
}

func runExec(cmd *cobra.Command, args []string) error {
	mode, err := parseExecutionMode(flagExecMode)
	if err != nil {
		return err
	}
	if len(flagExecRecIDs) == 0 && len(flagExecPaths) == 0 {
		return fmt.Errorf("at least one --rec-id or --path is required")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	a.serveMetrics(flagMetricsAddr)

	ctx := cmd.Context()

	var result model.ExecutionResult
	progress := func(done, total int) {
		if !flagJSON {
			fmt.Fprintf(os.Stderr, "\r%d/%d", done, total)
		}
	}

	if len(flagExecPaths) > 0 {
		pathResult, err := a.executor.Execute(ctx, flagExecPaths, mode, flagExecDryRun, flagExecForceBigDelete, "cli-explicit-path", progress)
		if err != nil {
			return fmt.Errorf("execute: %w", err)
		}
		mergeExecutionResult(&result, pathResult)
	}

	if len(flagExecRecIDs) > 0 {
		recs, err := recommendationsByID(ctx, a, flagExecRecIDs)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			return fmt.Errorf("no recommendation matched the given --rec-id values")
		}
		batchResult, err := a.executor.ExecuteBatch(ctx, recs, mode, flagExecDryRun, flagExecForceBigDelete, progress)
		if err != nil {
			return fmt.Errorf("execute batch: %w", err)
		}
		mergeExecutionResult(&result, batchResult)
	}

	if !flagJSON {
		fmt.Fprintln(os.Stderr)
	}

	a.persistFirstRunConfirmation()

	a.publishSchedulerMetrics()
	sample := a.metrics.Snapshot()
	sample.ExecutorSuccess += uint64(result.SuccessCount)
	sample.ExecutorFailed += uint64(result.FailedCount)
	a.metrics.Update(sample)

	if flagJSON {
		return json.NewEncoder(os.Stdout).Encode(result)
	}
	if result.ForcedDryRun {
		fmt.Fprintln(os.Stderr, "first run: forced dry-run regardless of --dry-run; re-run to perform real changes")
	}
	printExecutionResult(result)
	return nil
}

// parseExecutionMode validates the --mode flag value.
func parseExecutionMode(raw string) (model.ExecutionMode, error) {
	mode := model.ExecutionMode(raw)
	if mode != model.ModeTrash && mode != model.ModeDelete {
		return "", fmt.Errorf("invalid --mode %q: must be %q or %q", raw, model.ModeTrash, model.ModeDelete)
	}
	return mode, nil
}

// recommendationsByID re-evaluates rules and picks out the requested ids, so
// exec always acts on a fresh recommendation rather than one a caller might
// have cached from an earlier scan.
func recommendationsByID(ctx context.Context, a *app, ids []string) ([]model.Recommendation, error) {
	rc := a.cache.Get(ctx)
	all, err := a.engine.Evaluate(ctx, rc, a.cfg.RuleSettings)
	if err != nil {
		return nil, fmt.Errorf("evaluate rules: %w", err)
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var matched []model.Recommendation
	for _, r := range all {
		if want[r.ID] {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

func mergeExecutionResult(dst *model.ExecutionResult, src model.ExecutionResult) {
	for _, item := range src.Items {
		dst.Add(item)
	}
	if src.ForcedDryRun {
		dst.ForcedDryRun = true
	}
}

func printExecutionResult(r model.ExecutionResult) {
	fmt.Printf("success=%d failed=%d skipped=%d total_bytes=%d\n", r.SuccessCount, r.FailedCount, r.SkippedCount, r.TotalBytes)
	for _, item := range r.Items {
		if item.Status != model.ItemSuccess {
			fmt.Printf("  %s: %s %s\n", item.Status, item.Path, item.Error)
		}
	}
}
