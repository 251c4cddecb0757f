package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ftahirops/swiftsweep/internal/audit"
	"github.com/ftahirops/swiftsweep/internal/model"
	"github.com/spf13/cobra"
)

var (
	flagAuditRuleID string
	flagAuditSince  string
	flagAuditUntil  string
)

func init() {
	auditQueryCmd.Flags().StringVar(&flagAuditRuleID, "rule-id", "", "Filter by rule id")
	auditQueryCmd.Flags().StringVar(&flagAuditSince, "since", "", "Only entries at or after this RFC3339 timestamp")
	auditQueryCmd.Flags().StringVar(&flagAuditUntil, "until", "", "Only entries at or before this RFC3339 timestamp")
	auditCmd.AddCommand(auditQueryCmd)
	rootCmd.AddCommand(auditCmd)
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query the executed-action audit log",
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "List audit entries, optionally filtered by rule id or time range",
	RunE:  runAuditQuery,
}

func runAuditQuery(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	a.serveMetrics(flagMetricsAddr)

	q := audit.Query{RuleID: flagAuditRuleID}
	if flagAuditSince != "" {
		t, err := time.Parse(time.RFC3339, flagAuditSince)
		if err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
		q.Since = t
	}
	if flagAuditUntil != "" {
		t, err := time.Parse(time.RFC3339, flagAuditUntil)
		if err != nil {
			return fmt.Errorf("invalid --until: %w", err)
		}
		q.Until = t
	}

	entries, err := loadAuditEntries(cmd, a, q)
	if err != nil {
		return err
	}

	sample := a.metrics.Snapshot()
	sample.AuditEntriesTotal += uint64(len(entries))
	a.metrics.Update(sample)

	if flagJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(entries)
	}
	printAuditEntries(entries)
	return nil
}

// loadAuditEntries queries the sqlite index whenever it opened at startup,
// with or without a filter, falling back to a full flat-log read (then
// filtering in memory) when the index failed to open.
func loadAuditEntries(cmd *cobra.Command, a *app, q audit.Query) ([]model.AuditEntry, error) {
	if a.auditIdx != nil {
		return a.auditIdx.Run(cmd.Context(), q)
	}
	all, err := a.auditLog.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	return filterAuditEntries(all, q), nil
}

// filterAuditEntries applies q in memory, for the fallback path when the
// sqlite index isn't available to filter at the source.
func filterAuditEntries(entries []model.AuditEntry, q audit.Query) []model.AuditEntry {
	var out []model.AuditEntry
	for _, e := range entries {
		if q.RuleID != "" && e.RuleID != q.RuleID {
			continue
		}
		if !q.Since.IsZero() && e.Timestamp.Before(q.Since) {
			continue
		}
		if !q.Until.IsZero() && e.Timestamp.After(q.Until) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func printAuditEntries(entries []model.AuditEntry) {
	if len(entries) == 0 {
		fmt.Println("No audit entries.")
		return
	}
	for _, e := range entries {
		status := "ok"
		if !e.Success {
			status = "failed: " + e.Error
		}
		fmt.Printf("%s  %-12s  rule=%-24s items=%d/%d  bytes=%d  %s\n",
			e.Timestamp.Format(time.RFC3339), e.ActionType, e.RuleID, e.ItemsProcessed, e.ItemCount, e.TotalBytes, status)
	}
}
