// Package rules implements the nine built-in rules (spec §4.9): pure
// functions from a RecommendationContext to zero or more Recommendations,
// generalized from the teacher's engine/actions.go SuggestActions
// switch-per-bottleneck shape into one function per rule id.
package rules

import (
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ftahirops/swiftsweep/internal/model"
)

func evidenceMetric(label, value string) model.Evidence {
	return model.Evidence{Kind: model.EvidenceMetric, Label: label, Value: value}
}

func evidencePath(label, path string) model.Evidence {
	return model.Evidence{Kind: model.EvidencePath, Label: label, Value: path}
}

func evidenceAggregate(label, value string) model.Evidence {
	return model.Evidence{Kind: model.EvidenceAggregate, Label: label, Value: value}
}

func sortedPaths(paths []string) []string {
	out := make([]string, len(paths))
	copy(out, paths)
	sort.Strings(out)
	return out
}

func trashAction(paths []string) model.Action {
	return model.Action{
		Type:                 model.ActionCleanupTrash,
		Payload:              model.ActionPayload{Paths: sortedPaths(paths)},
		RequiresConfirmation: true,
		SupportsDryRun:       true,
	}
}

func rescanAction() model.Action {
	return model.Action{Type: model.ActionRescan, RequiresConfirmation: false, SupportsDryRun: false}
}

func emptyTrashAction() model.Action {
	return model.Action{Type: model.ActionEmptyTrash, RequiresConfirmation: true, SupportsDryRun: true}
}

func uninstallPlanAction(identifier string) model.Action {
	return model.Action{
		Type:                 model.ActionUninstallPlan,
		Payload:              model.ActionPayload{Identifier: identifier},
		RequiresConfirmation: true,
		SupportsDryRun:       true,
	}
}

func bytesPtr(b uint64) *uint64 { return &b }

// olderThan reports whether t is strictly before ref minus the given number
// of days. Used by age-gated rules; ref is always the context's own
// Timestamp rather than time.Now(), so a rule's output is a pure function
// of its input context (testable property 1).
func olderThan(t, ref time.Time, days int) bool {
	return t.Before(ref.Add(-time.Duration(days) * 24 * time.Hour))
}

func fmtBytes(b uint64) string { return humanize.Bytes(b) }
