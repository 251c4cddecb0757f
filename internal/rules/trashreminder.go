package rules

import (
	"fmt"

	"github.com/ftahirops/swiftsweep/internal/model"
)

// TrashReminder fires when the user's Trash has accumulated past a
// threshold (default 1 GB, warning at 10 GB). Emptying Trash is permanent,
// so risk is medium even though the underlying files are already
// user-discarded.
type TrashReminder struct{}

func (TrashReminder) ID() string                  { return "trash_reminder" }
func (TrashReminder) Category() model.RuleCategory { return model.CategoryStorage }
func (TrashReminder) RequiredCapabilities() model.CapabilitySet {
	return model.NewCapabilitySet(model.CapabilityCleanupItems)
}

func (TrashReminder) Evaluate(rc *model.RecommendationContext, settings model.RuleSettings) ([]model.Recommendation, error) {
	if rc.CleanupItems == nil {
		return nil, nil
	}
	infoMin := uint64(settings.Threshold("trash_reminder", "info_min_bytes", map[string]int{"info_min_bytes": 1024 * 1024 * 1024}))
	warnMin := uint64(settings.Threshold("trash_reminder", "warning_min_bytes", map[string]int{"warning_min_bytes": 10 * 1024 * 1024 * 1024}))

	var total uint64
	for _, item := range rc.CleanupItems {
		if item.Category == model.CategoryTrash {
			total += item.SizeBytes
		}
	}
	if total < infoMin {
		return nil, nil
	}

	severity := model.SeverityInfo
	if total >= warnMin {
		severity = model.SeverityWarning
	}

	rec := model.Recommendation{
		ID:                    "trash_reminder",
		Title:                 "Trash is taking up significant space",
		Summary:               fmt.Sprintf("Trash currently holds %s.", fmtBytes(total)),
		Severity:              severity,
		Risk:                  model.RiskMedium,
		Confidence:            model.ConfidenceHigh,
		EstimatedReclaimBytes: bytesPtr(total),
		Evidence:              []model.Evidence{evidenceMetric("Trash Size", fmtBytes(total))},
		Actions:               []model.Action{emptyTrashAction()},
		RuleID:                "trash_reminder",
		Category:              model.CategoryStorage,
	}
	return []model.Recommendation{rec}, nil
}
