package rules

import (
	"fmt"
	"path/filepath"

	"github.com/ftahirops/swiftsweep/internal/model"
)

// OldDownloads fires when the user's Downloads folder holds files older
// than a threshold (default 30 days), preferring creation date and falling
// back to access date.
type OldDownloads struct{}

func (OldDownloads) ID() string                               { return "old_downloads" }
func (OldDownloads) Category() model.RuleCategory              { return model.CategoryStorage }
func (OldDownloads) RequiredCapabilities() model.CapabilitySet { return model.NewCapabilitySet(model.CapabilityDownloadsAccess) }

func (OldDownloads) Evaluate(rc *model.RecommendationContext, settings model.RuleSettings) ([]model.Recommendation, error) {
	if rc.Downloads == nil {
		return nil, nil
	}
	days := settings.Threshold("old_downloads", "age_days", map[string]int{"age_days": 30})

	var paths []string
	var total uint64
	for _, f := range rc.Downloads {
		reference := f.CreatedAt
		if reference.IsZero() {
			reference = f.AccessedAt
		}
		if olderThan(reference, rc.Timestamp, days) {
			paths = append(paths, f.Path)
			total += f.SizeBytes
		}
	}
	if len(paths) == 0 {
		return nil, nil
	}
	paths = sortedPaths(paths)

	evidence := []model.Evidence{
		evidenceAggregate("Files", fmt.Sprintf("%d files", len(paths))),
	}
	for _, p := range paths {
		evidence = append(evidence, evidencePath("Path", filepath.Base(p)))
	}

	rec := model.Recommendation{
		ID:                    "old_downloads",
		Title:                 "Old downloads can be cleaned up",
		Summary:               fmt.Sprintf("%d downloaded files are older than %d days.", len(paths), days),
		Severity:              model.SeverityInfo,
		Risk:                  model.RiskLow,
		Confidence:            model.ConfidenceHigh,
		EstimatedReclaimBytes: bytesPtr(total),
		Evidence:              evidence,
		Actions:               []model.Action{trashAction(paths)},
		RuleID:                "old_downloads",
		Category:              model.CategoryStorage,
	}
	return []model.Recommendation{rec}, nil
}
