package rules

import (
	"fmt"

	"github.com/ftahirops/swiftsweep/internal/model"
)

// ScreenshotCleanup fires when Desktop screenshots older than a threshold
// (default 14 days) total past a size threshold (default 20 MB).
type ScreenshotCleanup struct{}

func (ScreenshotCleanup) ID() string                  { return "screenshot_cleanup" }
func (ScreenshotCleanup) Category() model.RuleCategory { return model.CategoryStorage }
func (ScreenshotCleanup) RequiredCapabilities() model.CapabilitySet {
	return model.NewCapabilitySet(model.CapabilityCleanupItems)
}

func (ScreenshotCleanup) Evaluate(rc *model.RecommendationContext, settings model.RuleSettings) ([]model.Recommendation, error) {
	if rc.CleanupItems == nil {
		return nil, nil
	}
	days := settings.Threshold("screenshot_cleanup", "age_days", map[string]int{"age_days": 14})
	minBytes := uint64(settings.Threshold("screenshot_cleanup", "min_bytes", map[string]int{"min_bytes": 20 * 1024 * 1024}))

	var paths []string
	var total uint64
	for _, item := range rc.CleanupItems {
		if item.Category != model.CategoryScreenshot {
			continue
		}
		if !olderThan(item.ModTime, rc.Timestamp, days) {
			continue
		}
		paths = append(paths, item.Path)
		total += item.SizeBytes
	}
	if total < minBytes || len(paths) == 0 {
		return nil, nil
	}
	paths = sortedPaths(paths)

	evidence := []model.Evidence{evidenceAggregate("Screenshots", fmt.Sprintf("%d files", len(paths)))}
	for _, p := range paths {
		evidence = append(evidence, evidencePath("Path", p))
	}

	rec := model.Recommendation{
		ID:                    "screenshot_cleanup",
		Title:                 "Old screenshots can be cleaned up",
		Summary:               fmt.Sprintf("%d screenshots older than %d days total %s.", len(paths), days, fmtBytes(total)),
		Severity:              model.SeverityInfo,
		Risk:                  model.RiskLow,
		Confidence:            model.ConfidenceHigh,
		EstimatedReclaimBytes: bytesPtr(total),
		Evidence:              evidence,
		Actions:               []model.Action{trashAction(paths)},
		RuleID:                "screenshot_cleanup",
		Category:              model.CategoryStorage,
	}
	return []model.Recommendation{rec}, nil
}
