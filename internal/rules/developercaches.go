package rules

import (
	"fmt"
	"strings"

	"github.com/ftahirops/swiftsweep/internal/model"
)

// DeveloperCaches fires when the sum of known developer-cache directories
// (each individually at least a per-path threshold) crosses a total
// threshold. Known heavy tools (Xcode, CocoaPods, Homebrew) escalate
// severity to warning.
type DeveloperCaches struct{}

func (DeveloperCaches) ID() string                  { return "developer_caches" }
func (DeveloperCaches) Category() model.RuleCategory { return model.CategoryStorage }
func (DeveloperCaches) RequiredCapabilities() model.CapabilitySet {
	return model.NewCapabilitySet(model.CapabilityCleanupItems)
}

func (DeveloperCaches) Evaluate(rc *model.RecommendationContext, settings model.RuleSettings) ([]model.Recommendation, error) {
	if rc.CleanupItems == nil {
		return nil, nil
	}
	perPathMin := uint64(settings.Threshold("developer_caches", "per_path_min_bytes", map[string]int{"per_path_min_bytes": 50 * 1024 * 1024}))
	totalMin := uint64(settings.Threshold("developer_caches", "total_min_bytes", map[string]int{"total_min_bytes": 500 * 1024 * 1024}))

	var paths []string
	var total uint64
	heavyTool := false
	for _, item := range rc.CleanupItems {
		if item.Category != model.CategoryDeveloperCache {
			continue
		}
		if item.SizeBytes < perPathMin {
			continue
		}
		paths = append(paths, item.Path)
		total += item.SizeBytes
		if isHeavyDevTool(item.Path) {
			heavyTool = true
		}
	}
	if total < totalMin || len(paths) == 0 {
		return nil, nil
	}
	paths = sortedPaths(paths)

	severity := model.SeverityInfo
	if heavyTool {
		severity = model.SeverityWarning
	}

	evidence := []model.Evidence{evidenceAggregate("Caches", fmt.Sprintf("%d directories", len(paths)))}
	for _, p := range paths {
		evidence = append(evidence, evidencePath("Path", p))
	}

	rec := model.Recommendation{
		ID:                    "developer_caches",
		Title:                 "Developer tool caches are taking up space",
		Summary:               fmt.Sprintf("%s across %d developer cache directories.", fmtBytes(total), len(paths)),
		Severity:              severity,
		Risk:                  model.RiskLow,
		Confidence:            model.ConfidenceHigh,
		EstimatedReclaimBytes: bytesPtr(total),
		Evidence:              evidence,
		Actions:               []model.Action{trashAction(paths)},
		RuleID:                "developer_caches",
		Category:              model.CategoryStorage,
	}
	return []model.Recommendation{rec}, nil
}

func isHeavyDevTool(path string) bool {
	lower := strings.ToLower(path)
	for _, marker := range []string{"xcode", "deriveddata", "cocoapods", "homebrew", "cellar"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
