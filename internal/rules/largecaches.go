package rules

import (
	"fmt"

	"github.com/ftahirops/swiftsweep/internal/model"
)

// LargeCaches fires once per application cache directory exceeding a size
// threshold (default 200 MB), each as its own recommendation since each is
// independently actionable.
type LargeCaches struct{}

func (LargeCaches) ID() string                  { return "large_caches" }
func (LargeCaches) Category() model.RuleCategory { return model.CategoryStorage }
func (LargeCaches) RequiredCapabilities() model.CapabilitySet {
	return model.NewCapabilitySet(model.CapabilityCleanupItems)
}

func (LargeCaches) Evaluate(rc *model.RecommendationContext, settings model.RuleSettings) ([]model.Recommendation, error) {
	if rc.CleanupItems == nil {
		return nil, nil
	}
	threshold := uint64(settings.Threshold("large_caches", "min_bytes", map[string]int{"min_bytes": 200 * 1024 * 1024}))

	var recs []model.Recommendation
	for _, item := range rc.CleanupItems {
		if item.Category != model.CategoryAppCache || item.SizeBytes <= threshold {
			continue
		}
		recs = append(recs, model.Recommendation{
			ID:                    fmt.Sprintf("large_caches:%s", item.Path),
			Title:                 "Large application cache",
			Summary:               fmt.Sprintf("%s cache directory is using %s.", item.Path, fmtBytes(item.SizeBytes)),
			Severity:              model.SeverityInfo,
			Risk:                  model.RiskLow,
			Confidence:            model.ConfidenceHigh,
			EstimatedReclaimBytes: bytesPtr(item.SizeBytes),
			Evidence:              []model.Evidence{evidencePath("Path", item.Path), evidenceMetric("Size", fmtBytes(item.SizeBytes))},
			Actions:               []model.Action{trashAction([]string{item.Path})},
			RuleID:                "large_caches",
			Category:              model.CategoryStorage,
		})
	}
	return recs, nil
}
