package rules

import (
	"fmt"

	"github.com/ftahirops/swiftsweep/internal/model"
)

// BrowserCache fires once per known browser cache directory exceeding a
// size threshold (default 200 MB).
type BrowserCache struct{}

func (BrowserCache) ID() string                  { return "browser_cache" }
func (BrowserCache) Category() model.RuleCategory { return model.CategoryPrivacy }
func (BrowserCache) RequiredCapabilities() model.CapabilitySet {
	return model.NewCapabilitySet(model.CapabilityCleanupItems)
}

func (BrowserCache) Evaluate(rc *model.RecommendationContext, settings model.RuleSettings) ([]model.Recommendation, error) {
	if rc.CleanupItems == nil {
		return nil, nil
	}
	threshold := uint64(settings.Threshold("browser_cache", "min_bytes", map[string]int{"min_bytes": 200 * 1024 * 1024}))

	var recs []model.Recommendation
	for _, item := range rc.CleanupItems {
		if item.Category != model.CategoryBrowserCache || item.SizeBytes <= threshold {
			continue
		}
		recs = append(recs, model.Recommendation{
			ID:                    fmt.Sprintf("browser_cache:%s", item.Path),
			Title:                 "Browser cache can be cleared",
			Summary:               fmt.Sprintf("%s is using %s.", item.Path, fmtBytes(item.SizeBytes)),
			Severity:              model.SeverityInfo,
			Risk:                  model.RiskMedium,
			Confidence:            model.ConfidenceMedium,
			EstimatedReclaimBytes: bytesPtr(item.SizeBytes),
			Evidence:              []model.Evidence{evidencePath("Path", item.Path), evidenceMetric("Size", fmtBytes(item.SizeBytes))},
			Actions:               []model.Action{trashAction([]string{item.Path})},
			RuleID:                "browser_cache",
			Category:              model.CategoryPrivacy,
		})
	}
	return recs, nil
}
