package rules

import (
	"fmt"

	"github.com/ftahirops/swiftsweep/internal/model"
)

// UnusedApps fires when installed apps unused for a threshold period
// (default 90 days) and individually over a size floor (default 50 MB)
// total past a threshold (default 500 MB). Apps with no known last-used
// date are never counted toward that total; per spec §4.9 they are
// reported separately, as a distinct low-confidence "usage unknown"
// recommendation, since the rule cannot actually claim they are unused.
type UnusedApps struct{}

func (UnusedApps) ID() string                  { return "unused_apps" }
func (UnusedApps) Category() model.RuleCategory { return model.CategoryStorage }
func (UnusedApps) RequiredCapabilities() model.CapabilitySet {
	return model.NewCapabilitySet(model.CapabilityInstalledApps)
}

func (UnusedApps) Evaluate(rc *model.RecommendationContext, settings model.RuleSettings) ([]model.Recommendation, error) {
	if rc.InstalledApps == nil {
		return nil, nil
	}
	days := settings.Threshold("unused_apps", "age_days", map[string]int{"age_days": 90})
	perAppMin := uint64(settings.Threshold("unused_apps", "per_app_min_bytes", map[string]int{"per_app_min_bytes": 50 * 1024 * 1024}))
	totalMin := uint64(settings.Threshold("unused_apps", "total_min_bytes", map[string]int{"total_min_bytes": 500 * 1024 * 1024}))

	var stalePaths, unknownPaths []string
	var staleTotal, unknownTotal uint64
	for _, app := range rc.InstalledApps {
		if app.SizeBytes < perAppMin {
			continue
		}
		if app.LastUsedAt == nil {
			unknownPaths = append(unknownPaths, app.Path)
			unknownTotal += app.SizeBytes
			continue
		}
		if olderThan(*app.LastUsedAt, rc.Timestamp, days) {
			stalePaths = append(stalePaths, app.Path)
			staleTotal += app.SizeBytes
		}
	}

	var recs []model.Recommendation
	if staleTotal >= totalMin && len(stalePaths) > 0 {
		stalePaths = sortedPaths(stalePaths)
		evidence := []model.Evidence{evidenceAggregate("Apps", fmt.Sprintf("%d apps", len(stalePaths)))}
		for _, p := range stalePaths {
			evidence = append(evidence, evidencePath("Path", p))
		}
		recs = append(recs, model.Recommendation{
			ID:                    "unused_apps",
			Title:                 "Unused apps can be uninstalled",
			Summary:               fmt.Sprintf("%d apps unused for over %d days total %s.", len(stalePaths), days, fmtBytes(staleTotal)),
			Severity:              model.SeverityInfo,
			Risk:                  model.RiskMedium,
			Confidence:            model.ConfidenceHigh,
			EstimatedReclaimBytes: bytesPtr(staleTotal),
			Evidence:              evidence,
			Actions:               []model.Action{uninstallPlanAction("unused_apps")},
			RuleID:                "unused_apps",
			Category:              model.CategoryStorage,
		})
	}

	if len(unknownPaths) > 0 {
		unknownPaths = sortedPaths(unknownPaths)
		evidence := []model.Evidence{evidenceAggregate("Apps", fmt.Sprintf("%d apps", len(unknownPaths)))}
		for _, p := range unknownPaths {
			evidence = append(evidence, evidencePath("Path", p))
		}
		recs = append(recs, model.Recommendation{
			ID:                    "unused_apps_usage_unknown",
			Title:                 "Some large apps have unknown usage history",
			Summary:               fmt.Sprintf("%d apps with no known last-used date total %s.", len(unknownPaths), fmtBytes(unknownTotal)),
			Severity:              model.SeverityInfo,
			Risk:                  model.RiskMedium,
			Confidence:            model.ConfidenceLow,
			EstimatedReclaimBytes: bytesPtr(unknownTotal),
			Evidence:              evidence,
			Actions:               []model.Action{uninstallPlanAction("unused_apps_usage_unknown")},
			RuleID:                "unused_apps",
			Category:              model.CategoryStorage,
		})
	}

	return recs, nil
}
