package rules

import (
	"fmt"

	"github.com/ftahirops/swiftsweep/internal/model"
)

// LowDiskSpace fires when disk usage crosses the critical or warning
// threshold. It never estimates a reclaim amount (the fix is "free up
// space", not a specific deletion).
type LowDiskSpace struct{}

func (LowDiskSpace) ID() string                               { return "low_disk_space" }
func (LowDiskSpace) Category() model.RuleCategory              { return model.CategoryStorage }
func (LowDiskSpace) RequiredCapabilities() model.CapabilitySet { return model.NewCapabilitySet(model.CapabilitySystemMetrics) }

func (LowDiskSpace) Evaluate(rc *model.RecommendationContext, settings model.RuleSettings) ([]model.Recommendation, error) {
	m := rc.SystemMetrics
	if m == nil {
		return nil, nil
	}

	critical := float64(settings.Threshold("low_disk_space", "critical_fraction_pct", map[string]int{"critical_fraction_pct": 90})) / 100
	warning := float64(settings.Threshold("low_disk_space", "warning_fraction_pct", map[string]int{"warning_fraction_pct": 80})) / 100

	var severity model.Severity
	var suffix string
	switch {
	case m.DiskUsageFraction >= critical:
		severity, suffix = model.SeverityCritical, "critical"
	case m.DiskUsageFraction >= warning:
		severity, suffix = model.SeverityWarning, "warning"
	default:
		return nil, nil
	}

	rec := model.Recommendation{
		ID:       fmt.Sprintf("low_disk_space_%s", suffix),
		Title:    "Low disk space",
		Summary:  "Available disk space is critically low.",
		Severity: severity,
		Risk:     model.RiskLow,
		Evidence: []model.Evidence{
			evidenceMetric("Disk Usage", fmt.Sprintf("%.0f%%", m.DiskUsageFraction*100)),
			evidenceMetric("Free Space", fmtBytes(m.DiskFreeBytes)),
		},
		Actions:  []model.Action{rescanAction()},
		RuleID:   "low_disk_space",
		Category: model.CategoryStorage,
	}
	if severity == model.SeverityCritical {
		rec.Confidence = model.ConfidenceHigh
	} else {
		rec.Confidence = model.ConfidenceMedium
	}
	return []model.Recommendation{rec}, nil
}
