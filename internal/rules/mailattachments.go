package rules

import (
	"fmt"

	"github.com/ftahirops/swiftsweep/internal/model"
)

// MailAttachments fires when downloaded mail attachments older than a
// threshold (default 60 days) total past a size threshold (default 100 MB).
type MailAttachments struct{}

func (MailAttachments) ID() string                  { return "mail_attachments" }
func (MailAttachments) Category() model.RuleCategory { return model.CategoryStorage }
func (MailAttachments) RequiredCapabilities() model.CapabilitySet {
	return model.NewCapabilitySet(model.CapabilityCleanupItems)
}

func (MailAttachments) Evaluate(rc *model.RecommendationContext, settings model.RuleSettings) ([]model.Recommendation, error) {
	if rc.CleanupItems == nil {
		return nil, nil
	}
	days := settings.Threshold("mail_attachments", "age_days", map[string]int{"age_days": 60})
	minBytes := uint64(settings.Threshold("mail_attachments", "min_bytes", map[string]int{"min_bytes": 100 * 1024 * 1024}))

	var paths []string
	var total uint64
	for _, item := range rc.CleanupItems {
		if item.Category != model.CategoryMailAttachment {
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

	evidence := []model.Evidence{evidenceAggregate("Attachments", fmt.Sprintf("%d files", len(paths)))}
	for _, p := range paths {
		evidence = append(evidence, evidencePath("Path", p))
	}

	rec := model.Recommendation{
		ID:                    "mail_attachments",
		Title:                 "Old mail attachments can be cleaned up",
		Summary:               fmt.Sprintf("%d mail attachments older than %d days total %s.", len(paths), days, fmtBytes(total)),
		Severity:              model.SeverityInfo,
		Risk:                  model.RiskLow,
		Confidence:            model.ConfidenceMedium,
		EstimatedReclaimBytes: bytesPtr(total),
		Evidence:              evidence,
		Actions:               []model.Action{trashAction(paths)},
		RuleID:                "mail_attachments",
		Category:              model.CategoryStorage,
	}
	return []model.Recommendation{rec}, nil
}
