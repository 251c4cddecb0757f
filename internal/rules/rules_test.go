package rules

import (
	"testing"
	"time"

	"github.com/ftahirops/swiftsweep/internal/model"
)

// TestLowDiskSpace_ScenarioA implements spec §8 scenario (a) literally.
func TestLowDiskSpace_ScenarioA(t *testing.T) {
	rc := &model.RecommendationContext{
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		SystemMetrics: &model.SystemMetrics{
			DiskUsageFraction: 0.92,
			DiskFreeBytes:     5_000_000_000,
		},
	}
	recs, err := LowDiskSpace{}.Evaluate(rc, model.RuleSettings{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected exactly one recommendation, got %d", len(recs))
	}
	r := recs[0]
	if r.ID != "low_disk_space_critical" {
		t.Errorf("expected id low_disk_space_critical, got %q", r.ID)
	}
	if r.Severity != model.SeverityCritical {
		t.Errorf("expected critical severity, got %q", r.Severity)
	}
	foundUsage, foundFree := false, false
	for _, e := range r.Evidence {
		if e.Label == "Disk Usage" && e.Value == "92%" {
			foundUsage = true
		}
		if e.Label == "Free Space" && e.Value == "5.0 GB" {
			foundFree = true
		}
	}
	if !foundUsage {
		t.Errorf("expected Disk Usage=92%% evidence, got %+v", r.Evidence)
	}
	if !foundFree {
		t.Errorf("expected Free Space=5.0 GB evidence, got %+v", r.Evidence)
	}
	if len(r.Actions) != 1 || r.Actions[0].Type != model.ActionRescan || r.Actions[0].RequiresConfirmation {
		t.Errorf("expected one non-confirming rescan action, got %+v", r.Actions)
	}
}

// TestOldDownloads_ScenarioB implements spec §8 scenario (b) literally.
func TestOldDownloads_ScenarioB(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rc := &model.RecommendationContext{
		Timestamp: now,
		Downloads: []model.DownloadedFile{
			{Path: "/Users/alice/Downloads/a.dmg", SizeBytes: 2_000_000_000, CreatedAt: now.Add(-60 * 24 * time.Hour)},
			{Path: "/Users/alice/Downloads/b.txt", SizeBytes: 100, CreatedAt: now.Add(-2 * 24 * time.Hour)},
		},
	}
	recs, err := OldDownloads{}.Evaluate(rc, model.RuleSettings{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected exactly one recommendation, got %d", len(recs))
	}
	r := recs[0]
	if r.ReclaimBytes() != 2_000_000_000 {
		t.Errorf("expected reclaim 2000000000, got %d", r.ReclaimBytes())
	}
	if len(r.Actions) != 1 || r.Actions[0].Type != model.ActionCleanupTrash {
		t.Fatalf("expected one cleanup_trash action, got %+v", r.Actions)
	}
	payload := r.Actions[0].Payload.Paths
	if len(payload) != 1 || payload[0] != "/Users/alice/Downloads/a.dmg" {
		t.Errorf("expected payload [a.dmg path only], got %+v", payload)
	}
	foundAggregate := false
	for _, e := range r.Evidence {
		if e.Label == "Files" && e.Value == "1 files" {
			foundAggregate = true
		}
	}
	if !foundAggregate {
		t.Errorf("expected Files=1 files aggregate evidence, got %+v", r.Evidence)
	}
}

func TestOldDownloads_NoContextField_ReturnsNoRecommendations(t *testing.T) {
	rc := &model.RecommendationContext{Timestamp: time.Now()}
	recs, err := OldDownloads{}.Evaluate(rc, model.RuleSettings{})
	if err != nil || len(recs) != 0 {
		t.Errorf("expected no recommendations when downloads signal unavailable, got %+v, err=%v", recs, err)
	}
}

func TestTrashReminder_SeverityEscalatesAtWarningThreshold(t *testing.T) {
	now := time.Now()
	rc := &model.RecommendationContext{
		Timestamp: now,
		CleanupItems: []model.CleanupCandidate{
			{Path: "/Users/alice/.Trash", Category: model.CategoryTrash, SizeBytes: 11 * 1024 * 1024 * 1024, ModTime: now},
		},
	}
	recs, _ := TrashReminder{}.Evaluate(rc, model.RuleSettings{})
	if len(recs) != 1 || recs[0].Severity != model.SeverityWarning {
		t.Fatalf("expected one warning-severity recommendation, got %+v", recs)
	}
}

func TestUnusedApps_SplitsKnownAndUnknownUsage(t *testing.T) {
	now := time.Now()
	old := now.Add(-200 * 24 * time.Hour)
	rc := &model.RecommendationContext{
		Timestamp: now,
		InstalledApps: []model.InstalledApp{
			{ID: "stale", Path: "/Applications/Stale.app", SizeBytes: 600 * 1024 * 1024, LastUsedAt: &old},
			{ID: "unknown", Path: "/Applications/Unknown.app", SizeBytes: 80 * 1024 * 1024},
		},
	}
	recs, _ := UnusedApps{}.Evaluate(rc, model.RuleSettings{})
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations (stale + unknown-usage), got %d: %+v", len(recs), recs)
	}
	var sawStale, sawUnknown bool
	for _, r := range recs {
		if r.ID == "unused_apps" {
			sawStale = true
			if r.Confidence != model.ConfidenceHigh {
				t.Errorf("expected high confidence for confirmed-stale group, got %v", r.Confidence)
			}
		}
		if r.ID == "unused_apps_usage_unknown" {
			sawUnknown = true
			if r.Confidence != model.ConfidenceLow {
				t.Errorf("expected low confidence for unknown-usage group, got %v", r.Confidence)
			}
		}
	}
	if !sawStale || !sawUnknown {
		t.Errorf("expected both groups present, got %+v", recs)
	}
}
