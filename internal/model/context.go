package model

import "time"

// SystemMetrics is a point-in-time snapshot of resource utilization.
type SystemMetrics struct {
	CPUUsageFraction  float64 `json:"cpu_usage_fraction"`
	MemoryUsageFraction float64 `json:"memory_usage_fraction"`
	MemoryUsedBytes   uint64  `json:"memory_used_bytes"`
	MemoryTotalBytes  uint64  `json:"memory_total_bytes"`
	DiskUsageFraction float64 `json:"disk_usage_fraction"`
	DiskFreeBytes     uint64  `json:"disk_free_bytes"`
	DiskTotalBytes    uint64  `json:"disk_total_bytes"`
}

// CleanupCategory classifies a cleanup candidate for rule matching.
type CleanupCategory string

const (
	CategoryDeveloperCache CleanupCategory = "developer_cache"
	CategoryAppCache       CleanupCategory = "app_cache"
	CategoryBrowserCache   CleanupCategory = "browser_cache"
	CategoryTrash          CleanupCategory = "trash"
	CategoryMailAttachment CleanupCategory = "mail_attachment"
	CategoryScreenshot     CleanupCategory = "screenshot"
	CategoryOther          CleanupCategory = "other"
)

// CleanupCandidate is one path discovered by the bounded cleanup scan.
type CleanupCandidate struct {
	Path     string          `json:"path"`
	SizeBytes uint64         `json:"size_bytes"`
	Category CleanupCategory `json:"category"`
	ModTime  time.Time       `json:"mod_time"`
}

// DownloadedFile is one entry from the user's Downloads listing.
type DownloadedFile struct {
	Path       string    `json:"path"`
	SizeBytes  uint64    `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
	AccessedAt time.Time `json:"accessed_at"`
}

// InstalledApp is one entry from the installed-app listing.
type InstalledApp struct {
	ID         string     `json:"id"`
	Path       string     `json:"path"`
	SizeBytes  uint64     `json:"size_bytes"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// RecommendationContext is one immutable snapshot of system signals used for
// a single evaluation round. Any field may be nil, meaning "signal
// unavailable" — rules must treat that as a reason to abstain, not guess.
type RecommendationContext struct {
	Timestamp       time.Time          `json:"timestamp"`
	SystemMetrics   *SystemMetrics     `json:"system_metrics,omitempty"`
	CleanupItems    []CleanupCandidate `json:"cleanup_items,omitempty"`
	Downloads       []DownloadedFile   `json:"downloads,omitempty"`
	InstalledApps   []InstalledApp     `json:"installed_apps,omitempty"`
}

// AvailableCapabilities returns the set of capabilities this context can
// satisfy, based on which optional fields are non-nil; an empty but non-nil
// list still counts as available.
func (c *RecommendationContext) AvailableCapabilities() CapabilitySet {
	s := CapabilitySet{}
	if c.SystemMetrics != nil {
		s[CapabilitySystemMetrics] = struct{}{}
	}
	if c.CleanupItems != nil {
		s[CapabilityCleanupItems] = struct{}{}
	}
	if c.Downloads != nil {
		s[CapabilityDownloadsAccess] = struct{}{}
	}
	if c.InstalledApps != nil {
		s[CapabilityInstalledApps] = struct{}{}
	}
	return s
}

// Satisfies reports whether every capability in required is available.
func (c *RecommendationContext) Satisfies(required CapabilitySet) bool {
	available := c.AvailableCapabilities()
	for cap := range required {
		// helper_required and spotlight_query are execution-time/out-of-band
		// capabilities, not context fields; a rule declaring them is always
		// considered satisfied on the context-availability axis.
		if cap == CapabilityHelperRequired || cap == CapabilitySpotlightQuery {
			continue
		}
		if !available.Has(cap) {
			return false
		}
	}
	return true
}
