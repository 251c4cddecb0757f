package iotrace

import (
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ftahirops/swiftsweep/internal/model"
)

// Detector thresholds, constants of the detector per spec §4.5 (never of
// rules).
const (
	smallReadOpCountThreshold = 10
	smallReadBytesPerOp       = 4 * 1024 // 4 KiB
	highLatencyThreshold      = 10 * time.Millisecond
	heavyWriteBytesPerSec     = 10 * 1024 * 1024 // 10 MiB/s
	fragmentedOpsPerSec       = 100.0
)

// DetectHotspots is a pure function from (path stats, time slices, tracing
// duration) to optimization suggestions (spec §4.5). Equal inputs always
// produce equal outputs.
func DetectHotspots(stats []model.IOPathStats, slices []model.IOTimeSlice, tracingDuration time.Duration) []model.IOOptimization {
	var out []model.IOOptimization

	for _, s := range stats {
		if s.OperationCount > smallReadOpCountThreshold && s.ReadBytes > 0 {
			perOp := s.ReadBytes / s.OperationCount
			if perOp < smallReadBytesPerOp {
				out = append(out, model.IOOptimization{
					Type:     model.HotspotFrequentSmallReads,
					Path:     s.SanitizedPath,
					Severity: model.OptSeverityMedium,
					Suggestion: fmt.Sprintf("%s: %d small reads averaging %s each — consider batching or buffering",
						s.SanitizedPath, s.OperationCount, humanize.Bytes(perOp)),
					EstimatedImprovement: "reduced syscall overhead",
				}.WithImpact(float64(s.OperationCount)))
			}
		}

		if time.Duration(s.AvgLatencyNanos) > highLatencyThreshold {
			out = append(out, model.IOOptimization{
				Type:     model.HotspotHighLatency,
				Path:     s.SanitizedPath,
				Severity: model.OptSeverityHigh,
				Suggestion: fmt.Sprintf("%s: average latency %s exceeds 10ms — check for contention or slow storage",
					s.SanitizedPath, time.Duration(s.AvgLatencyNanos)),
				EstimatedImprovement: "lower tail latency",
			}.WithImpact(float64(s.AvgLatencyNanos)))
		}

		if tracingDuration > 0 {
			bps := float64(s.WriteBytes) / tracingDuration.Seconds()
			if bps > heavyWriteBytesPerSec {
				out = append(out, model.IOOptimization{
					Type:     model.HotspotHeavyWrite,
					Path:     s.SanitizedPath,
					Severity: model.OptSeverityMedium,
					Suggestion: fmt.Sprintf("%s: sustained write rate %s/s — consider coalescing writes",
						s.SanitizedPath, humanize.Bytes(uint64(bps))),
					EstimatedImprovement: "reduced write amplification",
				}.WithImpact(bps))
			}

			ops := float64(s.OperationCount) / tracingDuration.Seconds()
			if ops > fragmentedOpsPerSec {
				out = append(out, model.IOOptimization{
					Type:     model.HotspotFragmentedAccess,
					Path:     s.SanitizedPath,
					Severity: model.OptSeverityLow,
					Suggestion: fmt.Sprintf("%s: %.0f ops/sec — access pattern looks fragmented", s.SanitizedPath, ops),
					EstimatedImprovement: "fewer, larger operations",
				}.WithImpact(ops))
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return model.LessOptimization(out[i], out[j]) })
	return out
}
