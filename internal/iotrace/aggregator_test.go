package iotrace

import (
	"path/filepath"
	"testing"

	"github.com/ftahirops/swiftsweep/internal/model"
)

// TestTracerAndAggregator_OneTick implements spec §8 scenario (f): trace
// 100 x 1 KiB tracked writes, then run one aggregator tick.
func TestTracerAndAggregator_OneTick(t *testing.T) {
	buf := NewRingBuffer(1000)
	tracer := NewTracer(buf)
	tracer.Start()

	dir := t.TempDir()
	path := filepath.Join(dir, "scratch.bin")
	payload := make([]byte, 1024)

	for i := 0; i < 100; i++ {
		if err := tracer.TrackedWrite(payload, path); err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
	}
	tracer.Stop()

	agg := NewAggregator(buf, nil)
	agg.Tick()

	slices := agg.Slices()
	if len(slices) != 1 {
		t.Fatalf("expected exactly one slice, got %d", len(slices))
	}
	s := slices[0]
	if s.WriteOps != 100 {
		t.Errorf("expected write_ops=100, got %d", s.WriteOps)
	}
	if s.WriteBytes != 102400 {
		t.Errorf("expected write_bytes=102400, got %d", s.WriteBytes)
	}
	if s.AvgLatencyNanos <= 0 {
		t.Errorf("expected nonzero avg latency, got %d", s.AvgLatencyNanos)
	}

	pathStats := agg.PathStats()
	if len(pathStats) != 1 {
		t.Fatalf("expected stats for exactly one sanitized path, got %d", len(pathStats))
	}
	if pathStats[0].OperationCount != 100 {
		t.Errorf("expected operation_count=100, got %d", pathStats[0].OperationCount)
	}
}

func TestAggregator_EmptyTickAppendsNoSlice(t *testing.T) {
	buf := NewRingBuffer(10)
	agg := NewAggregator(buf, nil)
	agg.Tick()
	if len(agg.Slices()) != 0 {
		t.Errorf("empty tick should not append a slice")
	}
}

func TestAggregator_HistoryCapEvictsOldest(t *testing.T) {
	buf := NewRingBuffer(10)
	agg := NewAggregator(buf, nil)
	agg.historyCap = 2

	for tick := 0; tick < 5; tick++ {
		buf.Append(model.IOEvent{Operation: model.OpRead, SanitizedPath: "x/y", BytesTransferred: 1})
		agg.Tick()
	}
	if len(agg.Slices()) != 2 {
		t.Errorf("expected history capped at 2, got %d", len(agg.Slices()))
	}
}

func TestDetectHotspots_Deterministic(t *testing.T) {
	stats := []model.IOPathStats{
		{SanitizedPath: "a/b", OperationCount: 20, ReadBytes: 1000, AvgLatencyNanos: int64(20_000_000)},
	}
	first := DetectHotspots(stats, nil, 0)
	second := DetectHotspots(stats, nil, 0)
	if len(first) != len(second) {
		t.Fatalf("nondeterministic output length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("nondeterministic output at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
	foundHighLatency := false
	foundSmallReads := false
	for _, o := range first {
		if o.Type == model.HotspotHighLatency {
			foundHighLatency = true
		}
		if o.Type == model.HotspotFrequentSmallReads {
			foundSmallReads = true
		}
	}
	if !foundHighLatency {
		t.Error("expected a high_latency hotspot")
	}
	if !foundSmallReads {
		t.Error("expected a frequent_small_reads hotspot")
	}
	// High severity must sort before medium.
	if first[0].Severity != model.OptSeverityHigh {
		t.Errorf("expected high severity first, got %v", first[0].Severity)
	}
}
