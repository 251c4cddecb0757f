package iotrace

import (
	"testing"
	"time"

	"github.com/ftahirops/swiftsweep/internal/model"
)

func mkEvent() model.IOEvent {
	return model.IOEvent{Timestamp: time.Now(), Operation: model.OpRead, SanitizedPath: "a/b"}
}

func TestRingBuffer_CapacityNeverExceeded(t *testing.T) {
	b := NewRingBuffer(10)
	for i := 0; i < 100; i++ {
		b.Append(mkEvent())
	}
	stats := b.Stats()
	if stats.Count > stats.Capacity {
		t.Fatalf("count %d exceeds capacity %d", stats.Count, stats.Capacity)
	}
	if stats.TotalAppended != 100 {
		t.Errorf("expected 100 appended, got %d", stats.TotalAppended)
	}
	if stats.TotalDropped != 90 {
		t.Errorf("expected 90 dropped from overflow, got %d", stats.TotalDropped)
	}
}

func TestRingBuffer_SampleRateOneKeepsEverything(t *testing.T) {
	b := NewRingBuffer(1000)
	b.SetSampleRate(1.0)
	for i := 0; i < 500; i++ {
		b.Append(mkEvent())
	}
	if b.Stats().TotalDropped != 0 {
		t.Errorf("sample rate 1.0 should drop nothing, dropped=%d", b.Stats().TotalDropped)
	}
}

func TestRingBuffer_SampleRateZeroDropsEverything(t *testing.T) {
	b := NewRingBuffer(1000)
	b.SetSampleRate(0.0)
	for i := 0; i < 500; i++ {
		b.Append(mkEvent())
	}
	stats := b.Stats()
	if stats.Count != 0 {
		t.Errorf("sample rate 0.0 should store nothing, count=%d", stats.Count)
	}
	if stats.TotalDropped != 500 {
		t.Errorf("expected 500 dropped, got %d", stats.TotalDropped)
	}
}

func TestRingBuffer_DrainReturnsArrivalOrder(t *testing.T) {
	b := NewRingBuffer(5)
	for i := 0; i < 3; i++ {
		e := mkEvent()
		e.BytesTransferred = uint64(i)
		b.Append(e)
	}
	drained := b.Drain(10)
	if len(drained) != 3 {
		t.Fatalf("expected 3 events, got %d", len(drained))
	}
	for i, e := range drained {
		if e.BytesTransferred != uint64(i) {
			t.Errorf("event %d: expected bytes %d, got %d", i, i, e.BytesTransferred)
		}
	}
	if b.Stats().Count != 0 {
		t.Errorf("drain should empty the buffer, count=%d", b.Stats().Count)
	}
}

func TestRingBuffer_PeekIsNonDestructive(t *testing.T) {
	b := NewRingBuffer(5)
	b.Append(mkEvent())
	b.Append(mkEvent())
	peeked := b.Peek(10)
	if len(peeked) != 2 {
		t.Fatalf("expected 2 peeked events, got %d", len(peeked))
	}
	if b.Stats().Count != 2 {
		t.Errorf("peek should not remove events, count=%d", b.Stats().Count)
	}
}

func TestRingBuffer_OverflowOverwritesOldest(t *testing.T) {
	b := NewRingBuffer(3)
	for i := 0; i < 5; i++ {
		e := mkEvent()
		e.BytesTransferred = uint64(i)
		b.Append(e)
	}
	drained := b.Drain(10)
	if len(drained) != 3 {
		t.Fatalf("expected 3 events retained, got %d", len(drained))
	}
	// Oldest two (0,1) were overwritten; 2,3,4 remain in arrival order.
	want := []uint64{2, 3, 4}
	for i, e := range drained {
		if e.BytesTransferred != want[i] {
			t.Errorf("position %d: expected %d, got %d", i, want[i], e.BytesTransferred)
		}
	}
}

func TestSanitizePath_KeepsLastTwoSegments(t *testing.T) {
	got := SanitizePath("/Users/alice/Library/Caches/org.example/blob.db")
	if got != ".../org.example/blob.db" {
		t.Errorf("unexpected sanitized path: %q", got)
	}
	if SanitizePath("/a/b") != "a/b" {
		t.Errorf("short paths should keep all their segments, without the leading slash: %q", SanitizePath("/a/b"))
	}
}
