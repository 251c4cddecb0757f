// Package iotrace implements the I/O self-tracing subsystem (spec §4.2-§4.5):
// a bounded ring buffer of IOEvents, tracked read/write/contents wrappers, a
// background aggregator that folds events into time slices and per-path
// stats, and a pure hotspot detector.
package iotrace

import (
	"sync"

	"github.com/ftahirops/swiftsweep/internal/model"
)

// BufferStats reports the ring buffer's current counters.
type BufferStats struct {
	Capacity       int     `json:"capacity"`
	Count          int     `json:"count"`
	TotalAppended  uint64  `json:"total_appended"`
	TotalDropped   uint64  `json:"total_dropped"`
	SampleRate     float64 `json:"sample_rate"`
}

// DropRate is a convenience accessor; callers may also compute it themselves.
func (s BufferStats) DropRate() float64 {
	if s.TotalAppended == 0 {
		return 0
	}
	return float64(s.TotalDropped) / float64(s.TotalAppended)
}

// RingBuffer is a fixed-capacity, single-writer-at-a-time queue of IOEvents
// with a sampling rate and lossy overflow, grounded on the teacher's
// engine/history.go ring buffer (head/size/cap modulo indexing) generalized
// from snapshots to events, plus sampling and drop accounting History didn't
// need.
type RingBuffer struct {
	mu    sync.Mutex
	buf   []model.IOEvent
	head  int // next write position
	size  int // number of valid elements currently stored
	cap   int

	totalAppended uint64
	totalDropped  uint64
	sampleRate    float64 // in [0,1]; 1.0 = keep everything
	sampleCounter uint64
}

// NewRingBuffer creates a buffer with the given capacity and an initial
// sample rate of 1.0 (keep everything; overflow is the only source of loss).
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &RingBuffer{
		buf:        make([]model.IOEvent, capacity),
		cap:        capacity,
		sampleRate: 1.0,
	}
}

// SetSampleRate clamps r to [0,1] and applies it to subsequent appends.
func (b *RingBuffer) SetSampleRate(r float64) {
	if r < 0 {
		r = 0
	}
	if r > 1 {
		r = 1
	}
	b.mu.Lock()
	b.sampleRate = r
	b.mu.Unlock()
}

// sampleAdmit deterministically decides whether to keep this event, using a
// multiplicative hash of a monotonically increasing per-buffer counter
// against a threshold derived from the sample rate. Must be called with the
// lock held.
func (b *RingBuffer) sampleAdmit() bool {
	if b.sampleRate >= 1.0 {
		return true
	}
	if b.sampleRate <= 0.0 {
		return false
	}
	b.sampleCounter++
	// Knuth multiplicative hash, folded into [0,1).
	const multiplier = 2654435761
	h := (b.sampleCounter * multiplier) & 0xFFFFFFFF
	frac := float64(h) / float64(uint64(1)<<32)
	return frac < b.sampleRate
}

// Append admits an event, applying sampling first, then overflow handling:
// if sampling drops it, the drop counter increments and nothing is stored;
// otherwise, if the buffer is full, the oldest event is overwritten and the
// drop counter increments for the overwritten slot.
func (b *RingBuffer) Append(e model.IOEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.totalAppended++

	if !b.sampleAdmit() {
		b.totalDropped++
		return
	}

	b.buf[b.head] = e
	b.head = (b.head + 1) % b.cap
	if b.size < b.cap {
		b.size++
	} else {
		b.totalDropped++
	}
}

// Drain removes and returns up to max events in arrival order.
func (b *RingBuffer) Drain(max int) []model.IOEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.extract(max, true)
}

// Peek is a non-destructive read of up to max events in arrival order.
func (b *RingBuffer) Peek(max int) []model.IOEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.extract(max, false)
}

// extract must be called with the lock held.
func (b *RingBuffer) extract(max int, remove bool) []model.IOEvent {
	n := b.size
	if max >= 0 && max < n {
		n = max
	}
	if n == 0 {
		return nil
	}
	out := make([]model.IOEvent, n)
	// Oldest element is at (head - size + cap) % cap.
	start := (b.head - b.size + b.cap) % b.cap
	for i := 0; i < n; i++ {
		out[i] = b.buf[(start+i)%b.cap]
	}
	if remove {
		b.size -= n
	}
	return out
}

// Stats returns the buffer's current counters.
func (b *RingBuffer) Stats() BufferStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BufferStats{
		Capacity:      b.cap,
		Count:         b.size,
		TotalAppended: b.totalAppended,
		TotalDropped:  b.totalDropped,
		SampleRate:    b.sampleRate,
	}
}
