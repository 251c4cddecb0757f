// Package metrics exposes a point-in-time snapshot of scheduler, tracer,
// and executor counters over a plain HTTP handler. Grounded on the
// teacher's engine.MetricsStore: a mutex-guarded "latest sample" struct with
// an http.Handler that renders it, rather than a full metrics client
// library — the teacher hand-rolls this exact shape instead of importing
// one, and this is ambient/optional per spec §4 so the same minimal
// approach is kept.
package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Sample is one point-in-time snapshot of counters worth exposing. The
// *Total fields are cumulative counters a caller fills in from its own
// running totals; from the second Update call on, the *Rate fields are
// derived by Store.Update from the change in the corresponding counter since
// the previous sample, overwriting what the caller passed. On the first
// Update call they are stored as given.
type Sample struct {
	Timestamp           time.Time
	SchedulerRunning    int
	SchedulerPending    int
	TracerEventsTotal   uint64
	TracerEventsRate    float64
	TracerDropRate      float64
	AuditEntriesTotal   uint64
	AuditEntriesRate    float64
	ExecutorSuccess     uint64
	ExecutorSuccessRate float64
	ExecutorFailed      uint64
	ExecutorFailedRate  float64
}

// Store holds the latest Sample behind a mutex, updated by whichever
// component owns each counter.
type Store struct {
	mu       sync.Mutex
	latest   Sample
	havePrev bool
}

// NewStore returns an empty metrics store.
func NewStore() *Store {
	return &Store{}
}

// Update replaces the latest sample, first deriving each *Rate field from
// the change in its counter since the previous sample divided by the
// elapsed wall time (Rate), which itself only ever advances on a genuine
// counter increase (Delta).
func (s *Store) Update(sample Sample) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.havePrev {
		dt := now.Sub(s.latest.Timestamp)
		sample.TracerEventsRate = Rate(s.latest.TracerEventsTotal, sample.TracerEventsTotal, dt)
		sample.AuditEntriesRate = Rate(s.latest.AuditEntriesTotal, sample.AuditEntriesTotal, dt)
		sample.ExecutorSuccessRate = Rate(s.latest.ExecutorSuccess, sample.ExecutorSuccess, dt)
		sample.ExecutorFailedRate = Rate(s.latest.ExecutorFailed, sample.ExecutorFailed, dt)
	}
	sample.Timestamp = now
	s.latest = sample
	s.havePrev = true
}

// Snapshot returns a copy of the latest sample.
func (s *Store) Snapshot() Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// ServeHTTP renders the latest sample in a minimal Prometheus-exposition-
// compatible text format.
func (s *Store) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sample := s.Snapshot()
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "swiftsweep_scheduler_running %d\n", sample.SchedulerRunning)
	fmt.Fprintf(w, "swiftsweep_scheduler_pending %d\n", sample.SchedulerPending)
	fmt.Fprintf(w, "swiftsweep_tracer_events_total %d\n", sample.TracerEventsTotal)
	fmt.Fprintf(w, "swiftsweep_tracer_events_rate %f\n", sample.TracerEventsRate)
	fmt.Fprintf(w, "swiftsweep_tracer_drop_rate %f\n", sample.TracerDropRate)
	fmt.Fprintf(w, "swiftsweep_audit_entries_total %d\n", sample.AuditEntriesTotal)
	fmt.Fprintf(w, "swiftsweep_audit_entries_rate %f\n", sample.AuditEntriesRate)
	fmt.Fprintf(w, "swiftsweep_executor_success_total %d\n", sample.ExecutorSuccess)
	fmt.Fprintf(w, "swiftsweep_executor_success_rate %f\n", sample.ExecutorSuccessRate)
	fmt.Fprintf(w, "swiftsweep_executor_failed_total %d\n", sample.ExecutorFailed)
	fmt.Fprintf(w, "swiftsweep_executor_failed_rate %f\n", sample.ExecutorFailedRate)
}
