package metrics

import (
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRate_ComputesPerSecond(t *testing.T) {
	got := Rate(0, 1000, 2*time.Second)
	if got != 500 {
		t.Errorf("expected 500/s, got %f", got)
	}
}

func TestRate_CounterWrapReturnsZero(t *testing.T) {
	if Rate(1000, 10, time.Second) != 0 {
		t.Error("expected 0 on counter wrap")
	}
}

func TestStore_Update_DerivesRateFromSuccessiveSamples(t *testing.T) {
	s := NewStore()
	s.Update(Sample{ExecutorSuccess: 100, TracerEventsTotal: 50})
	// Force a measurable elapsed interval so the derived rate isn't 0/0.
	s.latest.Timestamp = s.latest.Timestamp.Add(-2 * time.Second)
	s.Update(Sample{ExecutorSuccess: 300, TracerEventsTotal: 50})

	got := s.Snapshot()
	if math.Abs(got.ExecutorSuccessRate-100) > 0.01 {
		t.Errorf("ExecutorSuccessRate = %f; want 100 (200 more over ~2s)", got.ExecutorSuccessRate)
	}
	if got.TracerEventsRate != 0 {
		t.Errorf("TracerEventsRate = %f; want 0 (no change)", got.TracerEventsRate)
	}
}

func TestStore_Update_FirstSampleHasNoRate(t *testing.T) {
	s := NewStore()
	s.Update(Sample{ExecutorSuccess: 42})
	if got := s.Snapshot().ExecutorSuccessRate; got != 0 {
		t.Errorf("ExecutorSuccessRate on first sample = %f; want 0", got)
	}
}

func TestStore_ServeHTTPRendersLatestSample(t *testing.T) {
	s := NewStore()
	s.Update(Sample{SchedulerRunning: 2, ExecutorSuccess: 5})

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "swiftsweep_scheduler_running 2") {
		t.Errorf("missing scheduler_running in output: %s", body)
	}
	if !strings.Contains(body, "swiftsweep_executor_success_total 5") {
		t.Errorf("missing executor_success_total in output: %s", body)
	}
}
