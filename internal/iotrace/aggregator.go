package iotrace

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ftahirops/swiftsweep/internal/model"
	"go.uber.org/zap"
)

const (
	// defaultDrainBatch bounds how many events one tick folds, per spec §4.4.
	defaultDrainBatch = 5000
	// defaultHistoryCap bounds retained IOTimeSlices, per spec §3.
	defaultHistoryCap = 300
)

// Aggregator periodically drains a RingBuffer into IOTimeSlices and rolling
// IOPathStats, grounded on the teacher's engine/daemon.go time.Ticker
// background-loop-with-select shape.
type Aggregator struct {
	buf      *RingBuffer
	interval time.Duration
	drainMax int
	historyCap int
	log      *zap.SugaredLogger

	mu        sync.Mutex
	slices    []model.IOTimeSlice
	pathStats map[string]*model.IOPathStats
	started   time.Time
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewAggregator creates an aggregator over buf with the default 1-second
// tick interval and a 300-slice history cap.
func NewAggregator(buf *RingBuffer, log *zap.SugaredLogger) *Aggregator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Aggregator{
		buf:        buf,
		interval:   time.Second,
		drainMax:   defaultDrainBatch,
		historyCap: defaultHistoryCap,
		log:        log,
		pathStats:  make(map[string]*model.IOPathStats),
	}
}

// Start launches the background tick loop. It is restartable and idempotent
// across restarts: calling Start again after Stop resumes ticking against
// the same accumulated state.
func (a *Aggregator) Start(ctx context.Context) {
	a.mu.Lock()
	if a.started.IsZero() {
		a.started = time.Now()
	}
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.mu.Unlock()

	a.wg.Add(1)
	go a.loop(runCtx)
}

// Stop cancels the background loop and waits for it to exit.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	cancel := a.cancel
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	a.wg.Wait()
}

func (a *Aggregator) loop(ctx context.Context) {
	defer a.wg.Done()
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Tick()
		}
	}
}

// Tick drains up to drainMax events and folds them into one IOTimeSlice plus
// updates to per-path stats. Empty ticks are skipped and append no slice.
func (a *Aggregator) Tick() {
	events := a.buf.Drain(a.drainMax)
	if len(events) == 0 {
		return
	}

	slice := foldSlice(events, a.interval)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.slices = append(a.slices, slice)
	if len(a.slices) > a.historyCap {
		a.slices = a.slices[len(a.slices)-a.historyCap:]
	}
	for _, e := range events {
		updatePathStats(a.pathStats, e)
	}
}

func foldSlice(events []model.IOEvent, interval time.Duration) model.IOTimeSlice {
	slice := model.IOTimeSlice{Start: events[0].Timestamp, Duration: interval}
	var durations []int64
	for _, e := range events {
		switch e.Operation {
		case model.OpRead, model.OpReaddir, model.OpStat, model.OpOpen, model.OpClose:
			slice.ReadBytes += e.BytesTransferred
			slice.ReadOps++
		case model.OpWrite:
			slice.WriteBytes += e.BytesTransferred
			slice.WriteOps++
		}
		if e.DurationNanos > 0 {
			durations = append(durations, e.DurationNanos)
		}
	}
	if len(durations) > 0 {
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
		var sum int64
		for _, d := range durations {
			sum += d
		}
		slice.AvgLatencyNanos = sum / int64(len(durations))
		idx := int(0.99 * float64(len(durations)))
		if idx >= len(durations) {
			idx = len(durations) - 1
		}
		slice.P99LatencyNanos = durations[idx]
	}
	return slice
}

func updatePathStats(m map[string]*model.IOPathStats, e model.IOEvent) {
	s, ok := m[e.SanitizedPath]
	if !ok {
		s = &model.IOPathStats{SanitizedPath: e.SanitizedPath}
		m[e.SanitizedPath] = s
	}
	s.TotalBytes += e.BytesTransferred
	switch e.Operation {
	case model.OpRead, model.OpReaddir, model.OpStat, model.OpOpen, model.OpClose:
		s.ReadBytes += e.BytesTransferred
	case model.OpWrite:
		s.WriteBytes += e.BytesTransferred
	}
	s.OperationCount++
	// avg is recomputed from the previous average times the previous count,
	// so no separate running-sum field is needed.
	addLatencySample(s, e.DurationNanos)
}

// addLatencySample folds one more latency sample into the running average,
// using the already-incremented OperationCount as the new sample count.
func addLatencySample(s *model.IOPathStats, nanos int64) {
	// s.OperationCount was already incremented by the caller.
	if s.OperationCount == 0 {
		return
	}
	total := s.AvgLatencyNanos * int64(s.OperationCount-1)
	total += nanos
	s.AvgLatencyNanos = total / int64(s.OperationCount)
}

// Slices returns a copy of the retained time-slice history, oldest first.
func (a *Aggregator) Slices() []model.IOTimeSlice {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.IOTimeSlice, len(a.slices))
	copy(out, a.slices)
	return out
}

// PathStats returns a copy of the current per-path statistics.
func (a *Aggregator) PathStats() []model.IOPathStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.IOPathStats, 0, len(a.pathStats))
	for _, s := range a.pathStats {
		out = append(out, *s)
	}
	return out
}

// TracingDuration returns how long this aggregator has been accumulating
// state, for hotspot rate calculations.
func (a *Aggregator) TracingDuration() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started.IsZero() {
		return 0
	}
	return time.Since(a.started)
}
