package iotrace

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/ftahirops/swiftsweep/internal/model"
)

// Tracer provides tracked equivalents of read-bytes, write-bytes, and
// list-directory (spec §4.3, §6 tracked I/O contract). These are the only
// filesystem operations the I/O Tracer observes — it never wraps arbitrary
// syscalls.
type Tracer struct {
	buf     *RingBuffer
	running atomic.Bool
}

// NewTracer wraps the given ring buffer.
func NewTracer(buf *RingBuffer) *Tracer {
	t := &Tracer{buf: buf}
	return t
}

// Start enables event recording.
func (t *Tracer) Start() { t.running.Store(true) }

// Stop disables event recording. A tracked_* call records its event only if
// the tracer is still running when the call finishes, so a call in flight
// when Stop is called records nothing. Stopping does not flush the buffer.
func (t *Tracer) Stop() { t.running.Store(false) }

// Running reports whether the tracer is currently recording.
func (t *Tracer) Running() bool { return t.running.Load() }

func (t *Tracer) emit(op model.IOOperation, path string, bytes uint64, dur time.Duration) {
	if !t.running.Load() {
		return
	}
	pid := os.Getpid()
	t.buf.Append(model.IOEvent{
		Timestamp:        time.Now(),
		Operation:        op,
		SanitizedPath:    SanitizePath(path),
		BytesTransferred: bytes,
		DurationNanos:    dur.Nanoseconds(),
		ProcessID:        &pid,
	})
}

// TrackedRead reads the full contents of path, timing the call and emitting
// an IOEvent regardless of outcome. On error the event carries zero bytes
// and the actual elapsed duration; the error is then surfaced to the caller.
func (t *Tracer) TrackedRead(path string) ([]byte, error) {
	start := time.Now()
	data, err := os.ReadFile(path)
	dur := time.Since(start)
	if err != nil {
		t.emit(model.OpRead, path, 0, dur)
		return nil, err
	}
	t.emit(model.OpRead, path, uint64(len(data)), dur)
	return data, nil
}

// TrackedWrite writes data to path, timing the call and emitting an IOEvent
// regardless of outcome.
func (t *Tracer) TrackedWrite(data []byte, path string) error {
	start := time.Now()
	err := os.WriteFile(path, data, 0o644)
	dur := time.Since(start)
	if err != nil {
		t.emit(model.OpWrite, path, 0, dur)
		return err
	}
	t.emit(model.OpWrite, path, uint64(len(data)), dur)
	return nil
}

// TrackedContents lists the entries of a directory, timing the call and
// emitting a readdir IOEvent regardless of outcome.
func (t *Tracer) TrackedContents(path string) ([]string, error) {
	start := time.Now()
	entries, err := os.ReadDir(path)
	dur := time.Since(start)
	if err != nil {
		t.emit(model.OpReaddir, path, 0, dur)
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	t.emit(model.OpReaddir, path, uint64(len(names)), dur)
	return names, nil
}
