// Package audit implements the Audit Log (spec §4.11): an append-only,
// UTF-8, one-entry-per-line record of executed actions, tolerant of a
// trailing partial write. Grounded on the teacher's engine/recorder.go
// Recorder/Player pair, which serializes one JSON value per line and reads
// them back independently of each other.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ftahirops/swiftsweep/internal/model"
)

// Log appends AuditEntry records to a fixed file, one JSON object per line.
// Writes are serialized through a mutex, matching spec §5's "audit log file
// handle: owned by the log component" ownership rule.
type Log struct {
	mu   sync.Mutex
	path string
}

// DefaultPath returns ~/Library/Logs/swiftsweep/cleanup_actions.log.
func DefaultPath(home string) string {
	return filepath.Join(home, "Library", "Logs", "swiftsweep", "cleanup_actions.log")
}

// Open prepares a Log at path, creating parent directories as needed.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create audit log directory: %w", err)
	}
	return &Log{path: path}, nil
}

// Append writes one entry as its own line. Per spec §8 property 8, callers
// invoke this exactly once per non-dry-run execute call.
func (l *Log) Append(entry model.AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	return nil
}

// ReadAll reads every complete entry in the log, skipping a trailing
// fragment left by a crash mid-write (a line that fails to parse as JSON
// and is the last line in the file is treated as a partial write and
// silently dropped; one that fails mid-file is still reported so real
// corruption is not hidden).
func (l *Log) ReadAll() ([]model.AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan audit log: %w", err)
	}

	entries := make([]model.AuditEntry, 0, len(lines))
	for i, line := range lines {
		var entry model.AuditEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			if i == len(lines)-1 {
				// Trailing partial write from an interrupted process; tolerate it.
				break
			}
			return nil, fmt.Errorf("corrupt audit log at line %d: %w", i+1, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
