package audit

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ftahirops/swiftsweep/internal/model"
	_ "modernc.org/sqlite"
)

// Index is a queryable sibling to the flat audit log, letting a CLI filter
// by rule id or time range without re-parsing the whole log file. It is
// derived state: the flat Log remains the source of truth per spec §4.11;
// losing the index only costs query convenience, never audit data.
type Index struct {
	db *sql.DB
}

// IndexPath returns the sqlite sibling file next to the flat audit log.
func IndexPath(logPath string) string {
	return filepath.Join(filepath.Dir(logPath), "cleanup_actions.index.db")
}

// OpenIndex opens (creating if needed) the sqlite index at path.
func OpenIndex(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit index: %w", err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS audit_entries (
	timestamp       TEXT NOT NULL,
	rule_id         TEXT NOT NULL,
	action_type     TEXT NOT NULL,
	item_count      INTEGER NOT NULL,
	items_processed INTEGER NOT NULL,
	total_bytes     INTEGER NOT NULL,
	success         INTEGER NOT NULL,
	error           TEXT
);
CREATE INDEX IF NOT EXISTS idx_audit_rule_id ON audit_entries(rule_id);
CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_entries(timestamp);
`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create audit index schema: %w", err)
	}
	return &Index{db: db}, nil
}

// Close releases the underlying database handle.
func (idx *Index) Close() error { return idx.db.Close() }

// Insert records one entry in the index. Callers insert alongside (not
// instead of) Log.Append.
func (idx *Index) Insert(ctx context.Context, entry model.AuditEntry) error {
	success := 0
	if entry.Success {
		success = 1
	}
	_, err := idx.db.ExecContext(ctx, `
INSERT INTO audit_entries (timestamp, rule_id, action_type, item_count, items_processed, total_bytes, success, error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Timestamp.Format(time.RFC3339Nano), entry.RuleID, string(entry.ActionType),
		entry.ItemCount, entry.ItemsProcessed, entry.TotalBytes, success, entry.Error)
	return err
}

// Query is a filter over the indexed entries. Zero-value fields are
// unconstrained.
type Query struct {
	RuleID string
	Since  time.Time
	Until  time.Time
}

// Run executes q against the index, newest first.
func (idx *Index) Run(ctx context.Context, q Query) ([]model.AuditEntry, error) {
	clauses := "WHERE 1=1"
	args := []interface{}{}
	if q.RuleID != "" {
		clauses += " AND rule_id = ?"
		args = append(args, q.RuleID)
	}
	if !q.Since.IsZero() {
		clauses += " AND timestamp >= ?"
		args = append(args, q.Since.Format(time.RFC3339Nano))
	}
	if !q.Until.IsZero() {
		clauses += " AND timestamp <= ?"
		args = append(args, q.Until.Format(time.RFC3339Nano))
	}

	rows, err := idx.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT timestamp, rule_id, action_type, item_count, items_processed, total_bytes, success, error FROM audit_entries %s ORDER BY timestamp DESC", clauses),
		args...)
	if err != nil {
		return nil, fmt.Errorf("query audit index: %w", err)
	}
	defer rows.Close()

	var out []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		var ts string
		var actionType string
		var success int
		if err := rows.Scan(&ts, &e.RuleID, &actionType, &e.ItemCount, &e.ItemsProcessed, &e.TotalBytes, &success, &e.Error); err != nil {
			return nil, fmt.Errorf("scan audit index row: %w", err)
		}
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		e.ActionType = model.ActionType(actionType)
		e.Success = success != 0
		out = append(out, e)
	}
	return out, rows.Err()
}
