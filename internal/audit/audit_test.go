package audit

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ftahirops/swiftsweep/internal/model"
)

func TestLog_AppendAndReadAll(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(filepath.Join(dir, "cleanup_actions.log"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	e1 := model.AuditEntry{Timestamp: time.Now(), RuleID: "old_downloads", ActionType: model.ActionCleanupTrash, ItemCount: 1, ItemsProcessed: 1, TotalBytes: 2000, Success: true}
	e2 := model.AuditEntry{Timestamp: time.Now(), RuleID: "large_caches", ActionType: model.ActionCleanupTrash, ItemCount: 1, ItemsProcessed: 0, Success: false, Error: "not_found"}

	if err := l.Append(e1); err != nil {
		t.Fatalf("append e1 failed: %v", err)
	}
	if err := l.Append(e2); err != nil {
		t.Fatalf("append e2 failed: %v", err)
	}

	entries, err := l.ReadAll()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].RuleID != "old_downloads" || entries[1].RuleID != "large_caches" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestLog_ReadAll_TolerantOfTrailingFragment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cleanup_actions.log")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := l.Append(model.AuditEntry{RuleID: "old_downloads", Success: true}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(`{"rule_id": "trunc` + "\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	entries, err := l.ReadAll()
	if err != nil {
		t.Fatalf("expected trailing fragment to be tolerated, got error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 complete entry, got %d", len(entries))
	}
}

func TestLog_ReadAll_MissingFileReturnsEmpty(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "nested", "cleanup_actions.log"))
	if err != nil {
		t.Fatal(err)
	}
	entries, err := l.ReadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected 0 entries for a never-written log, got %d", len(entries))
	}
}

func TestIndex_InsertAndQuery(t *testing.T) {
	dir := t.TempDir()
	idx, err := OpenIndex(filepath.Join(dir, "index.db"))
	if err != nil {
		t.Fatalf("open index failed: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []model.AuditEntry{
		{Timestamp: base, RuleID: "old_downloads", ActionType: model.ActionCleanupTrash, ItemCount: 1, ItemsProcessed: 1, TotalBytes: 100, Success: true},
		{Timestamp: base.Add(time.Hour), RuleID: "large_caches", ActionType: model.ActionCleanupTrash, ItemCount: 1, ItemsProcessed: 1, TotalBytes: 200, Success: true},
	}
	for _, e := range entries {
		if err := idx.Insert(ctx, e); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	got, err := idx.Run(ctx, Query{RuleID: "old_downloads"})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(got) != 1 || got[0].RuleID != "old_downloads" {
		t.Fatalf("expected 1 matching entry, got %+v", got)
	}

	all, err := idx.Run(ctx, Query{})
	if err != nil {
		t.Fatalf("query all failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 entries total, got %d", len(all))
	}
	if all[0].RuleID != "large_caches" {
		t.Errorf("expected newest-first ordering, got %+v", all)
	}
}
