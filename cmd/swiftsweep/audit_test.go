package main

import (
	"testing"
	"time"

	"github.com/ftahirops/swiftsweep/internal/audit"
	"github.com/ftahirops/swiftsweep/internal/model"
)

func TestFilterAuditEntries_NoFilterReturnsAll(t *testing.T) {
	entries := []model.AuditEntry{
		{RuleID: "a", Timestamp: time.Unix(1, 0)},
		{RuleID: "b", Timestamp: time.Unix(2, 0)},
	}
	got := filterAuditEntries(entries, audit.Query{})
	if len(got) != 2 {
		t.Fatalf("len(got) = %d; want 2", len(got))
	}
}

func TestFilterAuditEntries_ByRuleID(t *testing.T) {
	entries := []model.AuditEntry{
		{RuleID: "a", Timestamp: time.Unix(1, 0)},
		{RuleID: "b", Timestamp: time.Unix(2, 0)},
	}
	got := filterAuditEntries(entries, audit.Query{RuleID: "b"})
	if len(got) != 1 || got[0].RuleID != "b" {
		t.Fatalf("got = %+v; want exactly rule b", got)
	}
}

func TestFilterAuditEntries_BySinceUntil(t *testing.T) {
	entries := []model.AuditEntry{
		{RuleID: "old", Timestamp: time.Unix(100, 0)},
		{RuleID: "mid", Timestamp: time.Unix(200, 0)},
		{RuleID: "new", Timestamp: time.Unix(300, 0)},
	}
	got := filterAuditEntries(entries, audit.Query{
		Since: time.Unix(150, 0),
		Until: time.Unix(250, 0),
	})
	if len(got) != 1 || got[0].RuleID != "mid" {
		t.Fatalf("got = %+v; want exactly [mid]", got)
	}
}
