package main

import (
	"testing"

	"github.com/ftahirops/swiftsweep/internal/model"
)

func TestParseExecutionMode_Trash(t *testing.T) {
	mode, err := parseExecutionMode("trash")
	if err != nil {
		t.Fatalf("parseExecutionMode(trash) error: %v", err)
	}
	if mode != model.ModeTrash {
		t.Errorf("mode = %q; want %q", mode, model.ModeTrash)
	}
}

func TestParseExecutionMode_Delete(t *testing.T) {
	mode, err := parseExecutionMode("delete")
	if err != nil {
		t.Fatalf("parseExecutionMode(delete) error: %v", err)
	}
	if mode != model.ModeDelete {
		t.Errorf("mode = %q; want %q", mode, model.ModeDelete)
	}
}

func TestParseExecutionMode_Invalid(t *testing.T) {
	if _, err := parseExecutionMode("shred"); err == nil {
		t.Errorf("parseExecutionMode(shred) error = nil; want non-nil")
	}
}

func TestMergeExecutionResult_AggregatesCounts(t *testing.T) {
	var dst model.ExecutionResult
	src1 := model.ExecutionResult{}
	src1.Add(model.ItemResult{Path: "/a", Status: model.ItemSuccess, SizeBytes: 10})
	src2 := model.ExecutionResult{}
	src2.Add(model.ItemResult{Path: "/b", Status: model.ItemFailed})
	src2.Add(model.ItemResult{Path: "/c", Status: model.ItemSkipped})

	mergeExecutionResult(&dst, src1)
	mergeExecutionResult(&dst, src2)

	if dst.SuccessCount != 1 || dst.FailedCount != 1 || dst.SkippedCount != 1 {
		t.Fatalf("dst = %+v; want 1/1/1 success/failed/skipped", dst)
	}
	if dst.TotalBytes != 10 {
		t.Errorf("TotalBytes = %d; want 10", dst.TotalBytes)
	}
	if len(dst.Items) != 3 {
		t.Errorf("len(Items) = %d; want 3", len(dst.Items))
	}
}
