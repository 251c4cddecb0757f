package main

import (
	"testing"

	"github.com/ftahirops/swiftsweep/internal/model"
)

func TestHasCritical_Empty(t *testing.T) {
	if hasCritical(nil) {
		t.Errorf("hasCritical(nil) = true; want false")
	}
}

func TestHasCritical_NoneCritical(t *testing.T) {
	recs := []model.Recommendation{
		{ID: "a", Severity: model.SeverityInfo},
		{ID: "b", Severity: model.SeverityWarning},
	}
	if hasCritical(recs) {
		t.Errorf("hasCritical(%v) = true; want false", recs)
	}
}

func TestHasCritical_OneCritical(t *testing.T) {
	recs := []model.Recommendation{
		{ID: "a", Severity: model.SeverityInfo},
		{ID: "b", Severity: model.SeverityCritical},
	}
	if !hasCritical(recs) {
		t.Errorf("hasCritical(%v) = false; want true", recs)
	}
}
