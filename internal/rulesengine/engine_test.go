package rulesengine

import (
	"context"
	"errors"
	"testing"

	"github.com/ftahirops/swiftsweep/internal/model"
	"github.com/ftahirops/swiftsweep/internal/scheduler"
)

type fakeRule struct {
	id    string
	caps  model.CapabilitySet
	recs  []model.Recommendation
	err   error
}

func (r *fakeRule) ID() string                                { return r.id }
func (r *fakeRule) Category() model.RuleCategory               { return model.CategoryStorage }
func (r *fakeRule) RequiredCapabilities() model.CapabilitySet  { return r.caps }
func (r *fakeRule) Evaluate(rc *model.RecommendationContext, s model.RuleSettings) ([]model.Recommendation, error) {
	return r.recs, r.err
}

func newEngine() *Engine {
	sched := scheduler.New(scheduler.DefaultConfig(), nil)
	return New(sched, nil)
}

func TestEvaluate_SkipsRuleMissingCapability(t *testing.T) {
	e := newEngine()
	e.Register(&fakeRule{
		id:   "needs_metrics",
		caps: model.NewCapabilitySet(model.CapabilitySystemMetrics),
		recs: []model.Recommendation{{ID: "r1", RuleID: "needs_metrics"}},
	})
	rc := &model.RecommendationContext{} // no SystemMetrics set
	got, err := e.Evaluate(context.Background(), rc, model.RuleSettings{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected 0 recommendations, got %d", len(got))
	}
}

func TestEvaluate_SkipsDisabledRule(t *testing.T) {
	e := newEngine()
	e.Register(&fakeRule{
		id:   "always_on_caps",
		caps: model.CapabilitySet{},
		recs: []model.Recommendation{{ID: "r1"}},
	})
	rc := &model.RecommendationContext{}
	settings := model.RuleSettings{"always_on_caps": {Enabled: false}}
	got, _ := e.Evaluate(context.Background(), rc, settings)
	if len(got) != 0 {
		t.Errorf("expected disabled rule to produce no recommendations, got %d", len(got))
	}
}

func TestEvaluate_IsolatesRuleFailure(t *testing.T) {
	e := newEngine()
	e.Register(&fakeRule{id: "broken", err: errors.New("boom")})
	e.Register(&fakeRule{id: "fine", recs: []model.Recommendation{{ID: "ok1"}}})
	rc := &model.RecommendationContext{}
	got, err := e.Evaluate(context.Background(), rc, model.RuleSettings{})
	if err != nil {
		t.Fatalf("engine-level error should not surface from one broken rule: %v", err)
	}
	if len(got) != 1 || got[0].ID != "ok1" {
		t.Errorf("expected only the working rule's recommendation, got %+v", got)
	}
}

func TestEvaluate_OrdersBySpecTotalOrder(t *testing.T) {
	e := newEngine()
	big := uint64(1000)
	small := uint64(10)
	e.Register(&fakeRule{id: "r", recs: []model.Recommendation{
		{ID: "b", Severity: model.SeverityWarning, EstimatedReclaimBytes: &small},
		{ID: "a", Severity: model.SeverityCritical, EstimatedReclaimBytes: &big},
		{ID: "c", Severity: model.SeverityWarning, EstimatedReclaimBytes: &big},
	}})
	rc := &model.RecommendationContext{}
	got, _ := e.Evaluate(context.Background(), rc, model.RuleSettings{})
	if len(got) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(got))
	}
	wantOrder := []string{"a", "c", "b"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("position %d: got %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestDedupByAncestor_ParentWinsOverDescendant(t *testing.T) {
	recs := []model.Recommendation{
		{ID: "parent", Actions: []model.Action{{Payload: model.ActionPayload{Paths: []string{"/a/b"}}}}},
		{ID: "child", Actions: []model.Action{{Payload: model.ActionPayload{Paths: []string{"/a/b/c.txt"}}}}},
		{ID: "unrelated", Actions: []model.Action{{Payload: model.ActionPayload{Paths: []string{"/x/y"}}}}},
	}
	got := dedupByAncestor(recs)
	if len(got) != 2 {
		t.Fatalf("expected 2 survivors, got %d: %+v", len(got), got)
	}
	ids := map[string]bool{}
	for _, r := range got {
		ids[r.ID] = true
	}
	if !ids["parent"] || !ids["unrelated"] || ids["child"] {
		t.Errorf("unexpected survivors: %+v", ids)
	}
}
