// Package rulesengine implements the Rule Engine (spec §4.8): a registry of
// capability-gated rules evaluated in parallel against one
// RecommendationContext, producing a totally ordered recommendation list.
package rulesengine

import (
	"context"
	"sort"
	"sync"

	"github.com/ftahirops/swiftsweep/internal/model"
	"github.com/ftahirops/swiftsweep/internal/scheduler"
	"go.uber.org/zap"
)

// Rule is a pure function from context to recommendations, gated by the
// capabilities it declares.
type Rule interface {
	ID() string
	Category() model.RuleCategory
	RequiredCapabilities() model.CapabilitySet
	Evaluate(rc *model.RecommendationContext, settings model.RuleSettings) ([]model.Recommendation, error)
}

// Engine owns the rule registry. Grounded on the teacher's engine.Engine
// orchestration shape (collect → analyze → aggregate), generalized to
// register/unregister/evaluate against pluggable Rule implementations
// instead of a fixed analysis pipeline.
type Engine struct {
	mu    sync.RWMutex
	rules map[string]Rule
	sched *scheduler.Scheduler
	log   *zap.SugaredLogger
}

// New creates an engine that fans rule evaluation out through sched.
func New(sched *scheduler.Scheduler, log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{rules: make(map[string]Rule), sched: sched, log: log}
}

// Register adds or replaces a rule by id.
func (e *Engine) Register(r Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules[r.ID()] = r
}

// Unregister removes a rule by id. A no-op if absent.
func (e *Engine) Unregister(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.rules, id)
}

// RegisteredIDs returns the currently registered rule ids, sorted.
func (e *Engine) RegisteredIDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.rules))
	for id := range e.rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Evaluate runs every enabled, capability-satisfied rule against rc in
// parallel and returns the merged recommendations in the spec's total
// order. A single rule's error is logged and does not abort the others
// (per-rule failure isolation, spec §4.8).
func (e *Engine) Evaluate(ctx context.Context, rc *model.RecommendationContext, settings model.RuleSettings) ([]model.Recommendation, error) {
	e.mu.RLock()
	eligible := make([]Rule, 0, len(e.rules))
	for _, r := range e.rules {
		if !settings.Enabled(r.ID()) {
			continue
		}
		if !rc.Satisfies(r.RequiredCapabilities()) {
			continue
		}
		eligible = append(eligible, r)
	}
	e.mu.RUnlock()

	sort.Slice(eligible, func(i, j int) bool { return eligible[i].ID() < eligible[j].ID() })

	type outcome struct {
		recs []model.Recommendation
		err  error
	}
	results, _ := scheduler.MapConcurrently(ctx, e.sched, scheduler.PriorityNormal, eligible, func(ctx context.Context, r Rule) (outcome, error) {
		recs, err := r.Evaluate(rc, settings)
		if err != nil {
			e.log.Warnw("rule evaluation failed", "rule_id", r.ID(), "error", err)
			return outcome{err: err}, nil
		}
		return outcome{recs: recs}, nil
	})

	var all []model.Recommendation
	for _, o := range results {
		all = append(all, o.recs...)
	}
	all = dedupByAncestor(all)
	sort.SliceStable(all, func(i, j int) bool { return model.Less(all[i], all[j]) })
	return all, nil
}
