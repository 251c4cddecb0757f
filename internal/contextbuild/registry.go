// Package contextbuild implements the Context Builder (spec §4.7): it
// gathers system metrics, cleanup candidates, downloads, and installed apps
// into one RecommendationContext, caching the result for a bounded TTL.
package contextbuild

import (
	"context"
	"sync"
	"time"

	"github.com/ftahirops/swiftsweep/internal/model"
	"go.uber.org/zap"
)

// Collector populates one field of a RecommendationContext. Grounded on the
// teacher's collector.Collector interface + Registry.CollectAll shape:
// each collector owns exactly one concern and failures are isolated per
// collector rather than aborting the whole build.
type Collector interface {
	Name() string
	Collect(ctx context.Context, out *model.RecommendationContext) error
}

// Registry runs a fixed set of collectors and folds their results into a
// single context, logging (but not propagating) individual failures so a
// broken collector degrades context completeness rather than blocking the
// whole scan.
type Registry struct {
	collectors []Collector
	log        *zap.SugaredLogger
}

// NewRegistry builds a registry over the given collectors.
func NewRegistry(log *zap.SugaredLogger, collectors ...Collector) *Registry {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Registry{collectors: collectors, log: log}
}

// CollectAll runs every registered collector sequentially and returns the
// merged context. A collector error is logged and that collector's field(s)
// are left unset rather than failing the whole build.
func (r *Registry) CollectAll(ctx context.Context) *model.RecommendationContext {
	out := &model.RecommendationContext{Timestamp: time.Now()}
	for _, c := range r.collectors {
		if err := c.Collect(ctx, out); err != nil {
			r.log.Warnw("collector failed", "collector", c.Name(), "error", err)
		}
	}
	return out
}

// DefaultTTL is the default context freshness window (spec §4.7).
const DefaultTTL = 5 * time.Minute

// StaleAfter returns an isStale predicate that fires once a context is older
// than ttl.
func StaleAfter(ttl time.Duration) func(*model.RecommendationContext) bool {
	return func(c *model.RecommendationContext) bool {
		return time.Since(c.Timestamp) > ttl
	}
}

// Cache wraps a Registry with a TTL, refreshing only when stale. Grounded on
// the teacher's refresh-if-stale double-checked-lock Get() pattern.
type Cache struct {
	registry *Registry
	mu       sync.Mutex
	value    *model.RecommendationContext
	isStale  func(*model.RecommendationContext) bool
}

// NewCache wraps registry with the given staleness predicate.
func NewCache(registry *Registry, isStale func(*model.RecommendationContext) bool) *Cache {
	return &Cache{registry: registry, isStale: isStale}
}

// Get returns the cached context, rebuilding it first if absent or stale.
func (c *Cache) Get(ctx context.Context) *model.RecommendationContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.value == nil || c.isStale(c.value) {
		c.value = c.registry.CollectAll(ctx)
	}
	return c.value
}

// Invalidate forces the next Get to rebuild.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = nil
}
