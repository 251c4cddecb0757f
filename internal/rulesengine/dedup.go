package rulesengine

import (
	"strings"

	"github.com/ftahirops/swiftsweep/internal/model"
)

// dedupByAncestor drops recommendations whose primary path is a strict
// descendant of another recommendation's primary path (spec §3: "ancestor-
// path antichain — a parent directory recommendation supersedes
// recommendations for its descendants"). The primary path comes from the
// actions' payload paths, not from evidence; recommendations whose actions
// carry no paths (e.g. a rescan or uninstall-plan action) are never deduped
// against.
func dedupByAncestor(recs []model.Recommendation) []model.Recommendation {
	paths := make([]string, len(recs))
	for i, r := range recs {
		paths[i] = primaryPath(r)
	}

	drop := make([]bool, len(recs))
	for i, pi := range paths {
		if pi == "" {
			continue
		}
		for j, pj := range paths {
			if i == j || pj == "" || drop[i] {
				continue
			}
			if isStrictAncestor(pj, pi) {
				drop[i] = true
				break
			}
		}
	}

	out := make([]model.Recommendation, 0, len(recs))
	for i, r := range recs {
		if !drop[i] {
			out = append(out, r)
		}
	}
	return out
}

// primaryPath returns the first path referenced by a recommendation's
// actions, or "" if it has none.
func primaryPath(r model.Recommendation) string {
	for _, a := range r.Actions {
		if len(a.Payload.Paths) > 0 {
			return a.Payload.Paths[0]
		}
	}
	return ""
}

// isStrictAncestor reports whether ancestor is a strict path-prefix parent
// of descendant (not equal, and a real directory boundary).
func isStrictAncestor(ancestor, descendant string) bool {
	if ancestor == descendant {
		return false
	}
	a := strings.TrimRight(ancestor, "/")
	d := strings.TrimRight(descendant, "/")
	return strings.HasPrefix(d, a+"/")
}
