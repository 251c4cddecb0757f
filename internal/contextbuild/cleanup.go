package contextbuild

import (
	"context"
	"os"
	"path/filepath"

	"github.com/ftahirops/swiftsweep/internal/model"
)

// maxCleanupItems bounds the scan so a user with a deeply nested cache tree
// never stalls a context build, per spec §4.7's "bounded" requirement.
const maxCleanupItems = 2000

// maxScanDepth is the depth limit scanRoot checks on entry. scanRoot lists
// only the immediate entries of a root and does not recurse, so Collect's
// depth-0 calls never reach it.
const maxScanDepth = 6

// CleanupItemsCollector lists the immediate entries of a fixed set of known
// cache/trash roots, each tagged with a CleanupCategory. It keeps the first
// maxCleanupItems entries in walk order and sorts those largest-first.
type CleanupItemsCollector struct {
	Roots []string
}

// DefaultCleanupRoots returns the standard macOS cache/trash locations under
// home, per spec §4.1's always-safe roots.
func DefaultCleanupRoots(home string) []string {
	return []string{
		filepath.Join(home, "Library", "Caches"),
		filepath.Join(home, ".Trash"),
		filepath.Join(home, "Library", "Developer", "Xcode", "DerivedData"),
		filepath.Join(home, "Library", "Mail", "V10"),
		filepath.Join(home, "Desktop"),
	}
}

func (c *CleanupItemsCollector) Name() string { return "cleanup_items" }

func (c *CleanupItemsCollector) Collect(ctx context.Context, out *model.RecommendationContext) error {
	var items []model.CleanupCandidate
	for _, root := range c.Roots {
		if ctx.Err() != nil {
			break
		}
		scanRoot(ctx, root, 0, &items)
		if len(items) >= maxCleanupItems {
			break
		}
	}
	if len(items) > maxCleanupItems {
		items = items[:maxCleanupItems]
	}
	sortCandidatesBySize(items)
	out.CleanupItems = items
	return nil
}

func scanRoot(ctx context.Context, root string, depth int, items *[]model.CleanupCandidate) {
	if depth > maxScanDepth || len(*items) >= maxCleanupItems {
		return
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if ctx.Err() != nil || len(*items) >= maxCleanupItems {
			return
		}
		full := filepath.Join(root, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if entry.IsDir() {
			size := dirSize(full)
			*items = append(*items, model.CleanupCandidate{
				Path:      full,
				SizeBytes: size,
				Category:  classifyCleanupCategory(full),
				ModTime:   info.ModTime(),
			})
			continue
		}
		*items = append(*items, model.CleanupCandidate{
			Path:      full,
			SizeBytes: uint64(info.Size()),
			Category:  classifyCleanupCategory(full),
			ModTime:   info.ModTime(),
		})
	}
}

// dirSize sums file sizes over the whole tree under dir, with no depth
// limit, skipping entries it cannot read; it is a best-effort total used only to rank
// candidates, not an authoritative size used at execution time (the
// executor recomputes sizes immediately before acting, per spec §4.10).
func dirSize(dir string) uint64 {
	var total uint64
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		total += uint64(info.Size())
		return nil
	})
	return total
}
