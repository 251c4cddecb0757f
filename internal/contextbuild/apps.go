package contextbuild

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftahirops/swiftsweep/internal/model"
)

// InstalledAppsCollector lists application bundles under a set of
// Applications directories. Last-used time is approximated from the
// bundle's modification time; macOS does not expose a stable, permission-
// free "last launched" timestamp outside Spotlight metadata, and no example
// repo wraps the Spotlight/mdls APIs. Every listed app therefore carries a
// LastUsedAt; this package has no Spotlight-backed collector.
type InstalledAppsCollector struct {
	AppRoots []string
}

// DefaultAppRoots returns the standard per-machine and per-user app
// directories.
func DefaultAppRoots(home string) []string {
	return []string{
		"/Applications",
		filepath.Join(home, "Applications"),
	}
}

func (c *InstalledAppsCollector) Name() string { return "installed_apps" }

func (c *InstalledAppsCollector) Collect(ctx context.Context, out *model.RecommendationContext) error {
	var apps []model.InstalledApp
	for _, root := range c.AppRoots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if ctx.Err() != nil {
				break
			}
			if !entry.IsDir() || !strings.HasSuffix(entry.Name(), ".app") {
				continue
			}
			full := filepath.Join(root, entry.Name())
			info, err := entry.Info()
			if err != nil {
				continue
			}
			lastUsed := info.ModTime()
			apps = append(apps, model.InstalledApp{
				ID:        strings.TrimSuffix(entry.Name(), ".app"),
				Path:      full,
				SizeBytes: dirSize(full),
				LastUsedAt: &lastUsed,
			})
		}
	}
	out.InstalledApps = apps
	return nil
}
