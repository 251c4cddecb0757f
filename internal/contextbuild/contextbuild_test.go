package contextbuild

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ftahirops/swiftsweep/internal/model"
)

func TestClassifyCleanupCategory(t *testing.T) {
	cases := map[string]model.CleanupCategory{
		"/Users/a/repo/node_modules":                         model.CategoryDeveloperCache,
		"/Users/a/.Trash/old-file.zip":                        model.CategoryTrash,
		"/Users/a/Library/Caches/com.google.Chrome/Cache":     model.CategoryBrowserCache,
		"/Users/a/Library/Caches/com.example.widget":          model.CategoryAppCache,
		"/Users/a/Desktop/Screenshot 2026-01-01 at 9.00.00.png": model.CategoryScreenshot,
	}
	for path, want := range cases {
		got := classifyCleanupCategory(path)
		if got != want {
			t.Errorf("classifyCleanupCategory(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestCleanupItemsCollector_ListsAllAndSortsBySize(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		name := filepath.Join(dir, "f"+string(rune('a'+i)))
		size := (i + 1) * 100
		if err := os.WriteFile(name, make([]byte, size), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	c := &CleanupItemsCollector{Roots: []string{dir}}
	out := &model.RecommendationContext{}
	if err := c.Collect(context.Background(), out); err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if len(out.CleanupItems) != 5 {
		t.Fatalf("expected 5 items, got %d", len(out.CleanupItems))
	}
	for i := 1; i < len(out.CleanupItems); i++ {
		if out.CleanupItems[i].SizeBytes > out.CleanupItems[i-1].SizeBytes {
			t.Errorf("items not sorted largest-first at index %d", i)
		}
	}
}

func TestDownloadsCollector_ListsTopLevelOnly(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.dmg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0o755); err != nil {
		t.Fatal(err)
	}

	c := &DownloadsCollector{DownloadsDir: dir}
	out := &model.RecommendationContext{}
	if err := c.Collect(context.Background(), out); err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if len(out.Downloads) != 1 {
		t.Fatalf("expected 1 file (directory excluded), got %d", len(out.Downloads))
	}
}

func TestRegistry_IsolatesCollectorFailure(t *testing.T) {
	reg := NewRegistry(nil,
		&DownloadsCollector{DownloadsDir: "/nonexistent/path/does/not/exist"},
		&InstalledAppsCollector{AppRoots: []string{t.TempDir()}},
	)
	out := reg.CollectAll(context.Background())
	if out.Downloads != nil {
		t.Errorf("expected nil downloads after failed collector, got %v", out.Downloads)
	}
	if out.Timestamp.IsZero() {
		t.Errorf("expected timestamp to be set")
	}
}

func TestCache_RebuildsOnlyWhenStale(t *testing.T) {
	calls := 0
	reg := NewRegistry(nil, collectorFunc(func(ctx context.Context, out *model.RecommendationContext) error {
		calls++
		return nil
	}))
	cache := NewCache(reg, StaleAfter(time.Hour))

	first := cache.Get(context.Background())
	second := cache.Get(context.Background())
	if first != second {
		t.Errorf("expected cached pointer to be reused")
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 collection, got %d", calls)
	}

	cache.Invalidate()
	cache.Get(context.Background())
	if calls != 2 {
		t.Errorf("expected a rebuild after invalidate, got %d calls", calls)
	}
}

type collectorFunc func(ctx context.Context, out *model.RecommendationContext) error

func (f collectorFunc) Name() string { return "test" }
func (f collectorFunc) Collect(ctx context.Context, out *model.RecommendationContext) error {
	return f(ctx, out)
}
