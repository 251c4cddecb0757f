package contextbuild

import (
	"sort"
	"strings"

	"github.com/ftahirops/swiftsweep/internal/model"
)

// categoryAccum accumulates weighted evidence for one CleanupCategory
// candidate, adapted from the teacher's identity.roleAccum: instead of
// scoring "what role does this host play" from process/port/container
// evidence, it scores "what kind of cache is this directory" from path
// segment evidence.
type categoryAccum struct {
	category model.CleanupCategory
	score    int
}

func (a *categoryAccum) add(points int) { a.score += points }

// classifyCleanupCategory inspects a path's segments and assigns it the
// highest-scoring CleanupCategory. Ties go to the category listed first in
// accums; a path with no evidence at all is CategoryOther.
func classifyCleanupCategory(path string) model.CleanupCategory {
	lower := strings.ToLower(path)
	segs := strings.Split(lower, "/")
	has := func(substrs ...string) bool {
		for _, s := range segs {
			for _, sub := range substrs {
				if strings.Contains(s, sub) {
					return true
				}
			}
		}
		return false
	}

	accums := []*categoryAccum{
		{category: model.CategoryDeveloperCache},
		{category: model.CategoryAppCache},
		{category: model.CategoryBrowserCache},
		{category: model.CategoryTrash},
		{category: model.CategoryMailAttachment},
		{category: model.CategoryScreenshot},
	}
	devCache, appCache, browserCache, trash, mail, screenshot := accums[0], accums[1], accums[2], accums[3], accums[4], accums[5]

	if has("node_modules", ".gradle", ".cargo", "xcode", "deriveddata", "go-build", "go/pkg/mod", ".npm", "pod cache", "cocoapods") {
		devCache.add(40)
	}
	if has("xcode/deriveddata", "xcode/archives", "simulator") {
		devCache.add(30)
	}
	if has("safari", "chrome", "firefox", "chromium", "com.google.chrome", "com.apple.safari", "org.mozilla.firefox") && has("cache") {
		browserCache.add(45)
	}
	if strings.Contains(lower, "/.trash") {
		trash.add(60)
	}
	if has("mail downloads", "com.apple.mail") {
		mail.add(45)
	}
	if has("screenshot", "screen shot") {
		screenshot.add(45)
	}
	if strings.Contains(lower, "library/caches") {
		appCache.add(20)
	}

	best := accums[0]
	for _, a := range accums[1:] {
		if a.score > best.score {
			best = a
		}
	}
	if best.score == 0 {
		return model.CategoryOther
	}
	return best.category
}

// sortCandidatesBySize orders candidates largest-first, a stable secondary
// ordering used before the rule engine imposes its own total order.
func sortCandidatesBySize(items []model.CleanupCandidate) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].SizeBytes > items[j].SizeBytes
	})
}
