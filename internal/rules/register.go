package rules

import "github.com/ftahirops/swiftsweep/internal/rulesengine"

// All returns one instance of every built-in rule, in the order they
// should be registered. New rule types are added here exactly once.
func All() []rulesengine.Rule {
	return []rulesengine.Rule{
		LowDiskSpace{},
		OldDownloads{},
		DeveloperCaches{},
		LargeCaches{},
		UnusedApps{},
		ScreenshotCleanup{},
		BrowserCache{},
		TrashReminder{},
		MailAttachments{},
	}
}

// RegisterAll registers every built-in rule with engine.
func RegisterAll(engine *rulesengine.Engine) {
	for _, r := range All() {
		engine.Register(r)
	}
}
