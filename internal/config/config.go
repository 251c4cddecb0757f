// Package config persists user preferences: rule enablement/thresholds,
// user-authorized directories beyond the always-safe roots, and the
// scheduler's tuning knobs. Directly adapted from the teacher's
// config.Config/Default/Path/Load/Save shape.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ftahirops/swiftsweep/internal/model"
	"go.uber.org/zap"
)

// Config holds everything a SwiftSweep run needs that the user can override.
type Config struct {
	RuleSettings     model.RuleSettings  `json:"rule_settings"`
	AuthorizedRoots  []string            `json:"authorized_roots"`
	DefaultMode      model.ExecutionMode `json:"default_mode"`
	Scheduler        SchedulerConfig     `json:"scheduler"`
	HelperSocketPath string              `json:"helper_socket_path"`

	// HasConfirmedFirstRun tracks whether this installation has completed at
	// least one exec invocation. Until it is true, the executor forces
	// dry_run=true regardless of what the caller requested; Save persists it
	// the moment that first invocation completes.
	HasConfirmedFirstRun bool `json:"has_confirmed_first_run"`

	// BigDeleteMaxItems refuses an exec/exec-batch call whose deduplicated
	// item count exceeds it, unless the caller passes the override flag.
	// Zero disables the guard.
	BigDeleteMaxItems int `json:"big_delete_max_items"`
}

// SchedulerConfig mirrors scheduler.Config's tunable fields for
// serialization without internal/config importing internal/scheduler.
type SchedulerConfig struct {
	MaxConcurrency int `json:"max_concurrency"`
	MaxQueueSize   int `json:"max_queue_size"`
	TimeoutSeconds int `json:"timeout_seconds"`
}

// Default returns a config with sensible defaults.
func Default() Config {
	return Config{
		RuleSettings:    model.RuleSettings{},
		AuthorizedRoots: nil,
		DefaultMode:     model.ModeTrash,
		Scheduler: SchedulerConfig{
			MaxConcurrency: 4,
			MaxQueueSize:   256,
			TimeoutSeconds: 30,
		},
		HelperSocketPath:     "/var/run/swiftsweep-helper.sock",
		HasConfirmedFirstRun: false,
		BigDeleteMaxItems:    500,
	}
}

// Path returns ~/Library/Application Support/swiftsweep/config.json (or
// XDG_CONFIG_HOME/swiftsweep/config.json when set, matching the teacher's
// XDG-first lookup). Returns empty string if no home directory can be
// determined, deliberately refusing to fall back to a world-writable /tmp
// path.
func Path() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "swiftsweep", "config.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Library", "Application Support", "swiftsweep", "config.json")
}

// Load loads config from disk, returning defaults on any read or parse
// error (a missing/corrupt config file must never block a scan).
func Load(log *zap.SugaredLogger) Config {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	cfg := Default()
	p := Path()
	if p == "" {
		return cfg
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		log.Warnw("config parse error, using defaults", "path", p, "error", err)
		return Default()
	}
	return cfg
}

// Save writes the config to disk as indented JSON under 0700/0600
// permissions.
func Save(cfg Config) error {
	path := Path()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
