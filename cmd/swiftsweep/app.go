package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ftahirops/swiftsweep/internal/audit"
	"github.com/ftahirops/swiftsweep/internal/config"
	"github.com/ftahirops/swiftsweep/internal/contextbuild"
	"github.com/ftahirops/swiftsweep/internal/executor"
	"github.com/ftahirops/swiftsweep/internal/helper"
	"github.com/ftahirops/swiftsweep/internal/metrics"
	"github.com/ftahirops/swiftsweep/internal/rules"
	"github.com/ftahirops/swiftsweep/internal/rulesengine"
	"github.com/ftahirops/swiftsweep/internal/scheduler"
	"github.com/ftahirops/swiftsweep/internal/validator"
	"go.uber.org/zap"
)

// app bundles the components a command needs, wired once from persisted
// config. Grounded on the teacher's cmd.Run building one engine.Engine per
// invocation; here a CLI invocation builds one app instead.
type app struct {
	log      *zap.SugaredLogger
	cfg      config.Config
	home     string
	cache    *contextbuild.Cache
	engine   *rulesengine.Engine
	executor *executor.Executor
	auditLog *audit.Log
	auditIdx *audit.Index
	sched    *scheduler.Scheduler
	metrics  *metrics.Store
}

func newApp() (*app, error) {
	log := logger()
	cfg, err := loadConfig(log)
	if err != nil {
		return nil, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, ExitCodeError{Code: 1}
	}

	sched := scheduler.New(scheduler.Config{
		MaxConcurrency: cfg.Scheduler.MaxConcurrency,
		MaxQueueSize:   cfg.Scheduler.MaxQueueSize,
		DefaultTimeout: time.Duration(cfg.Scheduler.TimeoutSeconds) * time.Second,
	}, log)

	registry := contextbuild.NewRegistry(log,
		&contextbuild.SystemMetricsCollector{WatchPath: home},
		&contextbuild.CleanupItemsCollector{Roots: contextbuild.DefaultCleanupRoots(home)},
		&contextbuild.DownloadsCollector{DownloadsDir: filepath.Join(home, "Downloads")},
		&contextbuild.InstalledAppsCollector{AppRoots: contextbuild.DefaultAppRoots(home)},
	)
	cache := contextbuild.NewCache(registry, contextbuild.StaleAfter(contextbuild.DefaultTTL))

	engine := rulesengine.New(sched, log)
	rules.RegisterAll(engine)

	v := validator.New(log, home, cfg.AuthorizedRoots)

	auditLog, err := audit.Open(audit.DefaultPath(home))
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	var auditIdx *audit.Index
	if idx, err := audit.OpenIndex(audit.IndexPath(audit.DefaultPath(home))); err == nil {
		auditIdx = idx
	} else {
		log.Warnw("audit index unavailable, queries will fall back to the flat log", "err", err)
	}

	helperClient := helper.New(helperDialer(cfg.HelperSocketPath), 30*time.Second)
	trashDir := filepath.Join(home, ".Trash")
	exec := executor.New(v, helperClient, auditLog, auditIdx, trashDir, log, cfg.HasConfirmedFirstRun, cfg.BigDeleteMaxItems)

	return &app{
		log:      log,
		cfg:      cfg,
		home:     home,
		cache:    cache,
		engine:   engine,
		executor: exec,
		auditLog: auditLog,
		auditIdx: auditIdx,
		sched:    sched,
		metrics:  metrics.NewStore(),
	}, nil
}

// publishSchedulerMetrics folds the scheduler's current status into the
// shared metrics store. Callers invoke this after any operation that runs
// work through a.sched, so --metrics-addr always reflects the last
// invocation's load rather than a stale snapshot.
func (a *app) publishSchedulerMetrics() {
	status := a.sched.Status()
	sample := a.metrics.Snapshot()
	sample.SchedulerRunning = status.Running
	sample.SchedulerPending = status.Pending
	a.metrics.Update(sample)
}

// serveMetrics starts a background HTTP listener exposing a.metrics in
// Prometheus exposition format, grounded on the teacher's
// engine.MetricsStore being served directly as an http.Handler. Bind
// failures are logged, not fatal: metrics are observability, never on the
// critical path of a scan/exec/trace/audit command.
func (a *app) serveMetrics(addr string) {
	if addr == "" {
		return
	}
	srv := &http.Server{Addr: addr, Handler: a.metrics}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Warnw("metrics server exited", "addr", addr, "err", err)
		}
	}()
}

// persistFirstRunConfirmation saves cfg back to disk once the executor has
// consumed its first-invocation state, so the dry-run-by-default guard never
// fires again for this installation. A no-op once already persisted.
func (a *app) persistFirstRunConfirmation() {
	if a.cfg.HasConfirmedFirstRun || !a.executor.FirstRunConfirmed() {
		return
	}
	a.cfg.HasConfirmedFirstRun = true
	if err := config.Save(a.cfg); err != nil {
		a.log.Warnw("failed to persist first-run confirmation", "err", err)
	}
}

// helperDialer opens a unix domain socket connection to the privileged
// helper at socketPath.
func helperDialer(socketPath string) helper.Dialer {
	return func(ctx context.Context) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, "unix", socketPath)
	}
}

func (a *app) close() {
	if a.auditIdx != nil {
		_ = a.auditIdx.Close()
	}
}
