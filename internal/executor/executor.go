// Package executor implements the Action Executor (spec §4.10): it turns
// validated recommendation actions into filesystem mutations, one item at a
// time, with per-item results and audit logging. Grounded on
// collector/process.go's per-item loop over /proc entries (read one PID's
// stats, continue past one that fails rather than aborting the rest),
// generalized from "read one process's stats" to "mutate one path".
package executor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ftahirops/swiftsweep/internal/audit"
	"github.com/ftahirops/swiftsweep/internal/helper"
	"github.com/ftahirops/swiftsweep/internal/model"
	"github.com/ftahirops/swiftsweep/internal/validator"
	"go.uber.org/zap"
)

// ErrBigDeleteGuard is returned when a call's deduplicated item count exceeds
// the configured threshold and the caller did not pass the override.
var ErrBigDeleteGuard = errors.New("batch exceeds the configured big-delete item threshold")

// ProgressFunc is invoked after each item completes, with the number done
// and the total in the current call. Either argument may be ignored.
type ProgressFunc func(done, total int)

// Executor validates, deduplicates, and mutates paths on behalf of
// recommendation actions.
type Executor struct {
	validator  *validator.Validator
	helper     *helper.Client
	auditLog   *audit.Log
	auditIndex *audit.Index
	log        *zap.SugaredLogger

	// trashDir is where ModeTrash moves are staged, normally ~/.Trash.
	trashDir string

	// mutateFn performs the real filesystem mutation; overridable in tests
	// to simulate failures (e.g. permission errors) without requiring real
	// restricted filesystem state.
	mutateFn func(path string, mode model.ExecutionMode) error

	mu sync.Mutex
	// firstRunConfirmed gates the dry-run-by-default first-run guard: false
	// until this Executor (seeded from persisted config) has completed one
	// invocation, real or forced.
	firstRunConfirmed bool
	// bigDeleteMaxItems disables the big-delete guard when <= 0.
	bigDeleteMaxItems int
}

// New builds an Executor. auditIndex may be nil if the sqlite sibling index
// is unavailable; the flat audit log remains the source of truth either way.
// firstRunConfirmed and bigDeleteMaxItems seed the two safety guards from
// persisted config; see config.Config.HasConfirmedFirstRun and
// config.Config.BigDeleteMaxItems.
func New(v *validator.Validator, h *helper.Client, auditLog *audit.Log, auditIndex *audit.Index, trashDir string, log *zap.SugaredLogger, firstRunConfirmed bool, bigDeleteMaxItems int) *Executor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	e := &Executor{
		validator:         v,
		helper:            h,
		auditLog:          auditLog,
		auditIndex:        auditIndex,
		trashDir:          trashDir,
		log:               log,
		firstRunConfirmed: firstRunConfirmed,
		bigDeleteMaxItems: bigDeleteMaxItems,
	}
	e.mutateFn = e.mutate
	return e
}

// FirstRunConfirmed reports whether this Executor has completed an
// invocation yet, forced or not. Callers persist this back to config after
// each command so the guard only ever fires on a fresh installation.
func (e *Executor) FirstRunConfirmed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.firstRunConfirmed
}

// resolveDryRun applies the dry-run-by-default first-run guard: the first
// invocation this Executor ever sees is forced into a dry run regardless of
// what the caller requested; every invocation after that honors requested
// as-is. Every invocation, forced or not, consumes the "first run" state
// exactly once.
func (e *Executor) resolveDryRun(requested bool) (actual bool, forced bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.firstRunConfirmed {
		return requested, false
	}
	e.firstRunConfirmed = true
	if requested {
		return requested, false
	}
	return true, true
}

// checkBigDelete refuses a call whose itemCount exceeds the configured
// threshold, unless override is set or the guard is disabled.
func (e *Executor) checkBigDelete(itemCount int, override bool) error {
	if e.bigDeleteMaxItems <= 0 || override || itemCount <= e.bigDeleteMaxItems {
		return nil
	}
	return fmt.Errorf("%w: %d items exceeds the %d-item limit", ErrBigDeleteGuard, itemCount, e.bigDeleteMaxItems)
}

// Execute normalizes paths, deduplicates ancestors, and mutates each
// remaining path under mode. It appends exactly one AuditEntry when the
// resolved dryRun is false, per spec §8 property 8. overrideBigDelete
// bypasses the big-delete guard for this call.
func (e *Executor) Execute(ctx context.Context, paths []string, mode model.ExecutionMode, dryRun bool, overrideBigDelete bool, ruleID string, progress ProgressFunc) (model.ExecutionResult, error) {
	normalized := e.normalize(paths, mode)

	if err := e.checkBigDelete(len(normalized), overrideBigDelete); err != nil {
		e.recordGuardRefusal(ruleID, mode, len(normalized), err)
		return guardRefusalResult(normalized), err
	}

	actualDryRun, forced := e.resolveDryRun(dryRun)
	result, runErr := e.runItems(ctx, normalized, mode, actualDryRun, progress)
	result.ForcedDryRun = forced
	e.recordAudit(ruleID, mode, actualDryRun, result)
	return result, runErr
}

// runItems mutates (or, under dryRun, merely sizes) each already-normalized
// path, honoring cooperative cancellation.
func (e *Executor) runItems(ctx context.Context, normalized []string, mode model.ExecutionMode, dryRun bool, progress ProgressFunc) (model.ExecutionResult, error) {
	var result model.ExecutionResult
	total := len(normalized)
	for i, path := range normalized {
		select {
		case <-ctx.Done():
			// Cooperative cancellation: remaining items are skipped, not
			// silently dropped (spec §5).
			for _, remaining := range normalized[i:] {
				result.Add(model.ItemResult{Path: remaining, Status: model.ItemSkipped})
			}
			if progress != nil {
				progress(total, total)
			}
			return result, ctx.Err()
		default:
		}

		item := e.executeOne(path, mode, dryRun)
		result.Add(item)
		if progress != nil {
			progress(i+1, total)
		}
	}
	return result, nil
}

// ExecuteBatch collects the paths referenced by every action of every
// recommendation and runs each recommendation's paths as its own group,
// appending one audit entry per group; results are summed into one
// ExecutionResult. Deduplication happens within each recommendation's paths,
// not across recommendations. The big-delete
// guard and the first-run dry-run guard are both resolved once across the
// whole batch, not per recommendation, so a batch split across many small
// recommendations cannot slip past either guard and a batch doesn't flip
// from forced-dry-run to real mid-way through.
func (e *Executor) ExecuteBatch(ctx context.Context, recs []model.Recommendation, mode model.ExecutionMode, dryRun bool, overrideBigDelete bool, progress ProgressFunc) (model.ExecutionResult, error) {
	type group struct {
		ruleID     string
		normalized []string
	}
	var groups []group
	total := 0
	for _, rec := range recs {
		paths := pathsForMode(rec, mode)
		if len(paths) == 0 {
			continue
		}
		normalized := e.normalize(paths, mode)
		if len(normalized) == 0 {
			continue
		}
		groups = append(groups, group{ruleID: rec.RuleID, normalized: normalized})
		total += len(normalized)
	}

	if err := e.checkBigDelete(total, overrideBigDelete); err != nil {
		var aggregate model.ExecutionResult
		for _, g := range groups {
			agg := guardRefusalResult(g.normalized)
			aggregate.Items = append(aggregate.Items, agg.Items...)
			aggregate.SkippedCount += agg.SkippedCount
		}
		e.recordGuardRefusal("exec_batch", mode, total, err)
		return aggregate, err
	}

	actualDryRun, forced := e.resolveDryRun(dryRun)

	var aggregate model.ExecutionResult
	for gi, g := range groups {
		result, err := e.runItems(ctx, g.normalized, mode, actualDryRun, progress)
		result.ForcedDryRun = forced
		e.recordAudit(g.ruleID, mode, actualDryRun, result)
		aggregate.Items = append(aggregate.Items, result.Items...)
		aggregate.SuccessCount += result.SuccessCount
		aggregate.FailedCount += result.FailedCount
		aggregate.SkippedCount += result.SkippedCount
		aggregate.TotalBytes += result.TotalBytes
		if err != nil {
			// Groups not yet started are reported skipped, like the
			// remaining items of the interrupted group.
			for _, rest := range groups[gi+1:] {
				for _, p := range rest.normalized {
					aggregate.Add(model.ItemResult{Path: p, Status: model.ItemSkipped})
				}
			}
			aggregate.ForcedDryRun = forced
			return aggregate, err
		}
	}
	aggregate.ForcedDryRun = forced
	return aggregate, nil
}

// guardRefusalResult reports every candidate path as skipped: the guard
// stopped the call before any of them were touched.
func guardRefusalResult(normalized []string) model.ExecutionResult {
	var result model.ExecutionResult
	for _, p := range normalized {
		result.Add(model.ItemResult{Path: p, Status: model.ItemSkipped})
	}
	return result
}

// pathsForMode collects every path from actions whose type matches the
// requested mode (cleanup_trash for trash, cleanup_delete for delete).
func pathsForMode(rec model.Recommendation, mode model.ExecutionMode) []string {
	wantType := model.ActionCleanupTrash
	if mode == model.ModeDelete {
		wantType = model.ActionCleanupDelete
	}
	var paths []string
	for _, a := range rec.Actions {
		if a.Type == wantType {
			paths = append(paths, a.Payload.Paths...)
		}
	}
	return paths
}

// normalize canonicalizes every path through the validator, drops any path
// whose validation fails (the caller never sees them, matching spec's
// "proper descendant ... parent wins" step being purely about the
// successfully-resolved set), sorts, and drops proper descendants.
func (e *Executor) normalize(paths []string, mode model.ExecutionMode) []string {
	intent := validator.IntentTrash
	if mode == model.ModeDelete {
		intent = validator.IntentDelete
	}

	canonical := make([]string, 0, len(paths))
	seen := make(map[string]bool)
	for _, p := range paths {
		res, err := e.validator.Resolve(p, intent)
		if err != nil {
			e.log.Warnw("path rejected during normalization", "path", p, "err", err)
			continue
		}
		if seen[res.CanonicalPath] {
			continue
		}
		seen[res.CanonicalPath] = true
		canonical = append(canonical, res.CanonicalPath)
	}

	sort.Strings(canonical)

	out := make([]string, 0, len(canonical))
	for i, p := range canonical {
		if isDescendantOfAny(p, canonical[:i]) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func isDescendantOfAny(path string, candidates []string) bool {
	for _, ancestor := range candidates {
		if path == ancestor {
			return true
		}
		if strings.HasPrefix(path, strings.TrimRight(ancestor, "/")+"/") {
			return true
		}
	}
	return false
}

// executeOne runs the per-item algorithm of spec §4.10 step 2-3 for a single
// already-canonicalized path.
func (e *Executor) executeOne(path string, mode model.ExecutionMode, dryRun bool) model.ItemResult {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.ItemResult{Path: path, Status: model.ItemSkipped}
	}
	if err != nil {
		return model.ItemResult{Path: path, Status: model.ItemFailed, Error: err.Error()}
	}

	size, err := recursiveSize(path, info)
	if err != nil {
		e.log.Warnw("size calculation failed, continuing with partial total", "path", path, "err", err)
	}

	if dryRun {
		return model.ItemResult{Path: path, Status: model.ItemSuccess, SizeBytes: size}
	}

	mutErr := e.mutateFn(path, mode)
	if mutErr != nil && isPermissionError(mutErr) && e.helper != nil {
		res, resErr := e.validator.Resolve(path, intentFor(mode))
		if resErr == nil && res.HelperEligible {
			if helperErr := e.helper.DeleteOne(context.Background(), path, mode); helperErr == nil {
				return model.ItemResult{Path: path, Status: model.ItemSuccess, SizeBytes: size}
			} else {
				mutErr = helperErr
			}
		}
	}
	if mutErr != nil {
		return model.ItemResult{Path: path, Status: model.ItemFailed, SizeBytes: size, Error: mutErr.Error()}
	}
	return model.ItemResult{Path: path, Status: model.ItemSuccess, SizeBytes: size}
}

func intentFor(mode model.ExecutionMode) validator.Intent {
	if mode == model.ModeDelete {
		return validator.IntentDelete
	}
	return validator.IntentTrash
}

// mutate performs the real (non-dry-run) filesystem operation.
func (e *Executor) mutate(path string, mode model.ExecutionMode) error {
	if mode == model.ModeDelete {
		return os.RemoveAll(path)
	}
	return e.moveToTrash(path)
}

// moveToTrash renames path into the trash directory, disambiguating on name
// collision. There is no Finder-trash API in reach here, so this is a plain
// rename-based approximation: the original name and a numeric suffix if
// needed, matching how a script-driven cleanup would implement "trash"
// without linking against AppKit.
func (e *Executor) moveToTrash(path string) error {
	if err := os.MkdirAll(e.trashDir, 0700); err != nil {
		return fmt.Errorf("prepare trash directory: %w", err)
	}
	base := filepath.Base(path)
	dest := filepath.Join(e.trashDir, base)
	for i := 1; ; i++ {
		if _, err := os.Lstat(dest); errors.Is(err, fs.ErrNotExist) {
			break
		}
		dest = filepath.Join(e.trashDir, fmt.Sprintf("%s %d", base, i))
	}
	if err := os.Rename(path, dest); err != nil {
		return err
	}
	return nil
}

// recursiveSize sums the size of every regular file under path (or path
// itself, if it is a regular file).
func recursiveSize(path string, info os.FileInfo) (uint64, error) {
	if !info.IsDir() {
		if info.Mode().IsRegular() {
			return uint64(info.Size()), nil
		}
		return 0, nil
	}
	var total uint64
	var walkErr error
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			walkErr = err
			return nil
		}
		if d.Type().IsRegular() {
			if fi, ferr := d.Info(); ferr == nil {
				total += uint64(fi.Size())
			}
		}
		return nil
	})
	return total, walkErr
}

// isPermissionError classifies an OS error as an authorization failure
// eligible for helper escalation per spec §4.10 step 3.
func isPermissionError(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}

// recordAudit appends exactly one AuditEntry for a non-dry-run call,
// mirroring it into the queryable index when one is configured.
func (e *Executor) recordAudit(ruleID string, mode model.ExecutionMode, dryRun bool, result model.ExecutionResult) {
	if dryRun || e.auditLog == nil {
		return
	}
	actionType := model.ActionCleanupTrash
	if mode == model.ModeDelete {
		actionType = model.ActionCleanupDelete
	}
	entry := model.AuditEntry{
		Timestamp:      time.Now(),
		RuleID:         ruleID,
		ActionType:     actionType,
		ItemCount:      len(result.Items),
		ItemsProcessed: result.SuccessCount,
		TotalBytes:     result.TotalBytes,
		Success:        result.FailedCount == 0,
	}
	if result.FailedCount > 0 {
		entry.Error = fmt.Sprintf("%d of %d items failed", result.FailedCount, len(result.Items))
	}
	if err := e.auditLog.Append(entry); err != nil {
		e.log.Errorw("failed to append audit entry", "rule_id", ruleID, "err", err)
		return
	}
	if e.auditIndex != nil {
		if err := e.auditIndex.Insert(context.Background(), entry); err != nil {
			e.log.Warnw("failed to index audit entry", "rule_id", ruleID, "err", err)
		}
	}
}

// recordGuardRefusal logs a blocked big-delete attempt to the audit trail
// even though nothing was mutated, so a log reviewer sees the attempt and
// the refusal rather than silence.
func (e *Executor) recordGuardRefusal(ruleID string, mode model.ExecutionMode, itemCount int, guardErr error) {
	if e.auditLog == nil {
		return
	}
	actionType := model.ActionCleanupTrash
	if mode == model.ModeDelete {
		actionType = model.ActionCleanupDelete
	}
	entry := model.AuditEntry{
		Timestamp:  time.Now(),
		RuleID:     ruleID,
		ActionType: actionType,
		ItemCount:  itemCount,
		Success:    false,
		Error:      guardErr.Error(),
	}
	if err := e.auditLog.Append(entry); err != nil {
		e.log.Errorw("failed to append audit entry for blocked big-delete", "rule_id", ruleID, "err", err)
		return
	}
	if e.auditIndex != nil {
		if err := e.auditIndex.Insert(context.Background(), entry); err != nil {
			e.log.Warnw("failed to index audit entry for blocked big-delete", "rule_id", ruleID, "err", err)
		}
	}
}
