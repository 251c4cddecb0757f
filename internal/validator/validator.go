// Package validator implements the Path Validator (spec §4.1): it decides
// whether a candidate path is eligible for deletion and resolves it to a
// canonical, symlink-free form. It never deletes anything itself and never
// retries — rejections are returned verbatim for the caller to record.
package validator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Intent is the operation the caller wants to perform on a path.
type Intent string

const (
	IntentTrash  Intent = "trash"
	IntentDelete Intent = "delete"
)

// RejectionReason is a typed reason a path was refused.
type RejectionReason string

const (
	ReasonOutsideAllowedRoots  RejectionReason = "outside_allowed_roots"
	ReasonSymlinkEscape        RejectionReason = "symlink_escape"
	ReasonForbiddenSystemPrefix RejectionReason = "forbidden_system_prefix"
	ReasonNotAuthorized        RejectionReason = "not_authorized"
	ReasonIOError              RejectionReason = "io_error"
)

// Sentinel errors for errors.Is-based classification, per SPEC_FULL §4.12.
var (
	ErrOutsideAllowedRoots   = errors.New("path outside allowed roots")
	ErrSymlinkEscape         = errors.New("symlink escapes allowed roots")
	ErrForbiddenSystemPrefix = errors.New("path under a forbidden system prefix")
	ErrNotAuthorized         = errors.New("path not authorized for deletion")
	ErrIO                    = errors.New("io error resolving path")
)

// RejectionError pairs a typed reason with its sentinel error.
type RejectionError struct {
	Reason RejectionReason
	Path   string
	err    error
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Path)
}

func (e *RejectionError) Unwrap() error { return e.err }

func reject(reason RejectionReason, path string, sentinel error) *RejectionError {
	return &RejectionError{Reason: reason, Path: path, err: sentinel}
}

// ResolveOutcome describes whether the resolved path existed on disk.
type ResolveOutcome string

const (
	OutcomeExisted ResolveOutcome = "existed"
	OutcomeMissing ResolveOutcome = "missing"
)

// Resolution is the successful result of validating a path.
type Resolution struct {
	CanonicalPath string
	Outcome       ResolveOutcome
	HelperEligible bool // true if this path requires the privileged helper for delete
}

// forbiddenSystemPrefixes are never eligible for deletion, trash or delete.
var forbiddenSystemPrefixes = []string{
	"/System",
	"/usr",
	"/bin",
	"/sbin",
	"/private/var",
}

// forbiddenLibrarySubtrees are /Library subtrees that are never eligible even
// though /Library itself may contain allowlisted caches.
var forbiddenLibrarySubtrees = []string{
	"/Library/Apple",
	"/Library/CoreServices",
	"/Library/Extensions",
	"/Library/Keychains",
}

// Validator decides path eligibility under the current authorization model.
type Validator struct {
	log *zap.SugaredLogger

	// authorizedRoots are user-granted directory bookmarks, resolved to
	// canonical absolute paths.
	authorizedRoots []string

	// alwaysSafeRoots are fixed per-user locations safe for trash regardless
	// of explicit authorization (caches, trash, downloads, desktop).
	alwaysSafeRoots []string

	// helperEligibleRoots is the stricter allowlist required for `delete`
	// (as opposed to `trash`), per rules whose helper_required capability is
	// declared.
	helperEligibleRoots []string
}

// New builds a Validator given the user's home directory and the current set
// of authorized roots (already resolved to absolute paths by the caller).
// extraHelperEligibleRoots lets callers (tests, or an alternate deployment
// layout) widen the fixed helper-eligible allowlist beyond the standard
// system cache locations.
func New(log *zap.SugaredLogger, home string, authorizedRoots []string, extraHelperEligibleRoots ...string) *Validator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	helperEligibleRoots := []string{
		filepath.Join(home, "Library", "Caches"),
		"/Library/Caches",
		"/Library/Application Support",
	}
	helperEligibleRoots = append(helperEligibleRoots, extraHelperEligibleRoots...)
	return &Validator{
		log:             log,
		authorizedRoots: append([]string{}, authorizedRoots...),
		alwaysSafeRoots: []string{
			filepath.Join(home, "Library", "Caches"),
			filepath.Join(home, ".Trash"),
			filepath.Join(home, "Downloads"),
			filepath.Join(home, "Desktop"),
		},
		helperEligibleRoots: helperEligibleRoots,
	}
}

// Resolve is the Path Validator's sole entry point (spec §4.1 algorithm).
func (v *Validator) Resolve(path string, intent Intent) (Resolution, error) {
	if !filepath.IsAbs(path) {
		return Resolution{}, reject(ReasonNotAuthorized, path, ErrNotAuthorized)
	}

	canonical, outcome, err := resolveSymlinks(path)
	if err != nil {
		v.log.Warnw("path resolution io error", "path", path, "err", err)
		return Resolution{}, reject(ReasonIOError, path, fmt.Errorf("%w: %v", ErrIO, err))
	}

	// Step 1: symlink escape check — a path whose input form lies under an
	// authorized or always-safe root must still land under one of those
	// roots once its symlinks are resolved.
	clean := filepath.Clean(path)
	inputInside := underAny(clean, v.authorizedRoots) || underAny(clean, v.alwaysSafeRoots)
	if inputInside && !underAny(canonical, v.authorizedRoots) && !underAny(canonical, v.alwaysSafeRoots) {
		return Resolution{}, reject(ReasonSymlinkEscape, path, ErrSymlinkEscape)
	}

	// Step 2: forbidden system prefixes, unconditional.
	if hasForbiddenPrefix(canonical) {
		return Resolution{}, reject(ReasonForbiddenSystemPrefix, path, ErrForbiddenSystemPrefix)
	}

	// Step 3: must be inside an authorized root or an always-safe location.
	authorized := underAny(canonical, v.authorizedRoots) || underAny(canonical, v.alwaysSafeRoots)
	if !authorized {
		return Resolution{}, reject(ReasonOutsideAllowedRoots, path, ErrOutsideAllowedRoots)
	}

	helperEligible := underAny(canonical, v.helperEligibleRoots)

	// Step 4: delete (not trash) requires the stricter helper-eligible
	// allowlist when the path isn't already inside an explicitly authorized
	// root — unauthorized-but-always-safe locations may only be trashed.
	if intent == IntentDelete && !underAny(canonical, v.authorizedRoots) && !helperEligible {
		return Resolution{}, reject(ReasonNotAuthorized, path, ErrNotAuthorized)
	}

	return Resolution{
		CanonicalPath:  canonical,
		Outcome:        outcome,
		HelperEligible: helperEligible,
	}, nil
}

func underAny(path string, roots []string) bool {
	for _, r := range roots {
		if r == "" {
			continue
		}
		if path == r || strings.HasPrefix(path, r+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func hasForbiddenPrefix(path string) bool {
	for _, p := range forbiddenSystemPrefixes {
		if path == p || strings.HasPrefix(path, p+string(filepath.Separator)) {
			return true
		}
	}
	for _, p := range forbiddenLibrarySubtrees {
		if path == p || strings.HasPrefix(path, p+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// resolveSymlinks follows symlinks to completion and reports whether the
// final target exists. A missing path is not an error: the ancestor chain is
// still resolved as far as it exists, matching spec's "missing" outcome.
func resolveSymlinks(path string) (string, ResolveOutcome, error) {
	clean := filepath.Clean(path)
	resolved, err := filepath.EvalSymlinks(clean)
	if err == nil {
		return resolved, OutcomeExisted, nil
	}
	if !os.IsNotExist(err) {
		return "", "", err
	}
	// Walk up to the nearest existing ancestor, resolve that, then
	// re-append the missing suffix.
	parent := filepath.Dir(clean)
	if parent == clean {
		return clean, OutcomeMissing, nil
	}
	resolvedParent, _, perr := resolveSymlinks(parent)
	if perr != nil {
		return "", "", perr
	}
	return filepath.Join(resolvedParent, filepath.Base(clean)), OutcomeMissing, nil
}
