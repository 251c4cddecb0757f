package iotrace

import "strings"

// SanitizePath keeps at most the last two path segments, replacing the rest
// with an ellipsis marker, so telemetry never carries a full path. This is
// deliberately kept separate from the validator package — sanitized paths
// must never be reused for a mutation (spec §9 design notes).
func SanitizePath(path string) string {
	segments := strings.Split(strings.TrimRight(path, "/"), "/")
	var kept []string
	for _, s := range segments {
		if s != "" {
			kept = append(kept, s)
		}
	}
	if len(kept) <= 2 {
		return strings.Join(kept, "/")
	}
	tail := kept[len(kept)-2:]
	return ".../" + strings.Join(tail, "/")
}
