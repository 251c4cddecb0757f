package model

import "time"

// AuditEntry is an append-only record of one executed action. Once appended
// it is never mutated.
type AuditEntry struct {
	Timestamp      time.Time     `json:"timestamp"`
	RuleID         string        `json:"rule_id"`
	ActionType     ActionType    `json:"action_type"`
	ItemCount      int           `json:"item_count"`
	ItemsProcessed int           `json:"items_processed"`
	TotalBytes     uint64        `json:"total_bytes"`
	Success        bool          `json:"success"`
	Error          string        `json:"error,omitempty"`
}
