package core

import "time"

// AuditEntry is one append-only record of a tool invocation. Entries are
// never mutated or deleted; failed attempts are recorded like successes with
// Error populated.
type AuditEntry struct {
	SessionID string         `json:"session_id"`
	TurnID    string         `json:"turn_id"`
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
	Result    any            `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// AuditLog records tool invocations keyed by session identifier.
type AuditLog interface {
	Record(entry AuditEntry) error
}
