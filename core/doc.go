// Package core defines the shared types and narrow interfaces the rest of
// docpilot is built against: the per-turn AgentState threaded through the
// workflow, the persisted SessionRecord, the validated IntentDecision, the
// Tool / SessionStore / CheckpointStore / AuditLog contracts and the error
// taxonomy. Concrete implementations live in their own packages (session,
// audit, tools, workflow); core deliberately contains no I/O.
package core
