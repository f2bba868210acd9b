package core

// SessionStore persists session records. The store is the sole owner of the
// durable record; callers receive copies.
type SessionStore interface {
	// Start returns a usable session identifier. An empty argument mints a
	// fresh globally-unique id with an empty record; a non-empty argument is
	// reused whether or not a persisted record exists yet.
	Start(sessionID string) (string, error)

	// Load returns the record for the given id, or an empty record (with the
	// id filled in) if none has been persisted.
	Load(sessionID string) (SessionRecord, error)

	// Save persists the full record, overwriting any prior version. The
	// write must be atomic: a failure mid-write must leave the previously
	// committed record intact.
	Save(rec SessionRecord) error
}

// CheckpointStore saves and restores the workflow engine's terminal state,
// keyed by session identifier so conversational memory and graph checkpoint
// stay in lockstep. An in-memory implementation suffices for single-process
// use; the interface is swappable for durable storage without touching the
// engine.
type CheckpointStore interface {
	SaveCheckpoint(key string, state *AgentState) error
	LoadCheckpoint(key string) (*AgentState, bool, error)
}
