package core

// AgentState is the single mutable object threaded through the workflow for
// one turn. It is created by the runner when a user message arrives and
// discarded after the turn commits; the durable parts (summary, active
// documents) are folded into the SessionRecord.
//
// Ownership rules:
//   - ConversationSummary and ActiveDocuments are written only by the memory
//     compressor; every other component treats them as read-only.
//   - NextStep is written once by the intent classifier and consumed once by
//     the workflow dispatcher. It is never persisted.
//   - ActionsTaken is append-only within a turn and reset at turn start.
type AgentState struct {
	// UserInput is the latest user message.
	UserInput string `json:"user_input"`

	// ConversationSummary is the compressed running history.
	ConversationSummary string `json:"conversation_summary"`

	// ActiveDocuments is the bounded set of recently referenced document
	// identifiers, ordered least recently used first. Anaphoric references
	// ("it", "that invoice") resolve against the tail of this list.
	ActiveDocuments []string `json:"active_documents"`

	// NextStep is the routing decision out of the classify state.
	NextStep Step `json:"-"`

	// ActionsTaken is the per-turn trace of workflow steps visited.
	ActionsTaken []string `json:"actions_taken"`

	// TouchedDocuments lists the document identifiers the processing path
	// read or referenced this turn, in first-touch order. Consumed by the
	// memory compressor to update ActiveDocuments.
	TouchedDocuments []string `json:"touched_documents"`

	// Response is the final user-visible output of the turn.
	Response string `json:"response"`
}

// NewAgentState builds the state for a fresh turn from the persisted session
// record and the incoming user message.
func NewAgentState(rec SessionRecord, userInput string) *AgentState {
	active := make([]string, len(rec.ActiveDocuments))
	copy(active, rec.ActiveDocuments)
	return &AgentState{
		UserInput:           userInput,
		ConversationSummary: rec.ConversationSummary,
		ActiveDocuments:     active,
	}
}

// Visit appends a workflow step to the per-turn trace.
func (s *AgentState) Visit(step Step) {
	s.ActionsTaken = append(s.ActionsTaken, string(step))
}

// Touch records a document identifier as referenced this turn. Duplicate
// touches keep the first-touch position.
func (s *AgentState) Touch(docID string) {
	for _, id := range s.TouchedDocuments {
		if id == docID {
			return
		}
	}
	s.TouchedDocuments = append(s.TouchedDocuments, docID)
}

// Clone returns a deep copy safe for independent mutation.
func (s *AgentState) Clone() *AgentState {
	clone := *s
	clone.ActiveDocuments = append([]string(nil), s.ActiveDocuments...)
	clone.ActionsTaken = append([]string(nil), s.ActionsTaken...)
	clone.TouchedDocuments = append([]string(nil), s.TouchedDocuments...)
	return &clone
}

// Record folds the durable parts of the state into a SessionRecord for
// persistence under the given session identifier.
func (s *AgentState) Record(sessionID string) SessionRecord {
	return SessionRecord{
		SessionID:           sessionID,
		ConversationSummary: s.ConversationSummary,
		ActiveDocuments:     append([]string(nil), s.ActiveDocuments...),
	}
}

// SessionRecord is the persisted, cross-turn carrier of conversational
// context. It is owned exclusively by the session store: the workflow only
// ever receives a copy and returns an updated copy, and the record is
// rewritten wholesale at the end of every committed turn.
type SessionRecord struct {
	SessionID           string   `json:"session_id"`
	ConversationSummary string   `json:"conversation_summary"`
	ActiveDocuments     []string `json:"active_documents"`
}
