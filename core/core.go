package core

import (
	"strings"

	"github.com/google/uuid"
)

// Intent is the classified category of a user turn. The set is closed: any
// value outside the three constants below is rejected by
// IntentDecision.Validate, never coerced to a default.
type Intent string

const (
	// IntentQA answers a question grounded in document content.
	IntentQA Intent = "qa"
	// IntentSummarization condenses one or more documents.
	IntentSummarization Intent = "summarization"
	// IntentCalculation computes a numeric result from document fields.
	IntentCalculation Intent = "calculation"
)

// Valid reports whether the intent is a member of the closed enumeration.
func (i Intent) Valid() bool {
	switch i {
	case IntentQA, IntentSummarization, IntentCalculation:
		return true
	}
	return false
}

// Step identifies a node of the workflow state machine. Step names are also
// the entries appended to AgentState.ActionsTaken, so they double as the
// per-turn execution trace vocabulary.
type Step string

const (
	// StepClassify is the initial state of every turn.
	StepClassify Step = "classify"
	// StepQA handles question answering.
	StepQA Step = "qa_agent"
	// StepSummarization handles document summarization.
	StepSummarization Step = "summarization_agent"
	// StepCalculation handles document-derived arithmetic.
	StepCalculation Step = "calculation_agent"
	// StepUpdateMemory folds the turn into conversational memory. Terminal.
	StepUpdateMemory Step = "update_memory"
)

// Step maps an intent to the workflow step that handles it.
func (i Intent) Step() Step {
	switch i {
	case IntentQA:
		return StepQA
	case IntentSummarization:
		return StepSummarization
	case IntentCalculation:
		return StepCalculation
	}
	return ""
}

// NewID returns a globally unique identifier (UUID v4 string). Used for
// session identifiers and per-turn correlation ids.
func NewID() string { return uuid.NewString() }

// ValidID reports whether id is safe to embed in a file name. Session and
// checkpoint identifiers become path components of the durable stores, so
// path separators and directory references are rejected.
func ValidID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`)
}

// Turn carries the correlation identifiers of one user exchange through the
// workflow: the owning session and a fresh per-turn id minted by the runner.
type Turn struct {
	SessionID string
	TurnID    string
}
