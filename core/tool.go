package core

import (
	"context"

	"github.com/karsten42/docpilot/logging"
)

// Tool is the interface for the four corpus capabilities (search, reader,
// statistics, calculator). Implementations must:
//   - validate arguments against Parameters() before executing
//   - return *ToolError for recoverable failures so paths can fold them
//     into a user-facing explanation
//   - be side-effect free apart from reading the corpus
type Tool interface {
	// Name returns the unique tool identifier (snake_case).
	Name() string

	// Description returns a short natural language description exposed to
	// the language model and to audit readers.
	Description() string

	// Parameters returns a minimal JSON-schema map describing the accepted
	// arguments (type / properties / required subset).
	Parameters() map[string]any

	// Call executes the tool with already-parsed arguments.
	Call(toolCtx *ToolContext, args map[string]any) (any, error)
}

// ToolContext is the constrained surface handed to tool implementations:
// correlation identifiers, a cancellable context and a logger. Tools never
// see the AgentState or the session store.
type ToolContext struct {
	ctx       context.Context
	sessionID string
	turnID    string
	logger    logging.Logger
}

// NewToolContext binds a tool invocation to its session and turn.
func NewToolContext(ctx context.Context, sessionID, turnID string, logger logging.Logger) *ToolContext {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &ToolContext{ctx: ctx, sessionID: sessionID, turnID: turnID, logger: logger}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// SessionID returns the owning session identifier.
func (tc *ToolContext) SessionID() string { return tc.sessionID }

// TurnID returns the per-turn correlation identifier.
func (tc *ToolContext) TurnID() string { return tc.turnID }

// Logger returns the logger bound to this invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.logger }
