// Package workflow implements the turn state machine: classify → exactly one
// processing path → update_memory. The graph is a closed, typed transition
// table rather than an open plugin graph, which makes the "exactly one
// agent, then memory update" invariant hold by construction. The terminal
// state of every turn is checkpointed keyed by session identifier so a later
// invocation resumes without replaying intermediate states.
package workflow

import (
	"context"
	"fmt"

	"github.com/karsten42/docpilot/core"
	"github.com/karsten42/docpilot/logging"
)

// Node is one state of the machine. Nodes mutate the shared AgentState; the
// engine owns the trace (ActionsTaken) and the transitions.
type Node func(ctx context.Context, turn core.Turn, state *core.AgentState) error

// transitions is the static part of the table: every agent state moves
// unconditionally to update_memory. The classify transition is dynamic,
// keyed by the decision the classifier writes to state.NextStep.
var transitions = map[core.Step]core.Step{
	core.StepQA:            core.StepUpdateMemory,
	core.StepSummarization: core.StepUpdateMemory,
	core.StepCalculation:   core.StepUpdateMemory,
}

// Engine sequences one turn through the state machine.
type Engine struct {
	classify     Node
	agents       map[core.Step]Node
	updateMemory Node
	checkpoints  core.CheckpointStore
	logger       logging.Logger
}

// Options configure an Engine.
type Options struct {
	// Checkpoints stores the terminal state per session. Defaults to an
	// in-memory store.
	Checkpoints core.CheckpointStore

	Logger logging.Logger
}

// New constructs an Engine from the classify and update_memory nodes. The
// three agent nodes are attached with RegisterAgent.
func New(classify, updateMemory Node, optFns ...func(o *Options)) *Engine {
	opts := Options{Checkpoints: NewInMemoryCheckpointStore(), Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Engine{
		classify:     classify,
		agents:       make(map[core.Step]Node, len(transitions)),
		updateMemory: updateMemory,
		checkpoints:  opts.Checkpoints,
		logger:       opts.Logger,
	}
}

// RegisterAgent attaches a processing path to one of the three agent states.
func (e *Engine) RegisterAgent(step core.Step, node Node) error {
	if _, ok := transitions[step]; !ok {
		return fmt.Errorf("step %q is not an agent state", step)
	}
	e.agents[step] = node
	return nil
}

// Run executes one full turn. The per-turn fields of the state are reset,
// then the machine walks classify → the selected agent → update_memory,
// appending each visited step to ActionsTaken. The terminal state is
// checkpointed under the session identifier.
//
// Classification failures and persistence failures are returned to the
// caller; everything the processing paths can recover from has already been
// folded into state.Response by the time they return.
func (e *Engine) Run(ctx context.Context, turn core.Turn, state *core.AgentState) error {
	// Per-turn reset: the trace, touched set and routing decision never
	// carry across turns.
	state.ActionsTaken = nil
	state.TouchedDocuments = nil
	state.NextStep = ""
	state.Response = ""

	state.Visit(core.StepClassify)
	if err := e.classify(ctx, turn, state); err != nil {
		return err
	}

	agentStep := state.NextStep
	state.NextStep = "" // consumed exactly once
	node, ok := e.agents[agentStep]
	if !ok {
		return fmt.Errorf("%w: no processing path registered for step %q", core.ErrClassification, agentStep)
	}

	state.Visit(agentStep)
	if err := node(ctx, turn, state); err != nil {
		return fmt.Errorf("step %s: %w", agentStep, err)
	}

	next := transitions[agentStep]
	state.Visit(next)
	if err := e.updateMemory(ctx, turn, state); err != nil {
		return fmt.Errorf("step %s: %w", next, err)
	}

	if err := e.checkpoints.SaveCheckpoint(turn.SessionID, state); err != nil {
		return fmt.Errorf("%w: checkpoint session %s: %v", core.ErrPersistence, turn.SessionID, err)
	}
	e.logger.Debug("workflow.turn.complete", "session_id", turn.SessionID, "turn_id", turn.TurnID, "trace", state.ActionsTaken)
	return nil
}

// Resume returns the checkpointed terminal state for a session, if any.
func (e *Engine) Resume(sessionID string) (*core.AgentState, bool, error) {
	return e.checkpoints.LoadCheckpoint(sessionID)
}
