// Package runner assembles the workflow around a model and a corpus and
// drives one turn at a time: load session → classify → path → compress →
// atomic commit. A turn is never partially committed: the session record is
// saved only after the whole turn succeeds, so the previously committed
// record stays the source of truth on any mid-turn failure.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/karsten42/docpilot/agents"
	"github.com/karsten42/docpilot/core"
	"github.com/karsten42/docpilot/corpus"
	"github.com/karsten42/docpilot/intent"
	"github.com/karsten42/docpilot/logging"
	"github.com/karsten42/docpilot/memory"
	"github.com/karsten42/docpilot/model"
	"github.com/karsten42/docpilot/session"
	"github.com/karsten42/docpilot/tools"
	"github.com/karsten42/docpilot/workflow"
)

// DefaultTurnTimeout bounds one full turn including model and tool calls.
// The base design does not retry; a timed-out turn surfaces as an error.
const DefaultTurnTimeout = 120 * time.Second

// Options holds dependency and configuration overrides passed to New.
type Options struct {
	// SessionStore persists conversational state. Defaults to in-memory.
	SessionStore core.SessionStore

	// Checkpoints stores the engine's terminal state per session.
	// Defaults to in-memory.
	Checkpoints core.CheckpointStore

	// Audit receives one entry per tool invocation. Defaults to discard.
	Audit core.AuditLog

	// Compressor folds turns into conversational memory.
	Compressor *memory.Compressor

	// TurnTimeout bounds one turn end to end.
	TurnTimeout time.Duration

	Logger logging.Logger
}

// Runner coordinates turn execution for one process. Public methods are safe
// for sequential use; a session processes one turn at a time.
type Runner struct {
	engine   *workflow.Engine
	sessions core.SessionStore
	timeout  time.Duration
	logger   logging.Logger
}

// TurnResult is the outcome of one committed turn.
type TurnResult struct {
	TurnID   string
	Response string
	State    *core.AgentState
}

// New wires the classifier, the three processing paths and the memory
// compressor into a workflow engine over the given model and corpus.
func New(m model.Model, store corpus.Store, optFns ...func(o *Options)) (*Runner, error) {
	opts := Options{
		SessionStore: session.NewInMemoryStore(),
		Checkpoints:  workflow.NewInMemoryCheckpointStore(),
		Compressor:   memory.NewCompressor(),
		TurnTimeout:  DefaultTurnTimeout,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	searchTool, err := tools.NewSearchTool(store)
	if err != nil {
		return nil, fmt.Errorf("build search tool: %w", err)
	}
	kit := tools.NewKit(
		[]core.Tool{
			searchTool,
			tools.NewReaderTool(store),
			tools.NewStatsTool(store),
			tools.NewCalculatorTool(),
		},
		func(o *tools.Options) {
			if opts.Audit != nil {
				o.Audit = opts.Audit
			}
		},
	)

	classifier := intent.NewClassifier(m, func(o *intent.Options) { o.Logger = opts.Logger })
	classify := func(ctx context.Context, turn core.Turn, state *core.AgentState) error {
		decision, err := classifier.Classify(ctx, state.UserInput, state.ConversationSummary)
		if err != nil {
			return err
		}
		state.NextStep = decision.Intent.Step()
		return nil
	}

	compressor := opts.Compressor
	updateMemory := func(ctx context.Context, turn core.Turn, state *core.AgentState) error {
		return compressor.Update(state)
	}

	engine := workflow.New(classify, updateMemory, func(o *workflow.Options) {
		o.Checkpoints = opts.Checkpoints
		o.Logger = opts.Logger
	})

	withLogger := func(o *agents.Options) { o.Logger = opts.Logger }
	qa := agents.NewQAAgent(m, kit, withLogger)
	summarize := agents.NewSummarizationAgent(m, kit, withLogger)
	calculate := agents.NewCalculationAgent(kit, withLogger)
	for step, node := range map[core.Step]workflow.Node{
		qa.Step():        qa.Run,
		summarize.Step(): summarize.Run,
		calculate.Step(): calculate.Run,
	} {
		if err := engine.RegisterAgent(step, node); err != nil {
			return nil, err
		}
	}

	return &Runner{
		engine:   engine,
		sessions: opts.SessionStore,
		timeout:  opts.TurnTimeout,
		logger:   opts.Logger,
	}, nil
}

// StartSession returns a usable session identifier, minting a fresh one when
// the argument is empty.
func (r *Runner) StartSession(sessionID string) (string, error) {
	return r.sessions.Start(sessionID)
}

// ProcessMessage runs one full turn for the session and commits the updated
// record. Classification and persistence failures are returned as errors;
// everything else is folded into the response.
func (r *Runner) ProcessMessage(ctx context.Context, sessionID, input string) (*TurnResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rec, err := r.sessions.Load(sessionID)
	if err != nil {
		return nil, err
	}

	state := core.NewAgentState(rec, input)
	turn := core.Turn{SessionID: sessionID, TurnID: core.NewID()}

	logger := logging.With(r.logger, "session_id", sessionID, "turn_id", turn.TurnID)
	logger.Info("turn.start")

	if err := r.engine.Run(ctx, turn, state); err != nil {
		logger.Error("turn.failed", "error", err.Error())
		return nil, err
	}

	if err := r.sessions.Save(state.Record(sessionID)); err != nil {
		logger.Error("turn.commit.failed", "error", err.Error())
		return nil, err
	}

	logger.Info("turn.complete", "trace", state.ActionsTaken, "touched", state.TouchedDocuments)
	return &TurnResult{TurnID: turn.TurnID, Response: state.Response, State: state}, nil
}
