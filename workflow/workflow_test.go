package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karsten42/docpilot/core"
)

func routeTo(step core.Step) Node {
	return func(_ context.Context, _ core.Turn, state *core.AgentState) error {
		state.NextStep = step
		return nil
	}
}

func respond(text string) Node {
	return func(_ context.Context, _ core.Turn, state *core.AgentState) error {
		state.Response = text
		return nil
	}
}

func noop(_ context.Context, _ core.Turn, _ *core.AgentState) error { return nil }

func newTestEngine(t *testing.T, classify Node) *Engine {
	t.Helper()
	engine := New(classify, noop)
	require.NoError(t, engine.RegisterAgent(core.StepQA, respond("qa answer")))
	require.NoError(t, engine.RegisterAgent(core.StepSummarization, respond("summary")))
	require.NoError(t, engine.RegisterAgent(core.StepCalculation, respond("result")))
	return engine
}

func TestEngine_RunVisitsExactlyOneAgent(t *testing.T) {
	engine := newTestEngine(t, routeTo(core.StepSummarization))
	state := core.NewAgentState(core.SessionRecord{}, "summarize INV-001")

	err := engine.Run(t.Context(), core.Turn{SessionID: "s1", TurnID: "t1"}, state)
	require.NoError(t, err)
	assert.Equal(t, []string{"classify", "summarization_agent", "update_memory"}, state.ActionsTaken)
	assert.Equal(t, "summary", state.Response)
	assert.Empty(t, state.NextStep)
}

func TestEngine_PerTurnFieldsReset(t *testing.T) {
	engine := newTestEngine(t, routeTo(core.StepQA))
	state := core.NewAgentState(core.SessionRecord{}, "first")

	require.NoError(t, engine.Run(t.Context(), core.Turn{SessionID: "s1", TurnID: "t1"}, state))
	state.UserInput = "second"
	require.NoError(t, engine.Run(t.Context(), core.Turn{SessionID: "s1", TurnID: "t2"}, state))

	// Trace covers the second turn only.
	assert.Equal(t, []string{"classify", "qa_agent", "update_memory"}, state.ActionsTaken)
}

func TestEngine_ClassifyErrorStopsTurn(t *testing.T) {
	classify := func(_ context.Context, _ core.Turn, _ *core.AgentState) error {
		return core.ErrClassification
	}
	engine := newTestEngine(t, classify)
	state := core.NewAgentState(core.SessionRecord{}, "hi")

	err := engine.Run(t.Context(), core.Turn{SessionID: "s1", TurnID: "t1"}, state)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrClassification))
	assert.Equal(t, []string{"classify"}, state.ActionsTaken)
}

func TestEngine_UnregisteredStepIsClassificationError(t *testing.T) {
	engine := New(routeTo(core.StepQA), noop)
	state := core.NewAgentState(core.SessionRecord{}, "hi")

	err := engine.Run(t.Context(), core.Turn{SessionID: "s1", TurnID: "t1"}, state)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrClassification))
}

func TestEngine_RegisterAgentRejectsNonAgentSteps(t *testing.T) {
	engine := New(routeTo(core.StepQA), noop)
	assert.Error(t, engine.RegisterAgent(core.StepClassify, noop))
	assert.Error(t, engine.RegisterAgent(core.StepUpdateMemory, noop))
}

func TestEngine_CheckpointAndResume(t *testing.T) {
	checkpoints := NewInMemoryCheckpointStore()
	engine := New(routeTo(core.StepQA), noop, func(o *Options) { o.Checkpoints = checkpoints })
	require.NoError(t, engine.RegisterAgent(core.StepQA, respond("answer")))

	state := core.NewAgentState(core.SessionRecord{}, "question")
	require.NoError(t, engine.Run(t.Context(), core.Turn{SessionID: "s1", TurnID: "t1"}, state))

	resumed, ok, err := engine.Resume("s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "answer", resumed.Response)

	// The resumed state is a copy; mutating it does not corrupt the store.
	resumed.Response = "mutated"
	again, ok, err := engine.Resume("s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "answer", again.Response)

	_, ok, err = engine.Resume("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

type failingCheckpoints struct{}

func (failingCheckpoints) SaveCheckpoint(string, *core.AgentState) error { return assert.AnError }
func (failingCheckpoints) LoadCheckpoint(string) (*core.AgentState, bool, error) {
	return nil, false, nil
}

func TestEngine_CheckpointFailureIsPersistenceError(t *testing.T) {
	engine := New(routeTo(core.StepQA), noop, func(o *Options) { o.Checkpoints = failingCheckpoints{} })
	require.NoError(t, engine.RegisterAgent(core.StepQA, respond("answer")))

	state := core.NewAgentState(core.SessionRecord{}, "question")
	err := engine.Run(t.Context(), core.Turn{SessionID: "s1", TurnID: "t1"}, state)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrPersistence))
}

func TestFileCheckpointStore_RejectsUnsafeKeys(t *testing.T) {
	store, err := NewFileCheckpointStore(t.TempDir())
	require.NoError(t, err)

	state := core.NewAgentState(core.SessionRecord{}, "q")
	for _, key := range []string{"../escape", "a/b", ".."} {
		require.Error(t, store.SaveCheckpoint(key, state))
		_, _, err := store.LoadCheckpoint(key)
		require.Error(t, err)
	}
}

func TestFileCheckpointStore_RoundTrip(t *testing.T) {
	store, err := NewFileCheckpointStore(t.TempDir())
	require.NoError(t, err)

	state := core.NewAgentState(core.SessionRecord{}, "question")
	state.ConversationSummary = "User: question\nAssistant: answer"
	state.ActiveDocuments = []string{"INV-001"}
	state.Response = "answer"

	require.NoError(t, store.SaveCheckpoint("s1", state))

	loaded, ok, err := store.LoadCheckpoint("s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, state.ConversationSummary, loaded.ConversationSummary)
	assert.Equal(t, state.ActiveDocuments, loaded.ActiveDocuments)
	assert.Equal(t, "answer", loaded.Response)

	_, ok, err = store.LoadCheckpoint("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
