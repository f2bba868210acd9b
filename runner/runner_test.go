package runner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karsten42/docpilot/audit"
	"github.com/karsten42/docpilot/core"
	"github.com/karsten42/docpilot/corpus"
	"github.com/karsten42/docpilot/model"
	"github.com/karsten42/docpilot/session"
)

func fixtureStore() *corpus.MapStore {
	return corpus.NewMapStore(
		corpus.Document{
			ID:      "INV-001",
			Title:   "Invoice INV-001",
			Content: "Invoice INV-001. Client: Acme Corp. Total due: 1500.00 EUR.",
			Fields:  map[string]float64{"total": 1500},
		},
		corpus.Document{
			ID:      "INV-002",
			Title:   "Invoice INV-002",
			Content: "Invoice INV-002. Client: Globex. Total due: 2300.50 EUR.",
			Fields:  map[string]float64{"total": 2300.5},
		},
	)
}

func TestRunner_FullTurnCommits(t *testing.T) {
	m := model.NewMockModel()
	m.AddStructured("intent_decision", "total in INV-001", map[string]any{
		"intent": "qa", "confidence": 0.95,
	})
	m.AddStructured("grounded_answer", "total in INV-001", map[string]any{
		"answer": "The total due is 1500.00 EUR.", "confidence": 0.9,
	})

	sessions := session.NewInMemoryStore()
	r, err := New(m, fixtureStore(), func(o *Options) { o.SessionStore = sessions })
	require.NoError(t, err)

	sessionID, err := r.StartSession("")
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	result, err := r.ProcessMessage(t.Context(), sessionID, "What is the total in INV-001?")
	require.NoError(t, err)
	assert.NotEmpty(t, result.TurnID)
	assert.Equal(t, "The total due is 1500.00 EUR. (confidence: 0.90)", result.Response)
	assert.Equal(t, []string{"classify", "qa_agent", "update_memory"}, result.State.ActionsTaken)

	rec, err := sessions.Load(sessionID)
	require.NoError(t, err)
	assert.Contains(t, rec.ConversationSummary, "User: What is the total in INV-001?")
	assert.Contains(t, rec.ConversationSummary, "Assistant: The total due is 1500.00 EUR.")
	assert.Equal(t, []string{"INV-001"}, rec.ActiveDocuments)
}

func TestRunner_AnaphoraAcrossTurns(t *testing.T) {
	m := model.NewMockModel()
	// Registered first: the second turn's classifier input embeds the first
	// turn's exchange in the summary, and the first matching key wins.
	m.AddStructured("intent_decision", "Summarize it", map[string]any{
		"intent": "summarization", "confidence": 0.9,
	})
	m.AddStructured("intent_decision", "total in INV-002", map[string]any{
		"intent": "qa", "confidence": 0.95,
	})
	m.AddStructured("grounded_answer", "total in INV-002", map[string]any{
		"answer": "2300.50 EUR.", "confidence": 0.9,
	})
	m.AddResponse("Invoice INV-002", "INV-002 bills Globex 2300.50 EUR.")

	r, err := New(m, fixtureStore())
	require.NoError(t, err)

	sessionID, err := r.StartSession("")
	require.NoError(t, err)

	_, err = r.ProcessMessage(t.Context(), sessionID, "What is the total in INV-002?")
	require.NoError(t, err)

	// "it" resolves against the active set carried over from the first turn.
	result, err := r.ProcessMessage(t.Context(), sessionID, "Summarize it")
	require.NoError(t, err)
	assert.Equal(t, "INV-002 bills Globex 2300.50 EUR.", result.Response)
	assert.Equal(t, []string{"classify", "summarization_agent", "update_memory"}, result.State.ActionsTaken)
	assert.Equal(t, []string{"INV-002"}, result.State.TouchedDocuments)
}

func TestRunner_ClassificationFailureDoesNotCommit(t *testing.T) {
	m := model.NewMockModel() // no structured responses registered

	sessions := session.NewInMemoryStore()
	r, err := New(m, fixtureStore(), func(o *Options) { o.SessionStore = sessions })
	require.NoError(t, err)

	_, err = r.ProcessMessage(t.Context(), "s1", "What is the total in INV-001?")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrClassification))

	rec, err := sessions.Load("s1")
	require.NoError(t, err)
	assert.Empty(t, rec.ConversationSummary)
	assert.Empty(t, rec.ActiveDocuments)
}

func TestRunner_SaveFailureSurfacesAsError(t *testing.T) {
	m := model.NewMockModel()
	m.AddStructured("intent_decision", "", map[string]any{"intent": "qa", "confidence": 0.9})
	m.AddStructured("grounded_answer", "", map[string]any{"answer": "ok", "confidence": 0.9})

	sessions := session.NewInMemoryStore()
	r, err := New(m, fixtureStore(), func(o *Options) { o.SessionStore = sessions })
	require.NoError(t, err)

	sessions.FailWrites(true)
	_, err = r.ProcessMessage(t.Context(), "s1", "What is the total in INV-001?")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrPersistence))
}

func TestRunner_ToolCallsAreAudited(t *testing.T) {
	m := model.NewMockModel()
	m.AddStructured("intent_decision", "", map[string]any{"intent": "calculation", "confidence": 0.9})

	log := audit.NewInMemoryLog()
	r, err := New(m, fixtureStore(), func(o *Options) { o.Audit = log })
	require.NoError(t, err)

	result, err := r.ProcessMessage(t.Context(), "s1", "Add the totals of INV-001 and INV-002")
	require.NoError(t, err)
	assert.Equal(t, "Sum: INV-001 total (1500.00) + INV-002 total (2300.50) = 3800.50", result.Response)

	var tools []string
	for _, e := range log.Entries() {
		assert.Equal(t, "s1", e.SessionID)
		assert.Equal(t, result.TurnID, e.TurnID)
		tools = append(tools, e.Tool)
	}
	assert.Equal(t, []string{
		"read_document", "document_statistics",
		"read_document", "document_statistics",
		"calculate",
	}, tools)
}

func TestRunner_EachTurnGetsAFreshTurnID(t *testing.T) {
	m := model.NewMockModel()
	m.AddStructured("intent_decision", "", map[string]any{"intent": "qa", "confidence": 0.9})
	m.AddStructured("grounded_answer", "", map[string]any{"answer": "ok", "confidence": 0.9})

	r, err := New(m, fixtureStore())
	require.NoError(t, err)

	first, err := r.ProcessMessage(t.Context(), "s1", "What does INV-001 say?")
	require.NoError(t, err)
	second, err := r.ProcessMessage(t.Context(), "s1", "What does INV-001 say?")
	require.NoError(t, err)
	assert.NotEqual(t, first.TurnID, second.TurnID)
	assert.Equal(t, first.Response, second.Response)
}
