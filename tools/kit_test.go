package tools

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/karsten42/docpilot/audit"
	"github.com/karsten42/docpilot/core"
	"github.com/karsten42/docpilot/corpus"
)

var (
	_ core.Tool = (*SearchTool)(nil)
	_ core.Tool = (*ReaderTool)(nil)
	_ core.Tool = (*StatsTool)(nil)
	_ core.Tool = (*CalculatorTool)(nil)
)

func testCorpus() *corpus.MapStore {
	return corpus.NewMapStore(
		corpus.Document{
			ID:      "INV-001",
			Title:   "Invoice INV-001",
			Type:    "invoice",
			Content: "Invoice INV-001. Client: Acme Corp. Total due: 1500.00 EUR.",
			Fields:  map[string]float64{"total": 1500, "tax": 285},
			Metadata: map[string]string{
				"client": "Acme Corp",
			},
		},
		corpus.Document{
			ID:      "INV-002",
			Title:   "Invoice INV-002",
			Type:    "invoice",
			Content: "Invoice INV-002. Client: Globex. Total due: 2300.50 EUR.",
			Fields:  map[string]float64{"total": 2300.5},
		},
		corpus.Document{
			ID:      "RPT-2024-01",
			Title:   "Quarterly Energy Report",
			Type:    "report",
			Content: "Energy consumption fell by 12 percent in the first quarter.",
		},
	)
}

func newTestKit(t *testing.T) (*Kit, *audit.InMemoryLog) {
	t.Helper()
	store := testCorpus()
	search, err := NewSearchTool(store)
	require.NoError(t, err)

	log := audit.NewInMemoryLog()
	kit := NewKit(
		[]core.Tool{search, NewReaderTool(store), NewStatsTool(store), NewCalculatorTool()},
		func(o *Options) {
			o.Audit = log
			o.Now = func() time.Time { return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC) }
		},
	)
	return kit, log
}

func TestKit_InvokeRecordsAudit(t *testing.T) {
	kit, log := newTestKit(t)
	toolCtx := core.NewToolContext(t.Context(), "s1", "t1", nil)

	result, err := kit.Invoke(toolCtx, "read_document", map[string]any{"document_id": "INV-001"})
	require.NoError(t, err)
	doc := result.(map[string]any)
	assert.Equal(t, "INV-001", doc["id"])
	assert.Contains(t, doc["content"], "Acme Corp")

	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "s1", entries[0].SessionID)
	assert.Equal(t, "t1", entries[0].TurnID)
	assert.Equal(t, "read_document", entries[0].Tool)
	assert.Empty(t, entries[0].Error)
	assert.Equal(t, map[string]any{"document_id": "INV-001"}, entries[0].Arguments)
}

func TestKit_FailedCallStillAudited(t *testing.T) {
	kit, log := newTestKit(t)
	toolCtx := core.NewToolContext(t.Context(), "s1", "t1", nil)

	_, err := kit.Invoke(toolCtx, "read_document", map[string]any{"document_id": "INV-999"})
	var toolErr *core.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, core.CodeNotFound, toolErr.Code)

	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].Error)
}

func TestKit_ValidationFailure(t *testing.T) {
	kit, log := newTestKit(t)
	toolCtx := core.NewToolContext(t.Context(), "s1", "t1", nil)

	_, err := kit.Invoke(toolCtx, "read_document", map[string]any{})
	var toolErr *core.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, core.CodeValidation, toolErr.Code)
	require.Len(t, log.Entries(), 1)
}

func TestKit_UnknownTool(t *testing.T) {
	kit, _ := newTestKit(t)
	toolCtx := core.NewToolContext(t.Context(), "s1", "t1", nil)

	_, err := kit.Invoke(toolCtx, "drop_tables", map[string]any{})
	var toolErr *core.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, core.CodeNotFound, toolErr.Code)
}

// mockTool exercises the error-wrapping path for tools that return plain
// errors instead of *core.ToolError.
type mockTool struct {
	mock.Mock
}

func (m *mockTool) Name() string        { return "mock_tool" }
func (m *mockTool) Description() string { return "mock" }
func (m *mockTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func (m *mockTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	ret := m.Called(toolCtx, args)
	return ret.Get(0), ret.Error(1)
}

func TestKit_WrapsPlainErrors(t *testing.T) {
	tool := &mockTool{}
	tool.On("Call", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	log := audit.NewInMemoryLog()
	kit := NewKit([]core.Tool{tool}, func(o *Options) { o.Audit = log })
	toolCtx := core.NewToolContext(t.Context(), "s1", "t1", nil)

	_, err := kit.Invoke(toolCtx, "mock_tool", map[string]any{})
	var toolErr *core.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, core.CodeExecution, toolErr.Code)
	tool.AssertExpectations(t)
}

func TestSearchTool_FindsByTitleAndContent(t *testing.T) {
	kit, _ := newTestKit(t)
	toolCtx := core.NewToolContext(t.Context(), "s1", "t1", nil)

	result, err := kit.Invoke(toolCtx, "search_documents", map[string]any{"query": "energy report"})
	require.NoError(t, err)
	hits := result.([]SearchHit)
	require.NotEmpty(t, hits)
	assert.Equal(t, "RPT-2024-01", hits[0].ID)
}

func TestStatsTool_ReturnsNumericFields(t *testing.T) {
	kit, _ := newTestKit(t)
	toolCtx := core.NewToolContext(t.Context(), "s1", "t1", nil)

	result, err := kit.Invoke(toolCtx, "document_statistics", map[string]any{"document_id": "INV-001"})
	require.NoError(t, err)
	stats := result.(map[string]any)
	fields := stats["fields"].(map[string]any)
	assert.Equal(t, float64(1500), fields["total"])
	assert.Equal(t, float64(285), fields["tax"])
}

func TestReaderTool_CachesReads(t *testing.T) {
	store := testCorpus()
	reader := NewReaderTool(store)

	doc, err := reader.Read("INV-002")
	require.NoError(t, err)
	assert.Equal(t, "INV-002", doc.ID)

	// Second read is served from cache even if the store changes underneath.
	store.Add(corpus.Document{ID: "INV-002", Title: "changed", Content: "changed"})
	doc, err = reader.Read("INV-002")
	require.NoError(t, err)
	assert.Equal(t, "Invoice INV-002", doc.Title)
}
