package tools

import (
	"fmt"

	"github.com/karsten42/docpilot/core"
	"github.com/karsten42/docpilot/corpus"
)

// StatsTool returns the structured numeric fields of a document (totals,
// quantities, rates) for use by the calculation path.
type StatsTool struct {
	store corpus.Store
}

var _ core.Tool = (*StatsTool)(nil)

// NewStatsTool constructs a StatsTool over the store.
func NewStatsTool(store corpus.Store) *StatsTool {
	return &StatsTool{store: store}
}

// Name implements core.Tool.
func (t *StatsTool) Name() string { return "document_statistics" }

// Description implements core.Tool.
func (t *StatsTool) Description() string {
	return "Return the structured numeric fields of a document"
}

// Parameters implements core.Tool.
func (t *StatsTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"document_id": map[string]any{"type": "string", "description": "Document identifier"},
		},
		"required": []string{"document_id"},
	}
}

// Call implements core.Tool.
func (t *StatsTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	id, _ := args["document_id"].(string)
	doc, err := t.store.Get(id)
	if err != nil {
		return nil, core.NewToolError(t.Name(), fmt.Sprintf("document %q not found", id), core.CodeNotFound)
	}
	fields := make(map[string]any, len(doc.Fields))
	for k, v := range doc.Fields {
		fields[k] = v
	}
	return map[string]any{"id": doc.ID, "fields": fields}, nil
}

// Fields is the typed convenience used by the calculation path.
func (t *StatsTool) Fields(id string) (map[string]float64, error) {
	doc, err := t.store.Get(id)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]float64, len(doc.Fields))
	for k, v := range doc.Fields {
		fields[k] = v
	}
	return fields, nil
}
