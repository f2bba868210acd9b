package tools

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/karsten42/docpilot/core"
	"github.com/karsten42/docpilot/corpus"
)

// DefaultReaderCacheSize bounds the reader's document cache.
const DefaultReaderCacheSize = 128

// ReaderTool fetches full document content by identifier. Reads go through a
// bounded LRU cache so repeated references within a conversation do not hit
// the store every turn.
type ReaderTool struct {
	store corpus.Store
	cache *lru.Cache[string, corpus.Document]
}

var _ core.Tool = (*ReaderTool)(nil)

// NewReaderTool constructs a ReaderTool with the default cache size.
func NewReaderTool(store corpus.Store) *ReaderTool {
	cache, _ := lru.New[string, corpus.Document](DefaultReaderCacheSize)
	return &ReaderTool{store: store, cache: cache}
}

// Name implements core.Tool.
func (t *ReaderTool) Name() string { return "read_document" }

// Description implements core.Tool.
func (t *ReaderTool) Description() string {
	return "Read the full content of a document by its identifier"
}

// Parameters implements core.Tool.
func (t *ReaderTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"document_id": map[string]any{"type": "string", "description": "Document identifier, e.g. INV-001"},
		},
		"required": []string{"document_id"},
	}
}

// Call implements core.Tool. Unknown identifiers return a NOT_FOUND tool
// error the calling path recovers from.
func (t *ReaderTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	id, _ := args["document_id"].(string)
	doc, err := t.get(id)
	if err != nil {
		return nil, core.NewToolError(t.Name(), fmt.Sprintf("document %q not found", id), core.CodeNotFound)
	}
	return map[string]any{
		"id":       doc.ID,
		"title":    doc.Title,
		"content":  doc.Content,
		"metadata": doc.Metadata,
	}, nil
}

// Read is the typed convenience used by the processing paths.
func (t *ReaderTool) Read(id string) (corpus.Document, error) {
	return t.get(id)
}

func (t *ReaderTool) get(id string) (corpus.Document, error) {
	if doc, ok := t.cache.Get(id); ok {
		return doc, nil
	}
	doc, err := t.store.Get(id)
	if err != nil {
		return corpus.Document{}, err
	}
	t.cache.Add(id, doc)
	return doc, nil
}
