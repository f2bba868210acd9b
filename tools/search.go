package tools

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"

	"github.com/karsten42/docpilot/core"
	"github.com/karsten42/docpilot/corpus"
)

// DefaultSearchLimit caps search results when the caller passes no limit.
const DefaultSearchLimit = 5

// SearchHit is one search result.
type SearchHit struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// SearchTool answers free-text queries against a bleve full-text index built
// over the corpus at construction time. The index is in-memory; the corpus is
// fixed for the process lifetime.
type SearchTool struct {
	index bleve.Index
	store corpus.Store
}

var _ core.Tool = (*SearchTool)(nil)

// searchDocument is the shape indexed in bleve.
type searchDocument struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// NewSearchTool indexes every document in the store.
func NewSearchTool(store corpus.Store) (*SearchTool, error) {
	mapping := bleve.NewIndexMapping()
	index, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("create search index: %w", err)
	}
	for _, doc := range store.All() {
		entry := searchDocument{ID: doc.ID, Title: doc.Title, Type: doc.Type, Content: doc.Content}
		if err := index.Index(doc.ID, entry); err != nil {
			return nil, fmt.Errorf("index document %s: %w", doc.ID, err)
		}
	}
	return &SearchTool{index: index, store: store}, nil
}

// Name implements core.Tool.
func (t *SearchTool) Name() string { return "search_documents" }

// Description implements core.Tool.
func (t *SearchTool) Description() string {
	return "Search the document corpus by free-text query and return matching document identifiers"
}

// Parameters implements core.Tool.
func (t *SearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "Free-text search query"},
			"limit": map[string]any{"type": "integer", "description": "Maximum number of results"},
		},
		"required": []string{"query"},
	}
}

// Call implements core.Tool.
func (t *SearchTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return nil, core.NewToolError(t.Name(), "query must not be empty", core.CodeValidation)
	}
	limit := DefaultSearchLimit
	if raw, ok := args["limit"].(float64); ok && raw > 0 {
		limit = int(raw)
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), limit, 0, false)
	result, err := t.index.Search(req)
	if err != nil {
		return nil, core.NewToolError(t.Name(), fmt.Sprintf("search failed: %v", err), core.CodeExecution)
	}

	hits := make([]SearchHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		doc, err := t.store.Get(hit.ID)
		if err != nil {
			continue
		}
		hits = append(hits, SearchHit{ID: doc.ID, Title: doc.Title, Score: hit.Score})
	}
	return hits, nil
}
