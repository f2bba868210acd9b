// Package agents implements the three processing paths (question answering,
// summarization, calculation) and the shared document resolution they rely
// on. Each path consumes the turn's AgentState, invokes tools through the
// audited kit, records the documents it touched and writes the user-visible
// response. Tool and resolution failures are absorbed here and folded into a
// graceful message; they never escape as turn-level errors.
package agents

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/karsten42/docpilot/core"
	"github.com/karsten42/docpilot/memory"
	"github.com/karsten42/docpilot/tools"
)

// docIDPattern matches explicit document identifiers such as INV-001 or
// RPT-2024-07.
var docIDPattern = regexp.MustCompile(`\b[A-Z]{2,6}-[0-9][0-9-]*\b`)

// quotedPattern captures a quoted document title, e.g. Summarize "Q3 Report".
var quotedPattern = regexp.MustCompile(`"([^"]+)"|“([^”]+)”`)

var (
	singularAnaphora = []string{"it", "that", "this"}
	pluralAnaphora   = []string{"them", "those", "these", "both"}
)

// Resolver determines which documents a user message refers to: explicit
// identifiers first, then a quoted title resolved through the search tool,
// then anaphoric references against the active document set.
type Resolver struct {
	kit *tools.Kit
}

// NewResolver constructs a Resolver over the tool kit.
func NewResolver(kit *tools.Kit) *Resolver {
	return &Resolver{kit: kit}
}

// Resolve returns the target document identifiers for the input, or ok=false
// when no document can be determined. An unresolved reference is not an
// error; the calling path answers with a clarification request.
func (r *Resolver) Resolve(toolCtx *core.ToolContext, input string, active []string) ([]string, bool) {
	if ids := explicitIDs(input); len(ids) > 0 {
		return ids, true
	}

	if title := quotedTitle(input); title != "" {
		if id, ok := r.searchByTitle(toolCtx, title); ok {
			return []string{id}, true
		}
	}

	lowered := strings.ToLower(input)
	if containsWord(lowered, pluralAnaphora) && len(active) > 0 {
		// Plural reference: all active documents, most recent last.
		return append([]string(nil), active...), true
	}
	if containsWord(lowered, singularAnaphora) {
		if id, ok := memory.MostRecent(active); ok {
			return []string{id}, true
		}
	}
	return nil, false
}

func explicitIDs(input string) []string {
	matches := docIDPattern.FindAllString(input, -1)
	seen := make(map[string]bool, len(matches))
	var ids []string
	for _, id := range matches {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

func quotedTitle(input string) string {
	groups := quotedPattern.FindStringSubmatch(input)
	if groups == nil {
		return ""
	}
	for _, g := range groups[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

// searchByTitle resolves a quoted title to the best-scoring corpus match.
func (r *Resolver) searchByTitle(toolCtx *core.ToolContext, title string) (string, bool) {
	result, err := r.kit.Invoke(toolCtx, "search_documents", map[string]any{"query": title, "limit": float64(1)})
	if err != nil {
		return "", false
	}
	hits, ok := result.([]tools.SearchHit)
	if !ok || len(hits) == 0 {
		return "", false
	}
	return hits[0].ID, true
}

func containsWord(lowered string, words []string) bool {
	tokens := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, tok := range tokens {
		for _, w := range words {
			if tok == w {
				return true
			}
		}
	}
	return false
}

// clarificationResponse is the shared reply when no document resolves.
const clarificationResponse = "I'm not sure which document you mean. " +
	"Please name a document explicitly (for example, INV-001) or search for it by title."
