// Package memory owns the two cross-turn context fields: the bounded running
// conversation summary and the LRU-capped set of active documents. The
// Compressor is the only writer of both; it runs exactly once per turn as
// the workflow's terminal step.
package memory

import (
	"fmt"
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/karsten42/docpilot/core"
)

const (
	// DefaultSummaryBudget caps the running summary in bytes.
	DefaultSummaryBudget = 2000

	// DefaultActiveDocumentCap bounds the active document set.
	DefaultActiveDocumentCap = 5

	// exchangeClip truncates each side of an exchange before folding.
	exchangeClip = 240
)

// Compressor folds one turn's exchange into the running summary and promotes
// the turn's touched documents in the active set. Compression is
// deterministic: identical inputs always produce the identical summary, so a
// resumed session replaying the same turn converges on the same state.
type Compressor struct {
	summaryBudget int
	docCap        int
}

// Options configure a Compressor.
type Options struct {
	SummaryBudget     int
	ActiveDocumentCap int
}

// NewCompressor constructs a Compressor with bounded defaults.
func NewCompressor(optFns ...func(o *Options)) *Compressor {
	opts := Options{SummaryBudget: DefaultSummaryBudget, ActiveDocumentCap: DefaultActiveDocumentCap}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Compressor{summaryBudget: opts.SummaryBudget, docCap: opts.ActiveDocumentCap}
}

// Update rewrites state.ConversationSummary and state.ActiveDocuments from
// the turn's exchange and touched documents. No other component writes these
// fields.
func (c *Compressor) Update(state *core.AgentState) error {
	state.ConversationSummary = c.fold(state.ConversationSummary, state.UserInput, state.Response)

	active, err := UpdateActiveDocuments(state.ActiveDocuments, state.TouchedDocuments, c.docCap)
	if err != nil {
		return err
	}
	state.ActiveDocuments = active
	return nil
}

// fold appends the exchange as fixed-form lines, then evicts the oldest
// lines until the summary fits the byte budget. Monotonic compression: each
// call folds one more turn into a fixed-budget representation.
func (c *Compressor) fold(summary, userInput, response string) string {
	var b strings.Builder
	if summary != "" {
		b.WriteString(summary)
		b.WriteString("\n")
	}
	b.WriteString("User: ")
	b.WriteString(clip(userInput))
	b.WriteString("\nAssistant: ")
	b.WriteString(clip(response))

	folded := b.String()
	for len(folded) > c.summaryBudget {
		cut := strings.IndexByte(folded, '\n')
		if cut < 0 {
			// Single oversized line; hard-truncate from the front, keeping
			// the cut on a rune boundary.
			start := len(folded) - c.summaryBudget
			for start < len(folded) && !utf8.RuneStart(folded[start]) {
				start++
			}
			folded = folded[start:]
			break
		}
		folded = folded[cut+1:]
	}
	return folded
}

func clip(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
	if len(s) <= exchangeClip {
		return s
	}
	cut := exchangeClip
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

// UpdateActiveDocuments merges the turn's touched documents into the active
// set: existing entries are replayed oldest-first into an LRU cache, touched
// documents are promoted to most-recently-used, and the cache evicts the
// least recently used entry once the cap is exceeded. The returned slice is
// ordered least recently used first.
func UpdateActiveDocuments(active, touched []string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultActiveDocumentCap
	}
	cache, err := lru.New[string, struct{}](limit)
	if err != nil {
		return nil, fmt.Errorf("active document cache: %w", err)
	}
	for _, id := range active {
		cache.Add(id, struct{}{})
	}
	for _, id := range touched {
		cache.Add(id, struct{}{})
	}
	return cache.Keys(), nil
}

// MostRecent returns the most recently used document from an active set, or
// false when the set is empty. Anaphoric references resolve to this entry.
func MostRecent(active []string) (string, bool) {
	if len(active) == 0 {
		return "", false
	}
	return active[len(active)-1], true
}
