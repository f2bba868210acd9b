package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/karsten42/docpilot/core"
	"github.com/karsten42/docpilot/logging"
	"github.com/karsten42/docpilot/model"
	"github.com/karsten42/docpilot/tools"
)

// maxDocumentsPerTurn limits how many documents a path reads in one turn.
const maxDocumentsPerTurn = 3

const qaInstructions = `You answer questions strictly from the provided document content.
If the documents do not contain the answer, say so. Report how confident you
are that the answer is grounded in the documents.`

// answerSchema constrains the QA model call to a grounded answer plus an
// explicit confidence score.
var answerSchema = model.Schema{
	Name:        "grounded_answer",
	Description: "Answer grounded in the provided documents",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer":     map[string]any{"type": "string"},
			"confidence": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
		},
		"required":             []string{"answer", "confidence"},
		"additionalProperties": false,
	},
}

// QAAgent answers questions grounded in document content.
type QAAgent struct {
	model    model.Model
	kit      *tools.Kit
	resolver *Resolver
	logger   logging.Logger
}

// Options configure the path agents.
type Options struct {
	Logger logging.Logger
}

// NewQAAgent constructs the question-answering path.
func NewQAAgent(m model.Model, kit *tools.Kit, optFns ...func(o *Options)) *QAAgent {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &QAAgent{model: m, kit: kit, resolver: NewResolver(kit), logger: opts.Logger}
}

// Step returns the workflow step this agent serves.
func (a *QAAgent) Step() core.Step { return core.StepQA }

// Run resolves the subject documents, reads them and produces a grounded
// answer with an explicit confidence score. Resolution and tool failures are
// folded into the response; the turn still commits.
func (a *QAAgent) Run(ctx context.Context, turn core.Turn, state *core.AgentState) error {
	toolCtx := core.NewToolContext(ctx, turn.SessionID, turn.TurnID, a.logger)

	ids, ok := a.resolver.Resolve(toolCtx, state.UserInput, state.ActiveDocuments)
	if !ok {
		state.Response = clarificationResponse
		return nil
	}

	docContext, readErrs := readDocuments(toolCtx, a.kit, state, ids)
	if docContext == "" {
		state.Response = joinReadFailures(readErrs)
		return nil
	}

	input := fmt.Sprintf("Documents:\n%s\nConversation summary:\n%s\n\nQuestion: %s",
		docContext, state.ConversationSummary, state.UserInput)
	obj, err := a.model.GenerateStructured(ctx, model.Request{Instructions: qaInstructions, Input: input}, answerSchema)
	if err != nil {
		a.logger.Error("qa.generate.failed", "error", err.Error())
		state.Response = "Sorry, I ran into a problem answering that. Please try again."
		return nil
	}

	answer, _ := obj["answer"].(string)
	confidence, _ := obj["confidence"].(float64)
	if answer == "" {
		state.Response = "Sorry, I could not produce an answer from the documents."
		return nil
	}
	state.Response = fmt.Sprintf("%s (confidence: %.2f)", answer, confidence)
	return nil
}

// readDocuments fetches up to maxDocumentsPerTurn documents through the
// audited reader tool, recording each touched identifier on the state.
// Failed reads are collected instead of aborting the turn.
func readDocuments(toolCtx *core.ToolContext, kit *tools.Kit, state *core.AgentState, ids []string) (string, []string) {
	var b strings.Builder
	var failures []string
	for i, id := range ids {
		if i >= maxDocumentsPerTurn {
			break
		}
		result, err := kit.Invoke(toolCtx, "read_document", map[string]any{"document_id": id})
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s (%v)", id, err))
			continue
		}
		state.Touch(id)
		doc, _ := result.(map[string]any)
		fmt.Fprintf(&b, "--- %v: %v ---\n%v\n", doc["id"], doc["title"], doc["content"])
	}
	return b.String(), failures
}

func joinReadFailures(failures []string) string {
	if len(failures) == 0 {
		return clarificationResponse
	}
	return "I could not read the requested document(s): " + strings.Join(failures, "; ")
}
