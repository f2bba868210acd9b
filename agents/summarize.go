package agents

import (
	"context"
	"fmt"

	"github.com/karsten42/docpilot/core"
	"github.com/karsten42/docpilot/logging"
	"github.com/karsten42/docpilot/model"
	"github.com/karsten42/docpilot/tools"
)

const summarizeInstructions = `You summarize documents. Produce a condensed,
faithful summary of the provided content. Do not add information that is not
in the documents.`

// SummarizationAgent condenses one or more documents.
type SummarizationAgent struct {
	model    model.Model
	kit      *tools.Kit
	resolver *Resolver
	logger   logging.Logger
}

// NewSummarizationAgent constructs the summarization path.
func NewSummarizationAgent(m model.Model, kit *tools.Kit, optFns ...func(o *Options)) *SummarizationAgent {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &SummarizationAgent{model: m, kit: kit, resolver: NewResolver(kit), logger: opts.Logger}
}

// Step returns the workflow step this agent serves.
func (a *SummarizationAgent) Step() core.Step { return core.StepSummarization }

// Run resolves the target documents (explicit or anaphoric), reads them and
// produces a condensed natural-language summary.
func (a *SummarizationAgent) Run(ctx context.Context, turn core.Turn, state *core.AgentState) error {
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

	input := fmt.Sprintf("Summarize the following document(s):\n%s", docContext)
	summary, err := a.model.Generate(ctx, model.Request{Instructions: summarizeInstructions, Input: input})
	if err != nil {
		a.logger.Error("summarize.generate.failed", "error", err.Error())
		state.Response = "Sorry, I ran into a problem summarizing that. Please try again."
		return nil
	}
	state.Response = summary
	return nil
}
