// Package intent classifies each user turn into one of the three processing
// paths. The classifier asks the language model for a schema-constrained
// decision and validates it on receipt; anything outside the closed intent
// enumeration or the [0,1] confidence range is a classification error. The
// policy is fail closed: there is no silent default path.
package intent

import (
	"context"
	"fmt"

	"github.com/karsten42/docpilot/core"
	"github.com/karsten42/docpilot/logging"
	"github.com/karsten42/docpilot/model"
)

const instructions = `You route user requests about a document corpus.
Classify the latest message into exactly one intent:
- "qa": a question answered from document content
- "summarization": a request to condense one or more documents
- "calculation": a request for a numeric result derived from document fields
Use the conversation summary only to resolve ambiguity.`

// DecisionSchema is the structured-output contract for classification. The
// enum and range constraints mirror core.IntentDecision.Validate; the model
// is constrained to the shape and the classifier still validates the result.
var DecisionSchema = model.Schema{
	Name:        "intent_decision",
	Description: "Routing decision for one user turn",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"intent": map[string]any{
				"type": "string",
				"enum": []string{string(core.IntentQA), string(core.IntentSummarization), string(core.IntentCalculation)},
			},
			"confidence": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 1,
			},
		},
		"required":             []string{"intent", "confidence"},
		"additionalProperties": false,
	},
}

// Classifier produces validated intent decisions.
type Classifier struct {
	model  model.Model
	logger logging.Logger
}

// Options configure a Classifier.
type Options struct {
	Logger logging.Logger
}

// NewClassifier constructs a Classifier over the given model.
func NewClassifier(m model.Model, optFns ...func(o *Options)) *Classifier {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Classifier{model: m, logger: opts.Logger}
}

// Classify returns the decision for the latest user message given the
// condensed history. Model failures and invalid payloads are returned as
// errors wrapping core.ErrClassification.
func (c *Classifier) Classify(ctx context.Context, userInput, conversationSummary string) (core.IntentDecision, error) {
	input := userInput
	if conversationSummary != "" {
		input = fmt.Sprintf("Conversation so far:\n%s\n\nLatest message:\n%s", conversationSummary, userInput)
	}

	obj, err := c.model.GenerateStructured(ctx, model.Request{Instructions: instructions, Input: input}, DecisionSchema)
	if err != nil {
		return core.IntentDecision{}, fmt.Errorf("%w: %v", core.ErrClassification, err)
	}

	decision, err := decode(obj)
	if err != nil {
		return core.IntentDecision{}, err
	}
	if err := decision.Validate(); err != nil {
		return core.IntentDecision{}, err
	}

	c.logger.Info("intent.classified", "intent", string(decision.Intent), "confidence", decision.Confidence)
	return decision, nil
}

// decode maps the raw structured result onto an IntentDecision without
// coercing anything: a missing or mistyped field is a classification error.
func decode(obj map[string]any) (core.IntentDecision, error) {
	rawIntent, ok := obj["intent"].(string)
	if !ok {
		return core.IntentDecision{}, fmt.Errorf("%w: missing or non-string intent field", core.ErrClassification)
	}
	rawConfidence, ok := obj["confidence"].(float64)
	if !ok {
		return core.IntentDecision{}, fmt.Errorf("%w: missing or non-numeric confidence field", core.ErrClassification)
	}
	return core.IntentDecision{Intent: core.Intent(rawIntent), Confidence: rawConfidence}, nil
}
