package intent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karsten42/docpilot/core"
	"github.com/karsten42/docpilot/model"
)

func TestClassifier_Classify(t *testing.T) {
	m := model.NewMockModel()
	m.AddStructured("intent_decision", "what does INV-001 say", map[string]any{
		"intent":     "qa",
		"confidence": 0.93,
	})

	c := NewClassifier(m)
	decision, err := c.Classify(t.Context(), "what does INV-001 say about the total?", "")
	require.NoError(t, err)
	assert.Equal(t, core.IntentQA, decision.Intent)
	assert.InDelta(t, 0.93, decision.Confidence, 1e-9)
}

func TestClassifier_SummaryIncludedInPrompt(t *testing.T) {
	m := model.NewMockModel()
	// Keyed on summary content: the match only fires if the condensed
	// history made it into the model input.
	m.AddStructured("intent_decision", "talked about invoices", map[string]any{
		"intent":     "calculation",
		"confidence": 0.8,
	})

	c := NewClassifier(m)
	decision, err := c.Classify(t.Context(), "add them up", "User: talked about invoices\nAssistant: ok")
	require.NoError(t, err)
	assert.Equal(t, core.IntentCalculation, decision.Intent)
}

func TestClassifier_FailsClosed(t *testing.T) {
	tests := []struct {
		name string
		obj  map[string]any
	}{
		{"unknown intent", map[string]any{"intent": "chitchat", "confidence": 0.9}},
		{"confidence out of range", map[string]any{"intent": "qa", "confidence": 1.5}},
		{"negative confidence", map[string]any{"intent": "qa", "confidence": -0.2}},
		{"missing intent", map[string]any{"confidence": 0.9}},
		{"missing confidence", map[string]any{"intent": "qa"}},
		{"non-string intent", map[string]any{"intent": 3, "confidence": 0.9}},
		{"non-numeric confidence", map[string]any{"intent": "qa", "confidence": "high"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := model.NewMockModel()
			m.AddStructured("intent_decision", "", tt.obj)

			c := NewClassifier(m)
			_, err := c.Classify(t.Context(), "anything", "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrClassification))
		})
	}
}

func TestClassifier_ModelFailureWrapsClassificationError(t *testing.T) {
	m := model.NewMockModel()
	m.Fail(assert.AnError)

	c := NewClassifier(m)
	_, err := c.Classify(t.Context(), "anything", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrClassification))
}
