package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Model = (*MockModel)(nil)

func TestMockModel_Generate(t *testing.T) {
	m := NewMockModel()
	m.AddResponse("exact input", "exact response")
	m.AddResponse("fragment", "substring response")

	got, err := m.Generate(t.Context(), Request{Input: "exact input"})
	require.NoError(t, err)
	assert.Equal(t, "exact response", got)

	got, err = m.Generate(t.Context(), Request{Input: "contains the fragment somewhere"})
	require.NoError(t, err)
	assert.Equal(t, "substring response", got)

	got, err = m.Generate(t.Context(), Request{Input: "unregistered"})
	require.NoError(t, err)
	assert.Contains(t, got, "unregistered")
}

func TestMockModel_StructuredKeyedBySchema(t *testing.T) {
	m := NewMockModel()
	m.AddStructured("intent_decision", "the question", map[string]any{"intent": "qa"})
	m.AddStructured("grounded_answer", "the question", map[string]any{"answer": "42"})

	obj, err := m.GenerateStructured(t.Context(), Request{Input: "the question"}, Schema{Name: "grounded_answer"})
	require.NoError(t, err)
	assert.Equal(t, "42", obj["answer"])

	obj, err = m.GenerateStructured(t.Context(), Request{Input: "the question"}, Schema{Name: "intent_decision"})
	require.NoError(t, err)
	assert.Equal(t, "qa", obj["intent"])
}

func TestMockModel_UnregisteredStructuredFails(t *testing.T) {
	m := NewMockModel()
	_, err := m.GenerateStructured(t.Context(), Request{Input: "anything"}, Schema{Name: "intent_decision"})
	require.Error(t, err)
}

func TestMockModel_Fail(t *testing.T) {
	m := NewMockModel()
	m.AddResponse("x", "y")
	m.Fail(assert.AnError)

	_, err := m.Generate(t.Context(), Request{Input: "x"})
	require.Error(t, err)
	_, err = m.GenerateStructured(t.Context(), Request{Input: "x"}, Schema{Name: "s"})
	require.Error(t, err)
}
