// Package model abstracts the language-generation capability behind a
// minimal interface with two operations: free-text generation and
// schema-constrained structured generation. Provider adapters live in
// model/openai and model/anthropic; MockModel supports deterministic tests.
package model

import (
	"context"
	"fmt"
	"strings"
)

// Request captures the normalized model input produced by the classifier and
// the processing paths.
type Request struct {
	// Instructions is the system-level framing for the call.
	Instructions string `json:"instructions"`
	// Input is the user-level prompt for this call.
	Input string `json:"input"`
}

// Schema declares the target shape for a structured generation call. The
// Parameters map is a minimal JSON schema (object type, properties with
// enum / range constraints, required list). Conformance is validated by the
// caller on receipt; violations are recoverable errors, never coerced.
type Schema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock"
}

// Model is the minimal interface required to drive generation.
type Model interface {
	// Generate produces free text for the request.
	Generate(ctx context.Context, req Request) (string, error)

	// GenerateStructured produces an object conforming to the schema. The
	// returned map is decoded JSON; field-level validation is the caller's
	// responsibility.
	GenerateStructured(ctx context.Context, req Request, schema Schema) (map[string]any, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a deterministic in-memory Model for tests and examples.
// Free-text responses are keyed by request input: an exact match wins,
// otherwise the first registered key contained in the input matches,
// otherwise a default echo response is produced. Structured responses are
// additionally keyed by schema name so different structured calls in one
// turn never collide. Structured calls with no registered object return an
// error, which exercises the fail-closed classification policy.
type MockModel struct {
	info       Info
	responses  map[string]string
	textKeys   []string
	structured []structuredResponse
	err        error
}

type structuredResponse struct {
	schema string
	key    string
	obj    map[string]any
}

// NewMockModel constructs an empty MockModel.
func NewMockModel() *MockModel {
	return &MockModel{
		info:      Info{Name: "mock", Provider: "mock"},
		responses: map[string]string{},
	}
}

// AddResponse registers a canned free-text completion for an input key.
func (m *MockModel) AddResponse(key, response string) {
	if _, ok := m.responses[key]; !ok {
		m.textKeys = append(m.textKeys, key)
	}
	m.responses[key] = response
}

// AddStructured registers a canned structured object for a schema name and
// input key. An empty schema name matches any schema.
func (m *MockModel) AddStructured(schemaName, key string, obj map[string]any) {
	m.structured = append(m.structured, structuredResponse{schema: schemaName, key: key, obj: obj})
}

// Fail makes every subsequent call return err.
func (m *MockModel) Fail(err error) { m.err = err }

// Generate implements Model.
func (m *MockModel) Generate(_ context.Context, req Request) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if resp, ok := m.responses[req.Input]; ok {
		return resp, nil
	}
	for _, key := range m.textKeys {
		if strings.Contains(req.Input, key) {
			return m.responses[key], nil
		}
	}
	return fmt.Sprintf("Mock response to: %s", req.Input), nil
}

// GenerateStructured implements Model.
func (m *MockModel) GenerateStructured(_ context.Context, req Request, schema Schema) (map[string]any, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, sr := range m.structured {
		if sr.schema != "" && sr.schema != schema.Name {
			continue
		}
		if sr.key == req.Input || strings.Contains(req.Input, sr.key) {
			return sr.obj, nil
		}
	}
	return nil, fmt.Errorf("mock model: no structured response registered for schema %q", schema.Name)
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
