package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string"},
			"limit": map[string]any{"type": "integer"},
			"score": map[string]any{"type": "number"},
			"flags": map[string]any{"type": "array"},
		},
		"required": []string{"query"},
	}

	tests := []struct {
		name    string
		args    map[string]any
		wantErr string
	}{
		{name: "valid", args: map[string]any{"query": "invoices", "limit": float64(5)}},
		{name: "extra fields allowed", args: map[string]any{"query": "x", "unknown": true}},
		{name: "whole float as integer", args: map[string]any{"query": "x", "limit": float64(3)}},
		{name: "missing required", args: map[string]any{"limit": float64(5)}, wantErr: "query"},
		{name: "wrong type", args: map[string]any{"query": 42}, wantErr: "query"},
		{name: "fractional integer", args: map[string]any{"query": "x", "limit": 2.5}, wantErr: "limit"},
		{name: "number accepts int", args: map[string]any{"query": "x", "score": 3}},
		{name: "array mismatch", args: map[string]any{"query": "x", "flags": "not-an-array"}, wantErr: "flags"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParameters(tt.args, schema)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantErr, vErr.Field)
		})
	}
}

func TestValidateParameters_RequiredAsAnySlice(t *testing.T) {
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"id": map[string]any{"type": "string"}},
		"required":   []any{"id"},
	}
	require.Error(t, ValidateParameters(map[string]any{}, schema))
	require.NoError(t, ValidateParameters(map[string]any{"id": "x"}, schema))
}
