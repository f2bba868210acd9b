package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karsten42/docpilot/core"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"1 + 2", 3},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 / 4", 2.5},
		{"-5 + 3", -2},
		{"-(2 + 3)", -5},
		{"1500 + 2300.5", 3800.5},
		{"(1500 + 2300.5) / 2", 1900.25},
		{"  7  ", 7},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Evaluate(tt.expr)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestEvaluate_MalformedIsRecoverable(t *testing.T) {
	tests := []struct {
		name string
		expr string
		code string
	}{
		{"empty", "", core.CodeUnsafeExpression},
		{"trailing operator", "1 +", core.CodeUnsafeExpression},
		{"unbalanced paren", "(1 + 2", core.CodeUnsafeExpression},
		{"letters", "rm -rf /", core.CodeUnsafeExpression},
		{"function call", "pow(2, 10)", core.CodeUnsafeExpression},
		{"double dot", "1..2 + 3", core.CodeUnsafeExpression},
		{"division by zero", "1 / 0", core.CodeExecution},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.expr)
			require.Error(t, err)
			var toolErr *core.ToolError
			require.ErrorAs(t, err, &toolErr)
			assert.Equal(t, tt.code, toolErr.Code)
		})
	}
}

func TestCalculatorTool_Call(t *testing.T) {
	tool := NewCalculatorTool()
	toolCtx := core.NewToolContext(t.Context(), "s1", "t1", nil)

	result, err := tool.Call(toolCtx, map[string]any{"expression": "2 * 21"})
	require.NoError(t, err)
	got := result.(map[string]any)
	assert.Equal(t, float64(42), got["result"])

	_, err = tool.Call(toolCtx, map[string]any{"expression": "os.exit()"})
	var toolErr *core.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, core.CodeUnsafeExpression, toolErr.Code)
}
