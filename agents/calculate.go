package agents

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/karsten42/docpilot/core"
	"github.com/karsten42/docpilot/logging"
	"github.com/karsten42/docpilot/tools"
)

// CalculationAgent computes numeric results from document fields: it reads
// the resolved documents, extracts a numeric field from each via the
// statistics tool, derives an arithmetic expression and evaluates it with
// the calculator tool.
type CalculationAgent struct {
	kit      *tools.Kit
	resolver *Resolver
	logger   logging.Logger
}

// NewCalculationAgent constructs the calculation path.
func NewCalculationAgent(kit *tools.Kit, optFns ...func(o *Options)) *CalculationAgent {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &CalculationAgent{kit: kit, resolver: NewResolver(kit), logger: opts.Logger}
}

// Step returns the workflow step this agent serves.
func (a *CalculationAgent) Step() core.Step { return core.StepCalculation }

// Run resolves the documents, extracts one numeric field per document and
// returns the computed result. A malformed or unsafe expression is a
// recoverable tool error folded into the response.
func (a *CalculationAgent) Run(ctx context.Context, turn core.Turn, state *core.AgentState) error {
	toolCtx := core.NewToolContext(ctx, turn.SessionID, turn.TurnID, a.logger)

	ids, ok := a.resolver.Resolve(toolCtx, state.UserInput, state.ActiveDocuments)
	if !ok {
		state.Response = clarificationResponse
		return nil
	}

	type operand struct {
		docID string
		field string
		value float64
	}
	var operands []operand
	var failures []string

	for i, id := range ids {
		if i >= maxDocumentsPerTurn {
			break
		}
		// Read first so the answer is grounded in the actual document, then
		// pull the structured numeric fields.
		if _, err := a.kit.Invoke(toolCtx, "read_document", map[string]any{"document_id": id}); err != nil {
			failures = append(failures, fmt.Sprintf("%s (%v)", id, err))
			continue
		}
		state.Touch(id)

		result, err := a.kit.Invoke(toolCtx, "document_statistics", map[string]any{"document_id": id})
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s (%v)", id, err))
			continue
		}
		stats, _ := result.(map[string]any)
		fields, _ := stats["fields"].(map[string]any)
		name, value, ok := pickField(state.UserInput, fields)
		if !ok {
			failures = append(failures, fmt.Sprintf("%s (no numeric fields)", id))
			continue
		}
		operands = append(operands, operand{docID: id, field: name, value: value})
	}

	if len(operands) == 0 {
		if len(failures) > 0 {
			state.Response = "I could not extract numbers to calculate with: " + strings.Join(failures, "; ")
		} else {
			state.Response = clarificationResponse
		}
		return nil
	}

	op := detectOperation(state.UserInput)
	values := make([]float64, len(operands))
	for i, o := range operands {
		values[i] = o.value
	}
	expression := buildExpression(op, values)

	result, err := a.kit.Invoke(toolCtx, "calculate", map[string]any{"expression": expression})
	if err != nil {
		state.Response = fmt.Sprintf("I could not evaluate %q: %v", expression, err)
		return nil
	}
	calc, _ := result.(map[string]any)
	computed, _ := calc["result"].(float64)

	var parts []string
	for _, o := range operands {
		parts = append(parts, fmt.Sprintf("%s %s (%.2f)", o.docID, o.field, o.value))
	}
	state.Response = fmt.Sprintf("%s: %s = %.2f", op.label, strings.Join(parts, op.joiner), computed)
	return nil
}

// pickField chooses the numeric field to calculate with: a field whose name
// appears in the input wins, then "total", then the alphabetically first
// field for determinism.
func pickField(input string, fields map[string]any) (string, float64, bool) {
	if len(fields) == 0 {
		return "", 0, false
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		if _, ok := fields[name].(float64); ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", 0, false
	}
	sort.Strings(names)

	lowered := strings.ToLower(input)
	for _, name := range names {
		if strings.Contains(lowered, strings.ToLower(name)) {
			return name, fields[name].(float64), true
		}
	}
	for _, name := range names {
		if name == "total" {
			return name, fields[name].(float64), true
		}
	}
	return names[0], fields[names[0]].(float64), true
}

// operation describes how the extracted values are combined.
type operation struct {
	label   string
	joiner  string
	infix   string
	average bool
}

func detectOperation(input string) operation {
	lowered := strings.ToLower(input)
	switch {
	case strings.Contains(lowered, "average") || strings.Contains(lowered, "mean"):
		return operation{label: "Average", joiner: ", ", infix: " + ", average: true}
	case strings.Contains(lowered, "difference") || strings.Contains(lowered, "subtract") || strings.Contains(lowered, "minus"):
		return operation{label: "Difference", joiner: " - ", infix: " - "}
	case strings.Contains(lowered, "product") || strings.Contains(lowered, "multiply") || strings.Contains(lowered, "times"):
		return operation{label: "Product", joiner: " * ", infix: " * "}
	default:
		return operation{label: "Sum", joiner: " + ", infix: " + "}
	}
}

func buildExpression(op operation, values []float64) string {
	terms := make([]string, len(values))
	for i, v := range values {
		// Plain decimal form; %v would switch to exponent notation for
		// large values, which the calculator grammar does not accept.
		terms[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	expr := strings.Join(terms, op.infix)
	if op.average {
		return fmt.Sprintf("(%s) / %d", expr, len(values))
	}
	return expr
}
