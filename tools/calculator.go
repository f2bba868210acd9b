package tools

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/karsten42/docpilot/core"
)

// CalculatorTool evaluates plain arithmetic expressions: decimal numbers,
// + - * /, parentheses and unary minus. Anything else is rejected with an
// UNSAFE_EXPRESSION error; the tool never evaluates code. Implemented as a
// small recursive-descent parser so malformed input is a recoverable error,
// not a crash.
type CalculatorTool struct{}

var _ core.Tool = (*CalculatorTool)(nil)

// NewCalculatorTool constructs a CalculatorTool.
func NewCalculatorTool() *CalculatorTool { return &CalculatorTool{} }

// Name implements core.Tool.
func (t *CalculatorTool) Name() string { return "calculate" }

// Description implements core.Tool.
func (t *CalculatorTool) Description() string {
	return "Evaluate an arithmetic expression (+, -, *, /, parentheses) and return the numeric result"
}

// Parameters implements core.Tool.
func (t *CalculatorTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"expression": map[string]any{"type": "string", "description": "Arithmetic expression, e.g. (1500.00 + 2300.50) / 2"},
		},
		"required": []string{"expression"},
	}
}

// Call implements core.Tool.
func (t *CalculatorTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	expr, _ := args["expression"].(string)
	result, err := Evaluate(expr)
	if err != nil {
		return nil, err
	}
	return map[string]any{"expression": expr, "result": result}, nil
}

// Evaluate parses and evaluates an arithmetic expression.
func Evaluate(expr string) (float64, error) {
	if strings.TrimSpace(expr) == "" {
		return 0, core.NewToolError("calculate", "expression must not be empty", core.CodeUnsafeExpression)
	}
	p := &exprParser{input: expr}
	value, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return 0, core.NewToolError("calculate",
			fmt.Sprintf("unexpected character %q at position %d", p.input[p.pos], p.pos), core.CodeUnsafeExpression)
	}
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, core.NewToolError("calculate", "expression result is not a finite number", core.CodeExecution)
	}
	return value, nil
}

// exprParser implements the grammar:
//
//	expr   = term   { ("+" | "-") term }
//	term   = factor { ("*" | "/") factor }
//	factor = number | "-" factor | "(" expr ")"
type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) parseExpr() (float64, error) {
	value, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		if op, ok := p.peekOp("+-"); ok {
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			if op == '+' {
				value += rhs
			} else {
				value -= rhs
			}
			continue
		}
		return value, nil
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	value, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		if op, ok := p.peekOp("*/"); ok {
			p.pos++
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			if op == '*' {
				value *= rhs
			} else {
				if rhs == 0 {
					return 0, core.NewToolError("calculate", "division by zero", core.CodeExecution)
				}
				value /= rhs
			}
			continue
		}
		return value, nil
	}
}

func (p *exprParser) parseFactor() (float64, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0, core.NewToolError("calculate", "unexpected end of expression", core.CodeUnsafeExpression)
	}
	switch c := p.input[p.pos]; {
	case c == '-':
		p.pos++
		value, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		return -value, nil
	case c == '(':
		p.pos++
		value, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return 0, core.NewToolError("calculate", "missing closing parenthesis", core.CodeUnsafeExpression)
		}
		p.pos++
		return value, nil
	case c >= '0' && c <= '9' || c == '.':
		return p.parseNumber()
	default:
		return 0, core.NewToolError("calculate",
			fmt.Sprintf("unexpected character %q at position %d", c, p.pos), core.CodeUnsafeExpression)
	}
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			p.pos++
			continue
		}
		break
	}
	value, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, core.NewToolError("calculate",
			fmt.Sprintf("invalid number %q", p.input[start:p.pos]), core.CodeUnsafeExpression)
	}
	return value, nil
}

func (p *exprParser) peekOp(ops string) (byte, bool) {
	if p.pos < len(p.input) && strings.IndexByte(ops, p.input[p.pos]) >= 0 {
		return p.input[p.pos], true
	}
	return 0, false
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}
