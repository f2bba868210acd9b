package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes that escape to the caller as hard
// turn-level failures. Everything else (document resolution, tool execution)
// is absorbed by the owning processing path and folded into the response.
var (
	// ErrClassification marks a failed or invalid intent classification.
	// The system fails closed: no silent default path is taken.
	ErrClassification = errors.New("intent classification failed")

	// ErrPersistence marks a session store read or write failure. A turn
	// must not report success if its state cannot be durably saved.
	ErrPersistence = errors.New("session persistence failed")
)

// Tool error codes used across the tool set.
const (
	// CodeValidation marks a schema / argument mismatch.
	CodeValidation = "VALIDATION_ERROR"
	// CodeExecution marks a failure inside the tool implementation.
	CodeExecution = "EXECUTION_ERROR"
	// CodeNotFound marks an unknown document identifier.
	CodeNotFound = "NOT_FOUND"
	// CodeUnsafeExpression marks a calculator input that is malformed or
	// reaches beyond plain arithmetic.
	CodeUnsafeExpression = "UNSAFE_EXPRESSION"
)

// ToolError is the uniform error shape returned by tool invocations. Paths
// recover from it locally; the audit log still records the failed attempt.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a ToolError with the given code.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
