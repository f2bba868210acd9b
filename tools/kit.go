// Package tools implements the four corpus capabilities (search, reader,
// statistics, calculator) behind the core.Tool interface, plus the Kit that
// routes every invocation through schema validation and the append-only
// audit log.
package tools

import (
	"fmt"
	"time"

	"github.com/karsten42/docpilot/core"
	"github.com/karsten42/docpilot/internal/util"
)

// Kit is the audited tool runner handed to the processing paths. Every
// invocation, successful or failed, produces exactly one audit entry keyed by
// the calling session.
type Kit struct {
	tools map[string]core.Tool
	audit core.AuditLog
	now   func() time.Time
}

// Options configure a Kit.
type Options struct {
	// Audit receives one entry per invocation. Defaults to a discard log.
	Audit core.AuditLog

	// Now supplies audit timestamps. Overridable for tests.
	Now func() time.Time
}

// NewKit registers the given tools.
func NewKit(toolset []core.Tool, optFns ...func(o *Options)) *Kit {
	opts := Options{Audit: discardLog{}, Now: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	kit := &Kit{tools: make(map[string]core.Tool, len(toolset)), audit: opts.Audit, now: opts.Now}
	for _, t := range toolset {
		kit.tools[t.Name()] = t
	}
	return kit
}

// Tools returns the registered tool names.
func (k *Kit) Tools() []string {
	names := make([]string, 0, len(k.tools))
	for name := range k.tools {
		names = append(names, name)
	}
	return names
}

// Invoke validates args against the tool's schema, executes it and records
// an audit entry. Failed validation and failed execution are both audited;
// the returned error is a *core.ToolError the caller can fold into a
// user-facing message.
func (k *Kit) Invoke(toolCtx *core.ToolContext, name string, args map[string]any) (any, error) {
	tool, ok := k.tools[name]
	if !ok {
		err := core.NewToolError(name, "unknown tool", core.CodeNotFound)
		k.record(toolCtx, name, args, nil, err)
		return nil, err
	}

	logger := toolCtx.Logger()
	start := k.now()
	logger.Debug("tool.call.start", "tool", name, "turn_id", toolCtx.TurnID())

	if err := util.ValidateParameters(args, tool.Parameters()); err != nil {
		logger.Warn("tool.call.validation_failed", "tool", name, "error", err.Error())
		toolErr := core.NewToolError(name, fmt.Sprintf("parameter validation failed: %v", err), core.CodeValidation)
		k.record(toolCtx, name, args, nil, toolErr)
		return nil, toolErr
	}

	result, err := tool.Call(toolCtx, args)
	if err != nil {
		toolErr, ok := err.(*core.ToolError)
		if !ok {
			toolErr = core.NewToolError(name, err.Error(), core.CodeExecution)
		}
		logger.Error("tool.call.error", "tool", name, "code", toolErr.Code, "error", toolErr.Message)
		k.record(toolCtx, name, args, nil, toolErr)
		return nil, toolErr
	}

	logger.Info("tool.call.success", "tool", name, "duration_ms", k.now().Sub(start).Milliseconds())
	k.record(toolCtx, name, args, result, nil)
	return result, nil
}

func (k *Kit) record(toolCtx *core.ToolContext, name string, args map[string]any, result any, callErr error) {
	entry := core.AuditEntry{
		SessionID: toolCtx.SessionID(),
		TurnID:    toolCtx.TurnID(),
		Tool:      name,
		Arguments: args,
		Result:    result,
		Timestamp: k.now().UTC(),
	}
	if callErr != nil {
		entry.Error = callErr.Error()
	}
	if err := k.audit.Record(entry); err != nil {
		// Audit failure must not mask the tool outcome.
		toolCtx.Logger().Error("tool.audit.failed", "tool", name, "error", err.Error())
	}
}

type discardLog struct{}

func (discardLog) Record(core.AuditEntry) error { return nil }
