package tools

import (
	"context"
	"errors"

	"github.com/akepo225/offline-coding-agent/internal/parser"
	"github.com/akepo225/offline-coding-agent/pkg/log"
)

// ErrConfirmationDenied marks a call the user declined to execute.
var ErrConfirmationDenied = errors.New("execution not confirmed")

// ConfirmFunc asks an external collaborator (typically the CLI prompt)
// whether a pending call may run. Returning false records the call as
// denied without executing it.
type ConfirmFunc func(call parser.ToolCall) bool

// Executor runs parsed tool calls against the registry with safety and
// confirmation gating. Execution is synchronous: one call completes before
// the next begins.
type Executor struct {
	registry    *Registry
	safety      *SafetyChecker
	confirm     ConfirmFunc
	autoConfirm bool
}

// NewExecutor creates an executor. confirm may be nil, in which case every
// call is treated as confirmed (equivalent to auto-confirm).
func NewExecutor(registry *Registry, safety *SafetyChecker, confirm ConfirmFunc, autoConfirm bool) *Executor {
	return &Executor{
		registry:    registry,
		safety:      safety,
		confirm:     confirm,
		autoConfirm: autoConfirm,
	}
}

// SetAutoConfirm toggles the confirmation bypass for the session.
func (e *Executor) SetAutoConfirm(auto bool) {
	e.autoConfirm = auto
}

// AutoConfirm reports whether the confirmation gate is bypassed.
func (e *Executor) AutoConfirm() bool {
	return e.autoConfirm
}

// Execute runs a single call through the gates and the tool itself.
// All failure modes are folded into the Result; Execute never panics
// across the tool boundary.
func (e *Executor) Execute(ctx context.Context, call parser.ToolCall) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("tool %s panicked: %v", call.Name, r)
			result = Fail("tool %q panicked: %v", call.Name, r)
		}
	}()

	tool, exists := e.registry.Get(call.Name)
	if !exists {
		return Fail("tool %q not found", call.Name)
	}

	// Safety gate: denylisted inputs are rejected before anything runs.
	if guarded, ok := tool.(Guarded); ok && e.safety != nil {
		for _, argName := range guarded.GuardedArgs() {
			value, present := call.Args.Get(argName)
			if !present {
				continue
			}
			if err := e.safety.Check(value); err != nil {
				log.Warn("tool %s blocked: %v", call.Name, err)
				return Fail("%s: %v", call.Name, err)
			}
		}
	}

	// Confirmation gate, unless the session runs auto-confirmed.
	if !e.autoConfirm && e.confirm != nil && !e.confirm(call) {
		log.Info("tool %s skipped: %v", call.Name, ErrConfirmationDenied)
		return Fail("%s: %v by user", call.Name, ErrConfirmationDenied)
	}

	result = tool.Execute(ctx, call.Args)
	if result.Success {
		log.Info("tool %s executed", call.Name)
	} else {
		log.Warn("tool %s failed: %s", call.Name, result.Err)
	}
	return result
}
