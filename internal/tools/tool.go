package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/akepo225/offline-coding-agent/internal/parser"
)

// Result represents the uniform outcome of a tool execution.
//
// Output carries the tool-specific payload: full file content for reads,
// stdout for command runs, a resolved path for directory creation. Content
// truncation is a feedback-policy concern, never applied here.
type Result struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Err     string `json:"error,omitempty"`

	// Populated by command-running tools.
	Stdout   string `json:"stdout,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
	ExitCode int    `json:"exit_code,omitempty"`

	// Populated by write_file.
	Bytes int `json:"bytes,omitempty"`
}

// Ok builds a successful result with the given payload.
func Ok(output string) Result {
	return Result{Success: true, Output: output}
}

// Fail builds a failed result with a human-readable reason.
func Fail(format string, args ...interface{}) Result {
	msg := fmt.Sprintf(format, args...)
	return Result{Success: false, Err: msg, Output: msg}
}

// Tool defines the interface for operations the agent may invoke
type Tool interface {
	// Name returns the unique name of the tool
	Name() string

	// Description returns a description of what the tool does
	Description() string

	// Usage returns an example invocation in the wire format. The model
	// learns the syntax from these examples in the system prompt.
	Usage() string

	// Execute runs the tool with the given arguments and returns the result
	Execute(ctx context.Context, args parser.Args) Result
}

// Guarded is implemented by tools whose inputs must pass the safety
// denylist before execution. GuardedArgs names the command-like arguments
// to check.
type Guarded interface {
	GuardedArgs() []string
}

// Config holds the settings shared by the built-in tools.
type Config struct {
	// WorkDir is the directory relative paths resolve against and the
	// working directory for spawned processes.
	WorkDir string

	// Interpreter is the command used by execute_code (e.g. "python3").
	Interpreter string

	// CommandTimeout bounds run_command and execute_code unless a call
	// supplies its own timeout argument.
	CommandTimeout time.Duration
}
