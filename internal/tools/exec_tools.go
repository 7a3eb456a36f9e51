package tools

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"time"

	"github.com/akepo225/offline-coding-agent/internal/parser"
)

// defaultCommandTimeout bounds command execution when neither the tool
// configuration nor the call supplies a timeout.
const defaultCommandTimeout = 30 * time.Second

// ExecuteCode runs a snippet or a file with the configured interpreter.
// Exactly one of the 'code' and 'file_path' arguments must be provided.
type ExecuteCode struct {
	WorkDir     string
	Interpreter string
	Timeout     time.Duration
}

func (t *ExecuteCode) Name() string { return "execute_code" }

func (t *ExecuteCode) Description() string {
	return "Execute code with the configured interpreter, capturing stdout, stderr and exit status."
}

func (t *ExecuteCode) Usage() string { return "[TOOL: execute_code(code='print(\"hello\")')]" }

func (t *ExecuteCode) GuardedArgs() []string { return []string{"code"} }

func (t *ExecuteCode) Execute(ctx context.Context, args parser.Args) Result {
	code, hasCode := args.Get("code")
	path, hasPath := args.Get("file_path")
	if hasCode == hasPath {
		return Fail("execute_code: exactly one of 'code' or 'file_path' must be provided")
	}

	interpreter := t.Interpreter
	if interpreter == "" {
		interpreter = "python3"
	}

	var argv []string
	if hasCode {
		argv = []string{interpreter, "-c", code}
	} else {
		argv = []string{interpreter, resolvePath(t.WorkDir, path)}
	}

	return runProcess(ctx, t.WorkDir, argv, callTimeout(args, t.Timeout))
}

// RunCommand runs a shell command line.
type RunCommand struct {
	WorkDir string
	Timeout time.Duration
}

func (t *RunCommand) Name() string { return "run_command" }

func (t *RunCommand) Description() string {
	return "Run a shell command, capturing stdout, stderr and exit status."
}

func (t *RunCommand) Usage() string { return "[TOOL: run_command(command='ls -la')]" }

func (t *RunCommand) GuardedArgs() []string { return []string{"command"} }

func (t *RunCommand) Execute(ctx context.Context, args parser.Args) Result {
	command, ok := args.Get("command")
	if !ok || command == "" {
		return Fail("run_command: missing required argument 'command'")
	}
	return runProcess(ctx, t.WorkDir, []string{"sh", "-c", command}, callTimeout(args, t.Timeout))
}

// callTimeout resolves the effective timeout: a per-call 'timeout' argument
// in seconds wins over the configured default.
func callTimeout(args parser.Args, configured time.Duration) time.Duration {
	if raw, ok := args.Get("timeout"); ok {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if configured > 0 {
		return configured
	}
	return defaultCommandTimeout
}

// runProcess executes argv in workDir and folds the outcome into a Result.
// A timeout aborts only this call; the loop continues.
func runProcess(ctx context.Context, workDir string, argv []string, timeout time.Duration) Result {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if runCtx.Err() == context.DeadlineExceeded {
		result := Fail("execution timed out after %s", timeout)
		result.Stdout = stdout.String()
		result.Stderr = stderr.String()
		return result
	}

	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			result.Err = "command exited with status " + strconv.Itoa(result.ExitCode)
			result.Output = stderr.String()
			return result
		}
		return Fail("failed to start process: %v", err)
	}

	result.Success = true
	result.Output = stdout.String()
	return result
}
