package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCommand_CapturesStdout(t *testing.T) {
	t.Parallel()

	tool := &RunCommand{WorkDir: t.TempDir()}
	result := tool.Execute(context.Background(), argsOf("command", "echo hello"))

	require.True(t, result.Success, result.Err)
	assert.Equal(t, "hello\n", result.Stdout)
	assert.Equal(t, "hello\n", result.Output)
	assert.Equal(t, 0, result.ExitCode)
}

func TestRunCommand_NonZeroExit(t *testing.T) {
	t.Parallel()

	tool := &RunCommand{WorkDir: t.TempDir()}
	result := tool.Execute(context.Background(), argsOf("command", "echo oops >&2; exit 3"))

	require.False(t, result.Success)
	assert.Equal(t, 3, result.ExitCode)
	assert.Contains(t, result.Stderr, "oops")
	assert.Contains(t, result.Err, "status 3")
}

func TestRunCommand_Timeout(t *testing.T) {
	t.Parallel()

	tool := &RunCommand{WorkDir: t.TempDir(), Timeout: 100 * time.Millisecond}
	result := tool.Execute(context.Background(), argsOf("command", "sleep 5"))

	require.False(t, result.Success)
	assert.Contains(t, result.Err, "timed out")
}

func TestRunCommand_PerCallTimeoutArgument(t *testing.T) {
	t.Parallel()

	tool := &RunCommand{WorkDir: t.TempDir(), Timeout: time.Minute}
	result := tool.Execute(context.Background(), argsOf("command", "sleep 5", "timeout", "1"))

	require.False(t, result.Success)
	assert.Contains(t, result.Err, "timed out")
}

func TestExecuteCode_InlineSnippet(t *testing.T) {
	t.Parallel()

	// Using sh as the interpreter keeps the test hermetic.
	tool := &ExecuteCode{WorkDir: t.TempDir(), Interpreter: "sh"}
	result := tool.Execute(context.Background(), argsOf("code", "echo from-code"))

	require.True(t, result.Success, result.Err)
	assert.Equal(t, "from-code\n", result.Stdout)
}

func TestExecuteCode_RequiresExactlyOneInput(t *testing.T) {
	t.Parallel()

	tool := &ExecuteCode{WorkDir: t.TempDir(), Interpreter: "sh"}

	neither := tool.Execute(context.Background(), argsOf())
	require.False(t, neither.Success)
	assert.Contains(t, neither.Err, "exactly one")

	both := tool.Execute(context.Background(),
		argsOf("code", "echo x", "file_path", "x.sh"))
	require.False(t, both.Success)
	assert.Contains(t, both.Err, "exactly one")
}
