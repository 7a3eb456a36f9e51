package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akepo225/offline-coding-agent/internal/parser"
	"github.com/akepo225/offline-coding-agent/internal/tools"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_RecordAndList(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	args := parser.NewArgs()
	args.Set("file_path", "a.txt")
	call := parser.ToolCall{Name: "read_file", Args: args}

	require.NoError(t, store.RecordExecution(ctx, "session-1", 0, call, tools.Ok("content")))

	failed := tools.Fail("read_file: file not found: b.txt")
	badArgs := parser.NewArgs()
	badArgs.Set("file_path", "b.txt")
	require.NoError(t, store.RecordExecution(ctx, "session-1", 1,
		parser.ToolCall{Name: "read_file", Args: badArgs}, failed))

	executions, err := store.ListSession(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, executions, 2)

	assert.Equal(t, "read_file", executions[0].ToolName)
	assert.Equal(t, `{"file_path":"a.txt"}`, executions[0].Arguments)
	assert.True(t, executions[0].Success)
	assert.Equal(t, "content", executions[0].Output)

	assert.False(t, executions[1].Success)
	assert.Contains(t, executions[1].Error, "file not found")
	assert.Equal(t, 1, executions[1].Iteration)
}

func TestStore_SessionsIsolated(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	call := parser.ToolCall{Name: "git_status", Args: parser.NewArgs()}
	require.NoError(t, store.RecordExecution(ctx, "a", 0, call, tools.Ok("clean")))
	require.NoError(t, store.RecordExecution(ctx, "b", 0, call, tools.Ok("clean")))

	executions, err := store.ListSession(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, executions, 1)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "audit.db")
	ctx := context.Background()

	store, err := NewStore(path)
	require.NoError(t, err)
	call := parser.ToolCall{Name: "git_status", Args: parser.NewArgs()}
	require.NoError(t, store.RecordExecution(ctx, "s", 0, call, tools.Ok("clean")))
	require.NoError(t, store.Close())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	executions, err := reopened.ListSession(ctx, "s")
	require.NoError(t, err)
	assert.Len(t, executions, 1)
}

func TestStore_RequiresPath(t *testing.T) {
	t.Parallel()

	_, err := NewStore("  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}
