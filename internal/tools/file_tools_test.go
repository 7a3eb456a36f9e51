package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akepo225/offline-coding-agent/internal/parser"
)

func argsOf(pairs ...string) parser.Args {
	args := parser.NewArgs()
	for i := 0; i+1 < len(pairs); i += 2 {
		args.Set(pairs[i], pairs[i+1])
	}
	return args
}

func TestReadFile_FullContent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := "line1\nline2\nline3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte(content), 0644))

	tool := &ReadFile{WorkDir: dir}
	result := tool.Execute(context.Background(), argsOf("file_path", "a.txt"))

	require.True(t, result.Success, result.Err)
	// The executor never truncates; the full content comes back byte for byte.
	assert.Equal(t, content, result.Output)
}

func TestReadFile_NotFound(t *testing.T) {
	t.Parallel()

	tool := &ReadFile{WorkDir: t.TempDir()}
	result := tool.Execute(context.Background(), argsOf("file_path", "missing.txt"))

	require.False(t, result.Success)
	assert.Contains(t, result.Err, "file not found")
}

func TestReadFile_Directory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	tool := &ReadFile{WorkDir: dir}
	result := tool.Execute(context.Background(), argsOf("file_path", "sub"))

	require.False(t, result.Success)
	assert.Contains(t, result.Err, "not a file")
}

func TestWriteFile_Verbatim(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := "def main():\n    print('hi')\n"

	tool := &WriteFile{WorkDir: dir}
	result := tool.Execute(context.Background(), argsOf("file_path", "out.py", "content", content))

	require.True(t, result.Success, result.Err)
	assert.Equal(t, len(content), result.Bytes)

	written, err := os.ReadFile(filepath.Join(dir, "out.py"))
	require.NoError(t, err)
	assert.Equal(t, content, string(written))
}

func TestWriteFile_NormalizesLiteralEscapes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tool := &WriteFile{WorkDir: dir}

	// A model emitting the two-character sequences instead of real
	// control characters: header\n\tvalue becomes two lines with a tab.
	result := tool.Execute(context.Background(),
		argsOf("file_path", "norm.txt", "content", `header\n\tvalue`))
	require.True(t, result.Success, result.Err)

	written, err := os.ReadFile(filepath.Join(dir, "norm.txt"))
	require.NoError(t, err)
	assert.Equal(t, "header\n\tvalue", string(written))
}

func TestWriteFile_RealNewlinesDisableNormalization(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tool := &WriteFile{WorkDir: dir}

	// Content with actual newlines keeps its literal \n sequences: the
	// model clearly produced real line breaks where it meant them.
	content := "a regex: \\n matches a newline\nsecond line"
	result := tool.Execute(context.Background(),
		argsOf("file_path", "regex.txt", "content", content))
	require.True(t, result.Success, result.Err)

	written, err := os.ReadFile(filepath.Join(dir, "regex.txt"))
	require.NoError(t, err)
	assert.Equal(t, content, string(written))
}

func TestWriteFile_CreatesParents(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tool := &WriteFile{WorkDir: dir}

	result := tool.Execute(context.Background(),
		argsOf("file_path", "deep/nested/file.txt", "content", "x"))
	require.True(t, result.Success, result.Err)

	_, err := os.Stat(filepath.Join(dir, "deep", "nested", "file.txt"))
	assert.NoError(t, err)
}

func TestWriteFile_MissingContent(t *testing.T) {
	t.Parallel()

	tool := &WriteFile{WorkDir: t.TempDir()}
	result := tool.Execute(context.Background(), argsOf("file_path", "a.txt"))

	require.False(t, result.Success)
	assert.Contains(t, result.Err, "content")
}

func TestCreateDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tool := &CreateDirectory{WorkDir: dir}

	result := tool.Execute(context.Background(), argsOf("dir_path", "a/b/c"))
	require.True(t, result.Success, result.Err)
	assert.Equal(t, filepath.Join(dir, "a", "b", "c"), result.Output)

	info, err := os.Stat(filepath.Join(dir, "a", "b", "c"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateDirectory_ExistsAsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "taken"), []byte("x"), 0644))

	tool := &CreateDirectory{WorkDir: dir}
	result := tool.Execute(context.Background(), argsOf("dir_path", "taken"))

	require.False(t, result.Success)
	assert.Contains(t, result.Err, "already exists as a file")
}

func TestListFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.py"), []byte("pass"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("text"), 0644))

	tool := &ListFiles{WorkDir: dir}
	result := tool.Execute(context.Background(), argsOf("directory", ".", "pattern", "*.py"))

	require.True(t, result.Success, result.Err)
	assert.Contains(t, result.Output, "a.py")
	assert.NotContains(t, result.Output, "b.txt")
}

func TestListFiles_MissingDirectory(t *testing.T) {
	t.Parallel()

	tool := &ListFiles{WorkDir: t.TempDir()}
	result := tool.Execute(context.Background(), argsOf("directory", "nope"))

	require.False(t, result.Success)
	assert.Contains(t, result.Err, "directory not found")
}
