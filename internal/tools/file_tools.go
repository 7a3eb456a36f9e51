package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/akepo225/offline-coding-agent/internal/parser"
)

// ReadFile returns the complete content of a file. Truncation for prompt
// budgeting happens downstream in the feedback formatter; the result here
// is always the untruncated content.
type ReadFile struct {
	WorkDir string
}

func (t *ReadFile) Name() string { return "read_file" }

func (t *ReadFile) Description() string { return "Read the full contents of a file." }

func (t *ReadFile) Usage() string { return "[TOOL: read_file(file_path='example.py')]" }

func (t *ReadFile) Execute(_ context.Context, args parser.Args) Result {
	path, ok := args.Get("file_path")
	if !ok || path == "" {
		return Fail("read_file: missing required argument 'file_path'")
	}
	resolved := resolvePath(t.WorkDir, path)

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return Fail("read_file: file not found: %s", path)
		}
		return Fail("read_file: %v", err)
	}
	if info.IsDir() {
		return Fail("read_file: %s is a directory, not a file", path)
	}

	content, err := os.ReadFile(resolved)
	if err != nil {
		return Fail("read_file: %v", err)
	}
	return Ok(string(content))
}

// WriteFile writes caller-provided content verbatim, except for one
// documented normalization: literal \n and \t escape sequences that small
// code models commonly emit instead of real control characters are
// unescaped before writing. Parent directories are created as needed.
type WriteFile struct {
	WorkDir string
}

func (t *WriteFile) Name() string { return "write_file" }

func (t *WriteFile) Description() string { return "Write content to a file, creating it if needed." }

func (t *WriteFile) Usage() string {
	return "[TOOL: write_file(file_path='test.py', content='''print(\"hello\")''')]"
}

func (t *WriteFile) Execute(_ context.Context, args parser.Args) Result {
	path, ok := args.Get("file_path")
	if !ok || path == "" {
		return Fail("write_file: missing required argument 'file_path'")
	}
	content, ok := args.Get("content")
	if !ok {
		return Fail("write_file: missing required argument 'content'")
	}
	content = normalizeEscapes(content)

	resolved := resolvePath(t.WorkDir, path)
	if err := os.MkdirAll(filepath.Dir(resolved), 0755); err != nil {
		return Fail("write_file: %v", err)
	}
	if err := os.WriteFile(resolved, []byte(content), 0644); err != nil {
		return Fail("write_file: %v", err)
	}

	result := Ok(fmt.Sprintf("Wrote %d bytes to %s", len(content), path))
	result.Bytes = len(content)
	return result
}

// normalizeEscapes turns literal \n and \t two-character sequences into
// real control characters, but only when the content contains no actual
// newline bytes. Genuine multi-line content is left untouched, which keeps
// the transform conservative: a model that produced real newlines clearly
// did not intend the sequences literally.
func normalizeEscapes(content string) string {
	if strings.Contains(content, "\n") {
		return content
	}
	if !strings.Contains(content, `\n`) && !strings.Contains(content, `\t`) {
		return content
	}
	content = strings.ReplaceAll(content, `\n`, "\n")
	content = strings.ReplaceAll(content, `\t`, "\t")
	return content
}

// CreateDirectory creates a directory including missing parents.
type CreateDirectory struct {
	WorkDir string
}

func (t *CreateDirectory) Name() string { return "create_directory" }

func (t *CreateDirectory) Description() string { return "Create a directory, including parents." }

func (t *CreateDirectory) Usage() string { return "[TOOL: create_directory(dir_path='new_folder')]" }

func (t *CreateDirectory) Execute(_ context.Context, args parser.Args) Result {
	path, ok := args.Get("dir_path")
	if !ok {
		path, ok = args.Get("path")
	}
	if !ok || path == "" {
		return Fail("create_directory: missing required argument 'dir_path'")
	}
	resolved := resolvePath(t.WorkDir, path)

	if info, err := os.Stat(resolved); err == nil && !info.IsDir() {
		return Fail("create_directory: %s already exists as a file", path)
	}
	if err := os.MkdirAll(resolved, 0755); err != nil {
		return Fail("create_directory: %v", err)
	}
	return Ok(resolved)
}

// listCap bounds how many entries a listing result spells out.
const listCap = 10

// ListFiles lists files in a directory matching a glob pattern.
type ListFiles struct {
	WorkDir string
}

func (t *ListFiles) Name() string { return "list_files" }

func (t *ListFiles) Description() string { return "List files in a directory matching a pattern." }

func (t *ListFiles) Usage() string { return "[TOOL: list_files(directory='.', pattern='*.py')]" }

func (t *ListFiles) Execute(_ context.Context, args parser.Args) Result {
	dir, ok := args.Get("directory")
	if !ok || dir == "" {
		dir = "."
	}
	pattern, ok := args.Get("pattern")
	if !ok || pattern == "" {
		pattern = "*"
	}
	resolved := resolvePath(t.WorkDir, dir)

	if info, err := os.Stat(resolved); err != nil || !info.IsDir() {
		return Fail("list_files: directory not found: %s", dir)
	}

	matches, err := filepath.Glob(filepath.Join(resolved, pattern))
	if err != nil {
		return Fail("list_files: invalid pattern %q: %v", pattern, err)
	}

	type entry struct {
		name string
		size int64
	}
	var files []entry
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, entry{name: info.Name(), size: info.Size()})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Files in %s:\n", dir)
	for i, f := range files {
		if i >= listCap {
			fmt.Fprintf(&sb, "  ... and %d more files\n", len(files)-listCap)
			break
		}
		fmt.Fprintf(&sb, "  - %s (%d bytes)\n", f.name, f.size)
	}
	if len(files) == 0 {
		sb.WriteString("  (no matching files)\n")
	}
	return Ok(strings.TrimRight(sb.String(), "\n"))
}

// resolvePath joins relative paths onto the working directory.
func resolvePath(workDir, path string) string {
	if filepath.IsAbs(path) || workDir == "" {
		return path
	}
	return filepath.Join(workDir, path)
}
