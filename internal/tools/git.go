package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/akepo225/offline-coding-agent/internal/parser"
)

// GitStatus reports the porcelain status of the working directory's
// git repository.
type GitStatus struct {
	WorkDir string
}

func (t *GitStatus) Name() string { return "git_status" }

func (t *GitStatus) Description() string { return "Show changed files in the git working tree." }

func (t *GitStatus) Usage() string { return "[TOOL: git_status()]" }

func (t *GitStatus) Execute(ctx context.Context, args parser.Args) Result {
	cmd := exec.CommandContext(ctx, "git", "status", "--porcelain")
	cmd.Dir = t.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Fail("git_status: not a git repository: %s", strings.TrimSpace(stderr.String()))
	}

	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	var changed []string
	for _, line := range lines {
		if len(line) > 3 {
			changed = append(changed, fmt.Sprintf("  %s %s", line[:2], line[3:]))
		}
	}

	if len(changed) == 0 {
		return Ok("Working tree clean: no changed files")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Git status: %d changed files\n", len(changed))
	sb.WriteString(strings.Join(changed, "\n"))
	return Ok(sb.String())
}
