// Package feedback turns one iteration's tool results into the message the
// model sees next. The policy matters more than the formatting: content a
// later step depends on must be embedded in full, while results the model
// already saw, or oversized payloads, are summarized so context growth stays
// bounded.
package feedback

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/akepo225/offline-coding-agent/internal/parser"
	"github.com/akepo225/offline-coding-agent/internal/tools"
)

// truncationMarker format: the model must never mistake truncated content
// for complete content.
const truncationMarker = "\n[... truncated: showing %d of %d bytes]"

// Execution pairs a parsed call with its result for formatting.
type Execution struct {
	Call   parser.ToolCall
	Result tools.Result
}

// Config tunes the formatting policy.
type Config struct {
	// MaxContentBytes caps how much of one payload gets embedded before
	// the truncation marker is applied.
	MaxContentBytes int

	// MinWriteBytes is the placeholder heuristic: a write_file smaller
	// than this draws a corrective instruction. It is a guess at model
	// intent, tunable and deliberately not a hard gate.
	MinWriteBytes int
}

// DefaultConfig returns the default formatting policy.
func DefaultConfig() Config {
	return Config{
		MaxContentBytes: 8000,
		MinWriteBytes:   40,
	}
}

// Formatter renders feedback messages. It remembers which file contents it
// already embedded so a re-read within the session is marked as
// already-provided instead of duplicated.
type Formatter struct {
	cfg  Config
	seen map[string]bool
}

// NewFormatter creates a formatter with the given policy.
func NewFormatter(cfg Config) *Formatter {
	if cfg.MaxContentBytes <= 0 {
		cfg.MaxContentBytes = DefaultConfig().MaxContentBytes
	}
	if cfg.MinWriteBytes <= 0 {
		cfg.MinWriteBytes = DefaultConfig().MinWriteBytes
	}
	return &Formatter{cfg: cfg, seen: make(map[string]bool)}
}

// Reset forgets which contents were already embedded. Called when the
// surrounding conversation is cleared.
func (f *Formatter) Reset() {
	f.seen = make(map[string]bool)
}

// Format produces a single message from an iteration's executions and
// parse errors, ready for appending to the conversation.
func (f *Formatter) Format(execs []Execution, parseErrs []*parser.ParseError) string {
	var sb strings.Builder
	sb.WriteString("Tool results:\n")

	for _, exec := range execs {
		f.writeExecution(&sb, exec)
	}

	for _, perr := range parseErrs {
		fmt.Fprintf(&sb, "- A tool call could not be parsed (%s). Re-emit it using the documented [TOOL: ...] syntax.\n", perr.Reason)
	}

	sb.WriteString("\nUse these results to continue the task. Reply with further [TOOL: ...] calls if more steps are needed, or with the final answer if the task is complete.")
	return sb.String()
}

func (f *Formatter) writeExecution(sb *strings.Builder, exec Execution) {
	name := exec.Call.Name
	result := exec.Result

	if !result.Success {
		fmt.Fprintf(sb, "- %s FAILED: %s\n", name, result.Err)
		return
	}

	switch name {
	case "read_file":
		path, _ := exec.Call.Args.Get("file_path")
		if f.seen[path] {
			fmt.Fprintf(sb, "- %s: content of %s was already provided earlier in this session. Do not request it again; use the copy above.\n", name, path)
			return
		}
		f.seen[path] = true
		// Full content, not a preview: a short prefix would make the
		// data useless for the next step.
		fmt.Fprintf(sb, "- %s: content of %s follows:\n--- %s ---\n%s\n--- end of %s ---\n",
			name, path, path, f.clip(result.Output), path)

	case "write_file":
		path, _ := exec.Call.Args.Get("file_path")
		fmt.Fprintf(sb, "- %s: wrote %s to %s\n", name, humanize.Bytes(uint64(result.Bytes)), path)
		if result.Bytes < f.cfg.MinWriteBytes {
			fmt.Fprintf(sb, "  WARNING: only %d bytes were written to %s, which looks like a placeholder or stub. Write the complete file content now, in a single write_file call.\n",
				result.Bytes, path)
		}

	case "execute_code", "run_command":
		fmt.Fprintf(sb, "- %s: exit status %d\n", name, result.ExitCode)
		if out := strings.TrimSpace(result.Stdout); out != "" {
			fmt.Fprintf(sb, "  stdout:\n%s\n", f.clip(out))
		}
		if errOut := strings.TrimSpace(result.Stderr); errOut != "" {
			fmt.Fprintf(sb, "  stderr:\n%s\n", f.clip(errOut))
		}

	default:
		// Small-footprint results: a one-line summary is enough.
		fmt.Fprintf(sb, "- %s: %s\n", name, f.clip(result.Output))
	}
}

// clip applies the size ceiling with an explicit truncation marker.
func (f *Formatter) clip(content string) string {
	if len(content) <= f.cfg.MaxContentBytes {
		return content
	}
	return content[:f.cfg.MaxContentBytes] + fmt.Sprintf(truncationMarker, f.cfg.MaxContentBytes, len(content))
}
