package agent

import (
	"fmt"
	"strings"

	"github.com/akepo225/offline-coding-agent/internal/session"
	"github.com/akepo225/offline-coding-agent/internal/tools"
)

// buildSystemPrompt assembles the instructions the model sees: its role,
// the tool catalog with wire-format examples, and the user-attached file
// context. The examples teach the exact [TOOL: ...] syntax the parser
// consumes, so they must stay in sync with the parser grammar.
func buildSystemPrompt(registry *tools.Registry, conv *session.Conversation) string {
	var sb strings.Builder

	sb.WriteString("You are a helpful AI coding assistant that can execute tools on the local machine.\n\n")

	sb.WriteString("Available tools:\n")
	for _, tool := range registry.Catalog() {
		fmt.Fprintf(&sb, "- %s: %s\n", tool.Name(), tool.Description())
	}

	sb.WriteString("\nTo execute a tool, emit a call in exactly this format: [TOOL: tool_name(args)]\n")
	sb.WriteString("Examples:\n")
	for _, tool := range registry.Catalog() {
		fmt.Fprintf(&sb, "- %s\n", tool.Usage())
	}
	sb.WriteString("\nString arguments use single quotes; multi-line content uses triple quotes ('''...''').\n")

	if attached := conv.AttachedFiles(); len(attached) > 0 {
		sb.WriteString("\nFiles provided as context:\n")
		for _, path := range attached {
			content, _ := conv.AttachedContent(path)
			fmt.Fprintf(&sb, "\n--- File: %s ---\n%s\n--- End of File ---\n", path, content)
		}
	}

	sb.WriteString(`
Guidelines:
1. When the user asks to read, write or execute files, use the tools immediately.
2. Do not ask for permission before calling a tool; the system handles confirmation.
3. Write complete file contents in a single write_file call, never a stub to fill in later.
4. After tool results are provided, use them; do not re-request content you already received.
5. When the task is complete, reply with the final answer and no tool calls.`)

	return sb.String()
}
