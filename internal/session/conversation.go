// Package session holds the per-session conversation state: the ordered
// message history the model sees and the file contents the user attached
// as explicit context. Nothing here survives process exit.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/akepo225/offline-coding-agent/internal/llm"
)

// Conversation accumulates the dialogue for one session.
//
// History is bounded: once the message count exceeds maxHistory the oldest
// messages are dropped, keeping the most recent ones contiguously so the
// model always sees an unbroken tail of the dialogue.
type Conversation struct {
	id         string
	messages   []llm.Message
	maxHistory int
	attached   map[string]string
	attachOrder []string
	createdAt  time.Time
	updatedAt  time.Time
}

// NewConversation creates an empty conversation.
// maxHistory bounds the retained message count (default 20).
func NewConversation(maxHistory int) *Conversation {
	if maxHistory <= 0 {
		maxHistory = 20
	}
	return &Conversation{
		id:         uuid.NewString(),
		messages:   make([]llm.Message, 0),
		maxHistory: maxHistory,
		attached:   make(map[string]string),
		createdAt:  time.Now(),
		updatedAt:  time.Now(),
	}
}

// ID returns the session identifier.
func (c *Conversation) ID() string {
	return c.id
}

// Append adds a message to the history, trimming the oldest entries when
// the bound is exceeded.
func (c *Conversation) Append(role, content string) {
	c.messages = append(c.messages, llm.Message{Role: role, Content: content})
	if len(c.messages) > c.maxHistory {
		excess := len(c.messages) - c.maxHistory
		c.messages = c.messages[excess:]
	}
	c.updatedAt = time.Now()
}

// History returns a copy of the retained messages in insertion order.
func (c *Conversation) History() []llm.Message {
	history := make([]llm.Message, len(c.messages))
	copy(history, c.messages)
	return history
}

// Len returns the number of retained messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// AttachFile records a file's content for embedding into future prompts.
// Re-attaching a path replaces its content but keeps its position.
func (c *Conversation) AttachFile(path, content string) {
	if _, exists := c.attached[path]; !exists {
		c.attachOrder = append(c.attachOrder, path)
	}
	c.attached[path] = content
	c.updatedAt = time.Now()
}

// DetachFile removes an attached file. Returns whether it was attached.
func (c *Conversation) DetachFile(path string) bool {
	if _, exists := c.attached[path]; !exists {
		return false
	}
	delete(c.attached, path)
	for i, p := range c.attachOrder {
		if p == path {
			c.attachOrder = append(c.attachOrder[:i], c.attachOrder[i+1:]...)
			break
		}
	}
	c.updatedAt = time.Now()
	return true
}

// AttachedFiles returns the attached paths in attachment order.
func (c *Conversation) AttachedFiles() []string {
	paths := make([]string, len(c.attachOrder))
	copy(paths, c.attachOrder)
	return paths
}

// AttachedContent returns the stored content for a path.
func (c *Conversation) AttachedContent(path string) (string, bool) {
	content, ok := c.attached[path]
	return content, ok
}

// Reset clears the history and the attached files. The session keeps its
// identifier.
func (c *Conversation) Reset() {
	c.messages = make([]llm.Message, 0)
	c.attached = make(map[string]string)
	c.attachOrder = nil
	c.updatedAt = time.Now()
}
