package llm

import "fmt"

// Message represents a role-tagged chat message
//
// Role: "system", "user", or "assistant"
// Content: Text content of the message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a chat completion request
// Compatible with OpenAI-style local servers (llama.cpp, Ollama)
//
// Model: The model to use for completion
// Messages: Array of conversation messages
// MaxTokens: Maximum number of tokens to generate
// Temperature: Sampling temperature (0-2)
// TopP: Nucleus sampling threshold
// RepeatPenalty: Penalty applied to repeated tokens
// Stop: Sequences that end generation
type ChatRequest struct {
	Model         string    `json:"model"`
	Messages      []Message `json:"messages"`
	MaxTokens     int       `json:"max_tokens,omitempty"`
	Temperature   float64   `json:"temperature,omitempty"`
	TopP          float64   `json:"top_p,omitempty"`
	RepeatPenalty float64   `json:"repeat_penalty,omitempty"`
	Stop          []string  `json:"stop,omitempty"`
	Stream        bool      `json:"stream,omitempty"`
}

// ChatResponse represents a chat completion response
type ChatResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
	Error   *APIError `json:"error,omitempty"`
}

// Choice represents a completion choice
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage represents token usage statistics
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// APIError represents an error payload returned by the backend
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error: %s (type: %s, code: %s)", e.Message, e.Type, e.Code)
}

// GenerationError marks a failure of the model backend itself. It is fatal
// to the session: the loop surfaces it to the caller without retrying.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Options represents per-request generation parameters. Zero values fall
// back to the client configuration.
type Options struct {
	MaxTokens     int
	Temperature   float64
	TopP          float64
	RepeatPenalty float64
	Stop          []string
}

// NewOptions creates empty per-request options.
func NewOptions() *Options {
	return &Options{Temperature: -1, TopP: -1, RepeatPenalty: -1}
}

// WithMaxTokens sets the max tokens
func (o *Options) WithMaxTokens(maxTokens int) *Options {
	o.MaxTokens = maxTokens
	return o
}

// WithTemperature sets the temperature
func (o *Options) WithTemperature(temperature float64) *Options {
	o.Temperature = temperature
	return o
}

// WithTopP sets the nucleus sampling threshold
func (o *Options) WithTopP(topP float64) *Options {
	o.TopP = topP
	return o
}

// WithStop sets the stop sequences
func (o *Options) WithStop(stop ...string) *Options {
	o.Stop = stop
	return o
}
