// Package llm talks to a locally hosted OpenAI-compatible chat completion
// server (llama.cpp server, Ollama and similar). The rest of the system
// treats it as a black-box "generate text given messages" capability.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config holds the configuration for the LLM client.
//
// A local server needs no API key; APIKey is sent as a bearer token only
// when set, for deployments that front the server with a proxy.
type Config struct {
	APIURL        string  `json:"api_url" yaml:"api_url"`
	APIKey        string  `json:"api_key" yaml:"api_key"`
	Model         string  `json:"model" yaml:"model"`
	MaxTokens     int     `json:"max_tokens" yaml:"max_tokens"`
	Temperature   float64 `json:"temperature" yaml:"temperature"`
	TopP          float64 `json:"top_p" yaml:"top_p"`
	RepeatPenalty float64 `json:"repeat_penalty" yaml:"repeat_penalty"`
	Stop          []string `json:"stop" yaml:"stop"`
	Timeout       int     `json:"timeout" yaml:"timeout"` // seconds
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("API URL is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("max tokens must be greater than 0")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if c.Timeout < 1 {
		return fmt.Errorf("timeout must be greater than 0")
	}
	return nil
}

// Client is an HTTP client for the chat completion endpoint.
// Thread-safe for concurrent use.
type Client struct {
	config     *Config
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new LLM client with the given configuration
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Client{
		config:  config,
		baseURL: config.APIURL,
		httpClient: &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Second,
		},
	}, nil
}

// ChatCompletion sends the messages to the backend and returns its reply.
// Any backend failure, transport, HTTP status or payload error comes back
// as a *GenerationError.
func (c *Client) ChatCompletion(ctx context.Context, messages []Message, opts *Options) (*ChatResponse, error) {
	if opts == nil {
		opts = NewOptions()
	}

	request := ChatRequest{
		Model:         c.config.Model,
		Messages:      messages,
		MaxTokens:     c.getMaxTokens(opts),
		Temperature:   c.getTemperature(opts),
		TopP:          c.getTopP(opts),
		RepeatPenalty: c.getRepeatPenalty(opts),
		Stop:          c.getStop(opts),
	}

	response, err := c.makeRequest(ctx, "POST", "/chat/completions", request)
	if err != nil {
		return nil, err
	}
	if len(response.Choices) == 0 {
		return nil, &GenerationError{Op: "chat completion", Err: fmt.Errorf("no choices in response")}
	}
	return response, nil
}

// makeRequest makes a raw HTTP request to the backend
func (c *Client) makeRequest(ctx context.Context, method, path string, payload interface{}) (*ChatResponse, error) {
	url := c.baseURL + path

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, &GenerationError{Op: "marshal request", Err: err}
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, &GenerationError{Op: "create request", Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &GenerationError{Op: "http request", Err: err}
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &GenerationError{Op: "read response", Err: err}
	}

	var chatResponse ChatResponse
	if err := json.Unmarshal(responseBody, &chatResponse); err != nil {
		return nil, &GenerationError{Op: "parse response", Err: fmt.Errorf("%w: %s", err, string(responseBody))}
	}

	if chatResponse.Error != nil && chatResponse.Error.Message != "" {
		return nil, &GenerationError{Op: "chat completion", Err: chatResponse.Error}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GenerationError{
			Op:  "chat completion",
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(responseBody)),
		}
	}

	return &chatResponse, nil
}

func (c *Client) getMaxTokens(opts *Options) int {
	if opts.MaxTokens > 0 {
		return opts.MaxTokens
	}
	return c.config.MaxTokens
}

func (c *Client) getTemperature(opts *Options) float64 {
	if opts.Temperature >= 0 && opts.Temperature <= 2 {
		return opts.Temperature
	}
	return c.config.Temperature
}

func (c *Client) getTopP(opts *Options) float64 {
	if opts.TopP > 0 && opts.TopP <= 1 {
		return opts.TopP
	}
	return c.config.TopP
}

func (c *Client) getRepeatPenalty(opts *Options) float64 {
	if opts.RepeatPenalty > 0 {
		return opts.RepeatPenalty
	}
	return c.config.RepeatPenalty
}

func (c *Client) getStop(opts *Options) []string {
	if len(opts.Stop) > 0 {
		return opts.Stop
	}
	return c.config.Stop
}
