package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/akepo225/offline-coding-agent/internal/llm"
)

// Config holds all application configuration
// Assembled from environment variables with sensible defaults, optionally
// overlaid by a YAML file
//
// Environment Variables:
// LLM Configuration:
// - LLM_API_URL: Chat completion endpoint of the local server (default: http://127.0.0.1:8080/v1)
// - LLM_API_KEY: Bearer token, only needed behind a proxy (optional)
// - LLM_MODEL: Model name to use (default: qwen2.5-coder-7b-instruct)
// - LLM_MAX_TOKENS: Maximum tokens for responses (default: 2048)
// - LLM_TEMPERATURE: Temperature for responses (default: 0.3)
// - LLM_TOP_P: Nucleus sampling threshold (default: 0.9)
// - LLM_REPEAT_PENALTY: Repetition penalty (default: 1.1)
// - LLM_TIMEOUT: Request timeout in seconds (default: 120)
//
// Agent Configuration:
// - AGENT_MAX_ITERATIONS: Max generate/execute cycles per request (default: 2)
// - AGENT_MAX_HISTORY: Max retained conversation messages (default: 20)
// - AGENT_AUTO_CONFIRM: Skip interactive tool confirmation (default: false)
// - AGENT_HISTORY_DB: Path of the tool-execution audit database (empty disables)
//
// Tools Configuration:
// - TOOLS_WORK_DIR: Working directory for tools (default: current directory)
// - TOOLS_INTERPRETER: Interpreter used by execute_code (default: python3)
// - TOOLS_COMMAND_TIMEOUT: Per-command timeout in seconds (default: 30)
//
// Logging:
// - LOG_LEVEL: debug/info/warn/error (default: info)
// - LOG_FILE: Log file path (empty logs to stdout)
type Config struct {
	LLM      llm.Config     `json:"llm" yaml:"llm"`
	Agent    AgentConfig    `json:"agent" yaml:"agent"`
	Tools    ToolsConfig    `json:"tools" yaml:"tools"`
	Feedback FeedbackConfig `json:"feedback" yaml:"feedback"`
	Safety   SafetyConfig   `json:"safety" yaml:"safety"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// AgentConfig holds the configuration for the agent loop
type AgentConfig struct {
	MaxIterations int    `json:"max_iterations" yaml:"max_iterations"`
	MaxHistory    int    `json:"max_history" yaml:"max_history"`
	AutoConfirm   bool   `json:"auto_confirm" yaml:"auto_confirm"`
	HistoryDB     string `json:"history_db" yaml:"history_db"`
}

// ToolsConfig holds the configuration for the built-in tools
type ToolsConfig struct {
	WorkDir        string `json:"work_dir" yaml:"work_dir"`
	Interpreter    string `json:"interpreter" yaml:"interpreter"`
	CommandTimeout int    `json:"command_timeout" yaml:"command_timeout"` // seconds
}

// FeedbackConfig tunes the feedback formatter policy
type FeedbackConfig struct {
	MaxContentBytes int `json:"max_content_bytes" yaml:"max_content_bytes"`
	MinWriteBytes   int `json:"min_write_bytes" yaml:"min_write_bytes"`
}

// SafetyConfig extends the built-in command denylist
type SafetyConfig struct {
	ExtraPatterns []string `json:"extra_patterns" yaml:"extra_patterns"`
}

// LogConfig holds the logging configuration
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	File  string `json:"file" yaml:"file"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment
// variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		LLM: llm.Config{
			APIURL:        getEnvString("LLM_API_URL", "http://127.0.0.1:8080/v1"),
			APIKey:        getEnvString("LLM_API_KEY", ""),
			Model:         getEnvString("LLM_MODEL", "qwen2.5-coder-7b-instruct"),
			MaxTokens:     getEnvInt("LLM_MAX_TOKENS", 2048),
			Temperature:   getEnvFloat("LLM_TEMPERATURE", 0.3),
			TopP:          getEnvFloat("LLM_TOP_P", 0.9),
			RepeatPenalty: getEnvFloat("LLM_REPEAT_PENALTY", 1.1),
			Stop:          []string{"<|im_end|>"},
			Timeout:       getEnvInt("LLM_TIMEOUT", 120),
		},
		Agent: AgentConfig{
			MaxIterations: getEnvInt("AGENT_MAX_ITERATIONS", 2),
			MaxHistory:    getEnvInt("AGENT_MAX_HISTORY", 20),
			AutoConfirm:   getEnvBool("AGENT_AUTO_CONFIRM", false),
			HistoryDB:     getEnvString("AGENT_HISTORY_DB", ""),
		},
		Tools: ToolsConfig{
			WorkDir:        getEnvString("TOOLS_WORK_DIR", "."),
			Interpreter:    getEnvString("TOOLS_INTERPRETER", "python3"),
			CommandTimeout: getEnvInt("TOOLS_COMMAND_TIMEOUT", 30),
		},
		Feedback: FeedbackConfig{
			MaxContentBytes: getEnvInt("FEEDBACK_MAX_CONTENT_BYTES", 8000),
			MinWriteBytes:   getEnvInt("FEEDBACK_MIN_WRITE_BYTES", 40),
		},
		Log: LogConfig{
			Level: getEnvString("LOG_LEVEL", "info"),
			File:  getEnvString("LOG_FILE", ""),
		},
	}

	for _, opt := range opts {
		opt(config)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Load builds the configuration from the environment, then overlays the
// YAML file at path when it is non-empty.
func Load(path string, opts ...Option) (*Config, error) {
	config, err := NewFromEnv(opts...)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if c.Agent.MaxIterations < 1 {
		return fmt.Errorf("agent: max iterations must be at least 1")
	}
	if c.Tools.CommandTimeout < 1 {
		return fmt.Errorf("tools: command timeout must be at least 1 second")
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float value from environment variables with default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean value from environment variables with default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultValue
}
