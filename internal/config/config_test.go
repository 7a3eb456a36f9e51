package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnvDefaults(t *testing.T) {
	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8080/v1", cfg.LLM.APIURL)
	assert.Equal(t, "qwen2.5-coder-7b-instruct", cfg.LLM.Model)
	assert.Equal(t, 2048, cfg.LLM.MaxTokens)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 2, cfg.Agent.MaxIterations)
	assert.Equal(t, 20, cfg.Agent.MaxHistory)
	assert.False(t, cfg.Agent.AutoConfirm)
	assert.Equal(t, "python3", cfg.Tools.Interpreter)
	assert.Equal(t, 30, cfg.Tools.CommandTimeout)
	assert.Equal(t, 8000, cfg.Feedback.MaxContentBytes)
	assert.Equal(t, 40, cfg.Feedback.MinWriteBytes)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestNewFromEnvOverrides(t *testing.T) {
	t.Setenv("LLM_MODEL", "codellama-13b")
	t.Setenv("AGENT_MAX_ITERATIONS", "5")
	t.Setenv("AGENT_AUTO_CONFIRM", "true")
	t.Setenv("TOOLS_INTERPRETER", "python3.12")
	t.Setenv("FEEDBACK_MIN_WRITE_BYTES", "100")

	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "codellama-13b", cfg.LLM.Model)
	assert.Equal(t, 5, cfg.Agent.MaxIterations)
	assert.True(t, cfg.Agent.AutoConfirm)
	assert.Equal(t, "python3.12", cfg.Tools.Interpreter)
	assert.Equal(t, 100, cfg.Feedback.MinWriteBytes)
}

func TestNewFromEnvInvalidIntFallsBack(t *testing.T) {
	t.Setenv("LLM_MAX_TOKENS", "not-a-number")

	cfg, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 2048, cfg.LLM.MaxTokens)
}

func TestNewFromEnvOptions(t *testing.T) {
	cfg, err := NewFromEnv(func(c *Config) {
		c.Agent.MaxIterations = 4
	})
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Agent.MaxIterations)
}

func TestLoadYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agent.yaml")
	content := `
llm:
  model: deepseek-coder-6.7b
  temperature: 0.1
agent:
  max_iterations: 3
safety:
  extra_patterns:
    - "curl | sh"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// YAML values win, untouched fields keep their env defaults.
	assert.Equal(t, "deepseek-coder-6.7b", cfg.LLM.Model)
	assert.InDelta(t, 0.1, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 3, cfg.Agent.MaxIterations)
	assert.Equal(t, []string{"curl | sh"}, cfg.Safety.ExtraPatterns)
	assert.Equal(t, "http://127.0.0.1:8080/v1", cfg.LLM.APIURL)
	assert.Equal(t, 30, cfg.Tools.CommandTimeout)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("AGENT_MAX_ITERATIONS", "0")

	_, err := NewFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max iterations")
}
