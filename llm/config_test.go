package llm_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tessellate-ai/agentic/llm"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "llm.yaml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))
	return file
}

func TestLoadConfig(t *testing.T) {
	file := writeConfig(t, `
providers:
  - name: openai
    token: sk-test
    default_model: gpt-4o-mini
  - name: local
    default_model: qwen2.5
    base_url: http://localhost:11434/v1
`)

	cfg, err := llm.LoadConfig(file)
	require.NoError(t, err)
	require.Len(t, cfg.Providers, 2)

	p, err := cfg.Provider("")
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name)

	p, err = cfg.Provider("local")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434/v1", p.BaseURL)

	_, err = cfg.Provider("missing")
	require.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := llm.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)

	// provider without a model
	file := writeConfig(t, `
providers:
  - name: openai
`)
	_, err = llm.LoadConfig(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")

	// no providers at all
	file = writeConfig(t, `providers: []`)
	_, err = llm.LoadConfig(file)
	require.Error(t, err)
}
