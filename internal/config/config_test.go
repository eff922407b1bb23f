package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "Aurora", cfg.Identity.Name)
	assert.Equal(t, time.Second, cfg.BaseCycle())
	assert.Equal(t, 500*time.Millisecond, cfg.FloorWait())
	assert.Equal(t, 0.1, cfg.Orchestrator.Damping)
	assert.Equal(t, 30*time.Second, cfg.TaskTimeout())
	assert.Equal(t, 10*time.Second, cfg.LLMTimeout())
	assert.Equal(t, 5*time.Second, cfg.SearchTimeout())
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Aurora", cfg.Identity.Name)
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
identity:
  name: Borealis
  mission: Map the night sky.
orchestrator:
  base_cycle: 2s
  floor_wait: 250ms
  damping: 0.2
llm:
  provider: openai
  model: gpt-4o-mini
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Borealis", cfg.Identity.Name)
	assert.Equal(t, "Map the night sky.", cfg.Identity.Mission)
	assert.Equal(t, 2*time.Second, cfg.BaseCycle())
	assert.Equal(t, 250*time.Millisecond, cfg.FloorWait())
	assert.Equal(t, 0.2, cfg.Orchestrator.Damping)
	// Untouched sections keep defaults.
	assert.Equal(t, filepath.Join(AuroraDir, "memory.db"), cfg.Memory.DatabasePath)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("identity: [broken"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("GEMINI_API_KEY wins over OPENAI_API_KEY", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "oa-key")
		t.Setenv("GEMINI_API_KEY", "gm-key")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "gm-key", cfg.LLM.APIKey)
		assert.Equal(t, "gemini", cfg.LLM.Provider)
	})

	t.Run("OPENAI_API_KEY alone selects openai", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "oa-key")
		t.Setenv("GEMINI_API_KEY", "")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "oa-key", cfg.LLM.APIKey)
		assert.Equal(t, "openai", cfg.LLM.Provider)
	})

	t.Run("search credentials", func(t *testing.T) {
		t.Setenv("GOOGLE_API_KEY", "g-key")
		t.Setenv("CUSTOM_SEARCH_ENGINE_ID", "cse-id")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "g-key", cfg.Search.APIKey)
		assert.Equal(t, "cse-id", cfg.Search.EngineID)
	})

	t.Run("AURORA_DB overrides database path", func(t *testing.T) {
		t.Setenv("AURORA_DB", "/tmp/other.db")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "/tmp/other.db", cfg.Memory.DatabasePath)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty identity name", func(c *Config) { c.Identity.Name = "" }},
		{"negative damping", func(c *Config) { c.Orchestrator.Damping = -1 }},
		{"zero base cycle", func(c *Config) { c.Orchestrator.BaseCycle = "0s" }},
		{"zero floor", func(c *Config) { c.Orchestrator.FloorWait = "0s" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), AuroraDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Identity.Name = "Borealis"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Borealis", loaded.Identity.Name)
}

func TestDurationFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Orchestrator.TaskTimeout = "not-a-duration"
	assert.Equal(t, 30*time.Second, cfg.TaskTimeout())
}
