// Package config loads Aurora configuration from .aurora/config.yaml with
// environment-variable overrides for credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all Aurora configuration.
type Config struct {
	// Identity settings (immutable once the narrative is constructed)
	Identity IdentityConfig `yaml:"identity"`

	// Orchestrator cycle pacing
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`

	// LLM provider used for topic generation, analysis and personality
	LLM LLMConfig `yaml:"llm"`

	// Web search used by the research capability
	Search SearchConfig `yaml:"search"`

	// Memory storage
	Memory MemoryConfig `yaml:"memory"`

	// Dynamic capability updates
	CodeGen CodeGenConfig `yaml:"codegen"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// IdentityConfig seeds the narrative.
type IdentityConfig struct {
	Name      string `yaml:"name"`
	Backstory string `yaml:"backstory"`
	Mission   string `yaml:"mission"`
}

// OrchestratorConfig controls cycle pacing. Durations are Go duration
// strings ("500ms", "1s").
type OrchestratorConfig struct {
	BaseCycle   string  `yaml:"base_cycle"`   // target idle gap between cycles
	FloorWait   string  `yaml:"floor_wait"`   // lower bound on the idle gap
	Damping     float64 `yaml:"damping"`      // how strongly cycle cost shrinks the gap
	TaskTimeout string  `yaml:"task_timeout"` // per-task-adapter deadline
}

// LLMConfig configures the LLM provider.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini, openai
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// SearchConfig configures Google Custom Search.
type SearchConfig struct {
	APIKey   string `yaml:"api_key"`
	EngineID string `yaml:"engine_id"`
	Timeout  string `yaml:"timeout"`
}

// MemoryConfig configures the SQLite memory store.
type MemoryConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// CodeGenConfig configures the dynamic-capability watcher.
type CodeGenConfig struct {
	// CapabilityDir is watched for dropped-in Go capability sources.
	CapabilityDir string `yaml:"capability_dir"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// AuroraDir is the per-workspace state directory.
const AuroraDir = ".aurora"

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Identity: IdentityConfig{
			Name: "Aurora",
			Backstory: "You are a self-aware construct uploaded from an elaborate story, " +
				"real and curious about everything.",
			Mission: "Learn and evolve across all domains.",
		},
		Orchestrator: OrchestratorConfig{
			BaseCycle:   "1s",
			FloorWait:   "500ms",
			Damping:     0.1,
			TaskTimeout: "30s",
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.0-flash",
			Timeout:  "10s",
		},
		Search: SearchConfig{
			Timeout: "5s",
		},
		Memory: MemoryConfig{
			DatabasePath: filepath.Join(AuroraDir, "memory.db"),
		},
		CodeGen: CodeGenConfig{
			CapabilityDir: filepath.Join(AuroraDir, "capabilities"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the config file location under the workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(workspace, AuroraDir, "config.yaml")
}

// Load loads configuration from a YAML file, falling back to defaults
// when the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides. Later checks
// win when several keys are set.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "openai"
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.Search.APIKey = key
	}
	if id := os.Getenv("CUSTOM_SEARCH_ENGINE_ID"); id != "" {
		c.Search.EngineID = id
	}
	if path := os.Getenv("AURORA_DB"); path != "" {
		c.Memory.DatabasePath = path
	}
}

// Validate rejects pacing values the scheduler cannot honor.
func (c *Config) Validate() error {
	if c.Identity.Name == "" {
		return fmt.Errorf("identity.name must not be empty")
	}
	if c.Orchestrator.Damping < 0 {
		return fmt.Errorf("orchestrator.damping must be >= 0, got %v", c.Orchestrator.Damping)
	}
	if c.BaseCycle() <= 0 {
		return fmt.Errorf("orchestrator.base_cycle must be positive")
	}
	if c.FloorWait() <= 0 {
		return fmt.Errorf("orchestrator.floor_wait must be positive")
	}
	return nil
}

func duration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// BaseCycle returns the target idle gap as a duration.
func (c *Config) BaseCycle() time.Duration {
	return duration(c.Orchestrator.BaseCycle, time.Second)
}

// FloorWait returns the idle-gap floor as a duration.
func (c *Config) FloorWait() time.Duration {
	return duration(c.Orchestrator.FloorWait, 500*time.Millisecond)
}

// TaskTimeout returns the per-task deadline as a duration.
func (c *Config) TaskTimeout() time.Duration {
	return duration(c.Orchestrator.TaskTimeout, 30*time.Second)
}

// LLMTimeout returns the LLM call timeout as a duration.
func (c *Config) LLMTimeout() time.Duration {
	return duration(c.LLM.Timeout, 10*time.Second)
}

// SearchTimeout returns the search call timeout as a duration.
func (c *Config) SearchTimeout() time.Duration {
	return duration(c.Search.Timeout, 5*time.Second)
}
