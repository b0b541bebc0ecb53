// Package config loads client configuration from a JSON file in the user
// config directory, a local .env file, and environment variables. Env
// values win over file values; API keys come only from the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	ai "github.com/spetersoncode/chatter"
)

// AgentConfig controls the tool-calling agent.
type AgentConfig struct {
	// Enabled turns guarded tool access on at startup.
	Enabled bool `json:"enabled"`
	// AllowedPaths are directory roots the tools may touch.
	AllowedPaths []string `json:"allowed_paths,omitempty"`
	// ForbiddenPaths are denied even inside an allowed root.
	ForbiddenPaths []string `json:"forbidden_paths,omitempty"`
	// AllowedExtensions restricts file tools to the listed extensions.
	// Empty means all extensions.
	AllowedExtensions []string `json:"allowed_extensions,omitempty"`
	// MaxFileSize caps write/update sizes in bytes. Zero means the
	// built-in default.
	MaxFileSize int64 `json:"max_file_size,omitempty"`
	// MaxToolIterations bounds tool rounds per turn. Zero means the
	// built-in default.
	MaxToolIterations int `json:"max_tool_iterations,omitempty"`
	// DryRun starts the session with file mutations simulated. It can
	// be toggled at runtime with /agent dry-run.
	DryRun bool `json:"dry_run,omitempty"`
}

// OllamaConfig configures the local Ollama provider.
type OllamaConfig struct {
	Endpoint string `json:"endpoint,omitempty"`
}

// Config is the persisted client configuration.
type Config struct {
	Provider          string       `json:"provider"`
	DefaultModel      string       `json:"default_model,omitempty"`
	SystemInstruction string       `json:"default_system_instruction,omitempty"`
	AutoSave          bool         `json:"auto_save"`
	SessionsDir       string       `json:"sessions_dir,omitempty"`
	LogLevel          string       `json:"log_level,omitempty"`
	Ollama            OllamaConfig `json:"ollama,omitzero"`
	Agent             AgentConfig  `json:"agent,omitzero"`

	// API keys are sourced from the environment, never persisted.
	GeminiAPIKey    string `json:"-"`
	AnthropicAPIKey string `json:"-"`
	OpenAIAPIKey    string `json:"-"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Provider: string(ai.ProviderGoogle),
		AutoSave: false,
	}
}

// Dir returns the chatter config directory, creating nothing.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: locate user config dir: %w", err)
	}
	return filepath.Join(base, "chatter"), nil
}

// Path returns the config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config file (if present), a local .env file (if present),
// and environment overrides. A missing config file is not an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: malformed %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// First run, defaults apply.
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	// Best effort; a missing .env is the normal case.
	_ = godotenv.Load()

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.GeminiAPIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
	c.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	c.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		c.Ollama.Endpoint = v
	}
	if v := os.Getenv("CHATTER_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("CHATTER_MODEL"); v != "" {
		c.DefaultModel = v
	}
	if v := os.Getenv("CHATTER_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// APIKey returns the key for the given provider, or empty for providers
// that need none.
func (c *Config) APIKey(provider ai.Provider) string {
	switch provider {
	case ai.ProviderGoogle:
		return c.GeminiAPIKey
	case ai.ProviderAnthropic:
		return c.AnthropicAPIKey
	case ai.ProviderOpenAI:
		return c.OpenAIAPIKey
	default:
		return ""
	}
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
