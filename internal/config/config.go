package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all chatterm configuration.
type Config struct {
	// Bot identity and conversation behavior
	Bot BotConfig `yaml:"bot"`

	// LLM provider configuration
	LLM LLMConfig `yaml:"llm"`

	// Conversation storage
	Storage StorageConfig `yaml:"storage"`

	// Training corpus
	Corpus CorpusConfig `yaml:"corpus"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// BotConfig configures the bot's identity and turn behavior.
type BotConfig struct {
	Name            string `yaml:"name"`
	DefaultResponse string `yaml:"default_response"`
	ReadOnly        bool   `yaml:"read_only"`
	HistoryTurns    int    `yaml:"history_turns"`
	ExemplarPairs   int    `yaml:"exemplar_pairs"`
}

// LLMConfig configures the response provider.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini, openai
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// StorageConfig configures the SQLite conversation store.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// CorpusConfig configures the training corpus.
type CorpusConfig struct {
	Name string `yaml:"name"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Bot: BotConfig{
			Name:            "TerminalBot",
			DefaultResponse: "I'm not sure I understand. Can you rephrase?",
			HistoryTurns:    8,
			ExemplarPairs:   12,
		},

		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash",
			Timeout:  "120s",
		},

		Storage: StorageConfig{
			DatabasePath: "chatterm.sqlite3",
		},

		Corpus: CorpusConfig{
			Name: "english",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
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

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// Provider API keys (last match wins, gemini is the preferred default)
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "openai"
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
	}

	if model := os.Getenv("CHATTERM_MODEL"); model != "" {
		c.LLM.Model = model
	}

	// Database path from environment
	if path := os.Getenv("CHATTERM_DB"); path != "" {
		c.Storage.DatabasePath = path
	}
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// ValidProviders lists all supported LLM providers.
var ValidProviders = []string{"gemini", "openai"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key not configured (set GEMINI_API_KEY or OPENAI_API_KEY)")
	}

	validProvider := false
	for _, p := range ValidProviders {
		if c.LLM.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}

	if c.Bot.Name == "" {
		return fmt.Errorf("bot name must not be empty")
	}

	return nil
}
