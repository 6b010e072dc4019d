// Package config loads VoxMate configuration from voxmate.yaml with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all VoxMate configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Language defaults (overridden by the preference store once seeded)
	Language LanguageConfig `yaml:"language"`

	// Model configuration (Gemini on-device/API capabilities)
	Model ModelConfig `yaml:"model"`

	// Browser configuration (Chrome DevTools connection)
	Browser BrowserConfig `yaml:"browser"`

	// Reading engine settings
	Reading ReadingConfig `yaml:"reading"`

	// Preference store
	Store StoreConfig `yaml:"store"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LanguageConfig holds language defaults.
type LanguageConfig struct {
	// Default user language (ISO-639-1). Empty means "follow system locale".
	Default string `yaml:"default"`
}

// ModelConfig configures the AI capabilities.
type ModelConfig struct {
	APIKey string `yaml:"api_key"`
	// Model used for command classification and page Q&A.
	Name string `yaml:"name"`
	// Model used for summarization.
	SummarizerName string `yaml:"summarizer_name"`
	// Availability polling bounds.
	ReadyTimeout string `yaml:"ready_timeout"`
	PollInterval string `yaml:"poll_interval"`
}

// BrowserConfig configures the Chrome connection.
type BrowserConfig struct {
	// DevTools websocket URL of an already-running Chrome. Empty launches one.
	DebuggerURL         string `yaml:"debugger_url"`
	Headless            bool   `yaml:"headless"`
	NavigationTimeoutMs int    `yaml:"navigation_timeout_ms"`
}

// ReadingConfig configures the reading engine.
type ReadingConfig struct {
	// Minimum segment length; shorter page text is skipped as UI chrome.
	MinSegmentLength int `yaml:"min_segment_length"`
	// Character caps applied before sending page text to a capability.
	TranslateInputLimit int `yaml:"translate_input_limit"`
	AskInputLimit       int `yaml:"ask_input_limit"`
}

// StoreConfig configures the preference store.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures the category file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "VoxMate",
		Version: "1.0.0",

		Language: LanguageConfig{
			Default: "",
		},

		Model: ModelConfig{
			Name:           "gemini-2.5-flash",
			SummarizerName: "gemini-2.5-flash",
			ReadyTimeout:   "10s",
			PollInterval:   "500ms",
		},

		Browser: BrowserConfig{
			Headless:            false,
			NavigationTimeoutMs: 30000,
		},

		Reading: ReadingConfig{
			MinSegmentLength:    5,
			TranslateInputLimit: 20000,
			AskInputLimit:       8000,
		},

		Store: StoreConfig{
			DatabasePath: ".voxmate/prefs.db",
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
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
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Model.APIKey = key
	}
	if lang := os.Getenv("VOXMATE_LANGUAGE"); lang != "" {
		c.Language.Default = lang
	}
	if url := os.Getenv("VOXMATE_DEBUGGER_URL"); url != "" {
		c.Browser.DebuggerURL = url
	}
	if path := os.Getenv("VOXMATE_DB"); path != "" {
		c.Store.DatabasePath = path
	}
}

// ReadyTimeout returns the availability-polling deadline as a duration.
func (c *Config) ReadyTimeout() time.Duration {
	d, err := time.ParseDuration(c.Model.ReadyTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// PollInterval returns the availability-polling interval as a duration.
func (c *Config) PollInterval() time.Duration {
	d, err := time.ParseDuration(c.Model.PollInterval)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// NavigationTimeout returns the browser navigation timeout.
func (c *Config) NavigationTimeout() time.Duration {
	return c.Browser.NavigationTimeout()
}

// NavigationTimeout returns the navigation timeout.
func (b BrowserConfig) NavigationTimeout() time.Duration {
	if b.NavigationTimeoutMs == 0 {
		return 30 * time.Second
	}
	return time.Duration(b.NavigationTimeoutMs) * time.Millisecond
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Model.APIKey == "" {
		return fmt.Errorf("model API key not configured (set GEMINI_API_KEY or model.api_key)")
	}
	if c.Reading.MinSegmentLength < 0 {
		return fmt.Errorf("reading.min_segment_length must be >= 0")
	}
	return nil
}
