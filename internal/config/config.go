// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for the ChatAI client.
//
// Configuration comes from ~/.chatai/config.toml with built-in defaults and
// CHATAI_* environment variable overrides applied on top.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete client configuration.
type Config struct {
	Backend BackendConfig `toml:"backend"`
	Chat    ChatConfig    `toml:"chat"`
	UI      UIConfig      `toml:"ui"`
	Logging LoggingConfig `toml:"logging"`
	Archive ArchiveConfig `toml:"archive"`
	Export  ExportConfig  `toml:"export"`
}

// BackendConfig describes the ChatAI backend connection.
type BackendConfig struct {
	// BaseURL is the backend base URL including the /api prefix.
	BaseURL string `toml:"base_url"`
	// TimeoutSecs bounds ordinary requests.
	TimeoutSecs int `toml:"timeout_secs"`
	// SendTimeoutSecs bounds message sends, which block on model generation.
	SendTimeoutSecs int `toml:"send_timeout_secs"`
	// RequestsPerSecond caps outgoing request rate; 0 disables throttling.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// ChatConfig holds chat behavior defaults.
type ChatConfig struct {
	// DefaultModel is preferred when neither chat nor user settings name one.
	DefaultModel string `toml:"default_model"`
	// Temperature is the fallback sampling temperature (0.0-2.0).
	Temperature float64 `toml:"temperature"`
	// MaxTokens is the fallback reply token limit.
	MaxTokens int `toml:"max_tokens"`
	// IncognitoByDefault starts new implicit chats in incognito mode.
	IncognitoByDefault bool `toml:"incognito_by_default"`
}

// UIConfig holds terminal presentation options.
type UIConfig struct {
	// Theme is "dark", "light", or "auto".
	Theme string `toml:"theme"`
	// RenderMarkdown enables glamour rendering of assistant replies.
	RenderMarkdown bool `toml:"render_markdown"`
	// HistoryFile stores REPL input history; empty uses the config dir.
	HistoryFile string `toml:"history_file"`
}

// LoggingConfig controls the rotating debug log.
type LoggingConfig struct {
	// Level is "debug", "info", "warn", or "error".
	Level string `toml:"level"`
	// File is the log path; empty uses the config dir.
	File string `toml:"file"`
	// MaxSizeMB rotates the log when it exceeds this size.
	MaxSizeMB int `toml:"max_size_mb"`
	// MaxBackups is how many rotated files to keep.
	MaxBackups int `toml:"max_backups"`
	// MaxAgeDays prunes rotated files older than this.
	MaxAgeDays int `toml:"max_age_days"`
}

// ArchiveConfig controls the local transcript archive.
type ArchiveConfig struct {
	// Enabled turns on archiving of chat transcripts after each reply.
	Enabled bool `toml:"enabled"`
	// Path is the sqlite database location; empty uses the config dir.
	Path string `toml:"path"`
}

// ExportConfig controls transcript exports.
type ExportConfig struct {
	// Dir is where exported transcripts are written.
	Dir string `toml:"dir"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:         "http://127.0.0.1:5000/api",
			TimeoutSecs:     30,
			SendTimeoutSecs: 300,
		},
		Chat: ChatConfig{
			Temperature: 1.0,
			MaxTokens:   512,
		},
		UI: UIConfig{
			Theme:          "dark",
			RenderMarkdown: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
		Archive: ArchiveConfig{
			Enabled: true,
		},
		Export: ExportConfig{
			Dir: ".",
		},
	}
}

// Timeout returns the ordinary request timeout as a duration.
func (c *BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// SendTimeout returns the send timeout as a duration.
func (c *BackendConfig) SendTimeout() time.Duration {
	return time.Duration(c.SendTimeoutSecs) * time.Second
}

// =============================================================================
// PATHS
// =============================================================================

// Dir returns the client configuration directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".chatai"), nil
}

// Path returns the config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir creates the configuration directory if needed.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the config file, fills defaults, applies environment overrides,
// and validates. A missing file is not an error; defaults apply.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
		fillDefaults(cfg)
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults restores defaults for fields the file left empty.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = defaults.Backend.BaseURL
	}
	if cfg.Backend.TimeoutSecs == 0 {
		cfg.Backend.TimeoutSecs = defaults.Backend.TimeoutSecs
	}
	if cfg.Backend.SendTimeoutSecs == 0 {
		cfg.Backend.SendTimeoutSecs = defaults.Backend.SendTimeoutSecs
	}
	if cfg.Chat.Temperature == 0 {
		cfg.Chat.Temperature = defaults.Chat.Temperature
	}
	if cfg.Chat.MaxTokens == 0 {
		cfg.Chat.MaxTokens = defaults.Chat.MaxTokens
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.Logging.MaxSizeMB == 0 {
		cfg.Logging.MaxSizeMB = defaults.Logging.MaxSizeMB
	}
	if cfg.Logging.MaxBackups == 0 {
		cfg.Logging.MaxBackups = defaults.Logging.MaxBackups
	}
	if cfg.Logging.MaxAgeDays == 0 {
		cfg.Logging.MaxAgeDays = defaults.Logging.MaxAgeDays
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = defaults.Export.Dir
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies CHATAI_* environment variables on top of the
// loaded configuration. Environment always wins over the file.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CHATAI_BASE_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("CHATAI_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Backend.TimeoutSecs = n
		}
	}
	if v := os.Getenv("CHATAI_SEND_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Backend.SendTimeoutSecs = n
		}
	}
	if v := os.Getenv("CHATAI_DEFAULT_MODEL"); v != "" {
		c.Chat.DefaultModel = v
	}
	if v := os.Getenv("CHATAI_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("CHATAI_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CHATAI_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("CHATAI_ARCHIVE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Archive.Enabled = b
		}
	}
	if v := os.Getenv("CHATAI_EXPORT_DIR"); v != "" {
		c.Export.Dir = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url %q is not a valid URL", c.Backend.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.base_url scheme %q must be http or https", u.Scheme)
	}

	if c.Backend.TimeoutSecs <= 0 {
		return fmt.Errorf("backend.timeout_secs must be positive, got %d", c.Backend.TimeoutSecs)
	}
	if c.Backend.SendTimeoutSecs <= 0 {
		return fmt.Errorf("backend.send_timeout_secs must be positive, got %d", c.Backend.SendTimeoutSecs)
	}
	if c.Backend.RequestsPerSecond < 0 {
		return fmt.Errorf("backend.requests_per_second must not be negative, got %v", c.Backend.RequestsPerSecond)
	}

	if c.Chat.Temperature < 0 || c.Chat.Temperature > 2 {
		return fmt.Errorf("chat.temperature %v out of range 0.0-2.0", c.Chat.Temperature)
	}
	if c.Chat.MaxTokens <= 0 {
		return fmt.Errorf("chat.max_tokens must be positive, got %d", c.Chat.MaxTokens)
	}

	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		return fmt.Errorf("ui.theme %q must be dark, light, or auto", c.UI.Theme)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}

	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to the default path with owner-only
// permissions.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveToPath(path)
}

// SaveToPath writes the configuration to a specific file.
func (c *Config) SaveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
