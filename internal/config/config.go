// Package config handles configuration for geminichat.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/diogo/geminichat/internal/models"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // "dark", "light", "notty" or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	Model   string `json:"model"`
	BaseURL string `json:"base_url,omitempty"`
	// TimeoutSeconds bounds one generate call, including reading the body.
	TimeoutSeconds int `json:"timeout_seconds"`
	// FailureMessage replaces the pending turn when a call fails.
	FailureMessage  string         `json:"failure_message"`
	Verbose         bool           `json:"verbose"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	ListenAddr      string         `json:"listen_addr"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Model:           models.DefaultModel.Name,
		BaseURL:         models.DefaultBaseURL,
		TimeoutSeconds:  60,
		FailureMessage:  models.DefaultFailureText,
		Verbose:         false,
		CopyToClipboard: false,
		ListenAddr:      ":8080",
		TUITheme:        "tokyonight",
		Markdown:        DefaultMarkdownConfig(),
	}
}

// GetConfigDir returns the configuration directory path.
// GEMINICHAT_HOME overrides the default ~/.geminichat.
func GetConfigDir() (string, error) {
	if dir := os.Getenv("GEMINICHAT_HOME"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".geminichat"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(configDir, "config.json"), data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setters maps config keys accepted by "config set" onto fields
var setters = map[string]func(cfg *Config, value string) error{
	"model": func(cfg *Config, value string) error {
		cfg.Model = value
		return nil
	},
	"base_url": func(cfg *Config, value string) error {
		cfg.BaseURL = value
		return nil
	},
	"timeout_seconds": func(cfg *Config, value string) error {
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("timeout_seconds must be a positive integer, got %q", value)
		}
		cfg.TimeoutSeconds = n
		return nil
	},
	"failure_message": func(cfg *Config, value string) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("failure_message cannot be empty")
		}
		cfg.FailureMessage = value
		return nil
	},
	"verbose":           boolSetter(func(cfg *Config, v bool) { cfg.Verbose = v }),
	"copy_to_clipboard": boolSetter(func(cfg *Config, v bool) { cfg.CopyToClipboard = v }),
	"listen_addr": func(cfg *Config, value string) error {
		cfg.ListenAddr = value
		return nil
	},
	"tui_theme": func(cfg *Config, value string) error {
		cfg.TUITheme = value
		return nil
	},
	"markdown.style": func(cfg *Config, value string) error {
		cfg.Markdown.Style = value
		return nil
	},
	"markdown.enable_emoji":      boolSetter(func(cfg *Config, v bool) { cfg.Markdown.EnableEmoji = v }),
	"markdown.preserve_newlines": boolSetter(func(cfg *Config, v bool) { cfg.Markdown.PreserveNewLines = v }),
	"markdown.table_wrap":        boolSetter(func(cfg *Config, v bool) { cfg.Markdown.TableWrap = v }),
}

func boolSetter(apply func(cfg *Config, v bool)) func(cfg *Config, value string) error {
	return func(cfg *Config, value string) error {
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("expected true or false, got %q", value)
		}
		apply(cfg, v)
		return nil
	}
}

// SetValue updates a single key of cfg from its string form
func SetValue(cfg *Config, key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	return set(cfg, value)
}

// Keys returns the keys accepted by SetValue, sorted
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
