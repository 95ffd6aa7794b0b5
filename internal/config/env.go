package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// APIKeyEnvVars lists the variables searched for the API key, in order
var APIKeyEnvVars = []string{"GEMINI_API_KEY", "API_KEY"}

// LoadEnv loads variables from .env files without overriding the process
// environment. Missing files are skipped; with no arguments ".env" is tried.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to stat env file %s: %w", f, err)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

// APIKeyFromEnv returns the first non-empty API key variable, or "".
// An empty key is not an error here; the remote service rejects the call.
func APIKeyFromEnv() string {
	for _, name := range APIKeyEnvVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// ApplyEnv overlays GEMINICHAT_* variables on cfg
func ApplyEnv(cfg Config) Config {
	cfg.Model = getEnvOrDefault("GEMINICHAT_MODEL", cfg.Model)
	cfg.BaseURL = getEnvOrDefault("GEMINICHAT_BASE_URL", cfg.BaseURL)
	cfg.ListenAddr = getEnvOrDefault("GEMINICHAT_LISTEN_ADDR", cfg.ListenAddr)
	cfg.TimeoutSeconds = getEnvAsIntOrDefault("GEMINICHAT_TIMEOUT_SECONDS", cfg.TimeoutSeconds)
	if v, err := strconv.ParseBool(os.Getenv("GEMINICHAT_VERBOSE")); err == nil {
		cfg.Verbose = v
	}
	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}
