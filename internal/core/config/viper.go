package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*EditorConfig, error) {
	v := viper.New()

	// Set defaults matching DefaultEditorConfig
	v.SetDefault("editor.engine_url", "http://127.0.0.1:8090")
	v.SetDefault("editor.request_timeout", "10s")
	v.SetDefault("editor.history_capacity", 50)
	v.SetDefault("editor.history_debounce", "100ms")
	v.SetDefault("editor.max_nodes", 256)

	// Bind environment variables with BF_ prefix
	v.SetEnvPrefix("BF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &EditorConfig{
		EngineURL:       v.GetString("editor.engine_url"),
		RequestTimeout:  v.GetDuration("editor.request_timeout"),
		HistoryCapacity: v.GetInt("editor.history_capacity"),
		HistoryDebounce: v.GetDuration("editor.history_debounce"),
		MaxNodes:        v.GetInt("editor.max_nodes"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks URL presence and positive values for timeout,
// history sizing, and node limits.
func validateConfig(cfg *EditorConfig) error {
	if cfg.EngineURL == "" {
		return fmt.Errorf("engine_url must not be empty")
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.RequestTimeout)
	}
	if cfg.HistoryCapacity <= 0 {
		return fmt.Errorf("history_capacity must be positive, got %d", cfg.HistoryCapacity)
	}
	if cfg.HistoryDebounce <= 0 {
		return fmt.Errorf("history_debounce must be positive, got %v", cfg.HistoryDebounce)
	}
	if cfg.MaxNodes <= 0 {
		return fmt.Errorf("max_nodes must be positive, got %d", cfg.MaxNodes)
	}
	return nil
}
