// Package config provides configuration management for the badgeforge
// editor core.
package config

import (
	"time"

	"github.com/badgeforge/badgeforge/internal/types"
)

// EditorConfig holds configuration for the editor core and its external
// collaborators.
type EditorConfig struct {
	EngineURL       string
	RequestTimeout  time.Duration
	HistoryCapacity int
	HistoryDebounce time.Duration
	MaxNodes        int
}

// DefaultEditorConfig returns configuration with default values.
func DefaultEditorConfig() *EditorConfig {
	return &EditorConfig{
		EngineURL:       "http://127.0.0.1:8090",
		RequestTimeout:  10 * time.Second,
		HistoryCapacity: types.HistoryCapacity,
		HistoryDebounce: types.HistoryDebounce,
		MaxNodes:        types.MaxNodes,
	}
}
