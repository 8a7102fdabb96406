// SPDX-License-Identifier: MPL-2.0

package config

import "time"

type (
	// Config holds the user settings.
	Config struct {
		// LogLevel is one of debug, info, warn, error.
		LogLevel string `json:"log_level" mapstructure:"log_level"`
		// DataDir overrides where plugins keep their state.
		DataDir string `json:"data_dir" mapstructure:"data_dir"`
		// PathFixup tunes the PATH normalizer.
		PathFixup PathFixupConfig `json:"path_fixup" mapstructure:"path_fixup"`
	}

	// PathFixupConfig tunes the PATH normalizer.
	PathFixupConfig struct {
		Enabled bool          `json:"enabled" mapstructure:"enabled"`
		Shell   string        `json:"shell" mapstructure:"shell"`
		Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
		Extra   []string      `json:"extra" mapstructure:"extra"`
	}
)

// DefaultConfig returns the settings used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		PathFixup: PathFixupConfig{
			Enabled: true,
			Timeout: 5 * time.Second,
			Extra:   []string{},
		},
	}
}
