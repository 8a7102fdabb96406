// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"log/slog"
)

// LoadOptions selects the config.cue that Load reads. The zero value reads
// <config dir>/asdf-gui/config.cue and tolerates its absence.
type LoadOptions struct {
	// ConfigFilePath names the file to read; it must exist.
	ConfigFilePath string
	// ConfigDirPath replaces the platform config directory.
	ConfigDirPath string
}

// Provider yields user settings. The shell and asdf-gui-ctl take one so
// tests can hand in fixed settings without touching the home directory.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

// ProviderFunc lets a plain function serve as a Provider.
type ProviderFunc func(ctx context.Context, opts LoadOptions) (*Config, error)

func (f ProviderFunc) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	return f(ctx, opts)
}

// NewProvider returns the Provider backed by config.cue on disk plus
// ASDF_GUI_* environment overrides. A nil Config comes with every error.
func NewProvider() Provider {
	return ProviderFunc(loadFromDisk)
}

func loadFromDisk(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, path, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		slog.Debug("settings loaded", "path", path)
	}
	return cfg, nil
}
