// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/asdf-gui/asdf-gui/internal/cueutil"
	"github.com/asdf-gui/asdf-gui/internal/issue"
	"github.com/asdf-gui/asdf-gui/internal/platform"

	"github.com/spf13/viper"
)

const (
	// AppName names the config directory.
	AppName = "asdf-gui"
	// ConfigFileName is the config file name.
	ConfigFileName = "config.cue"
	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "ASDF_GUI"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the platform config directory for the application.
//
//nolint:revive // ConfigDir reads better than Dir at call sites
func ConfigDir() (string, error) {
	return platform.HostDirs().ConfigDir(AppName)
}

func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("path_fixup.enabled", defaults.PathFixup.Enabled)
	v.SetDefault("path_fixup.shell", defaults.PathFixup.Shell)
	v.SetDefault("path_fixup.timeout", defaults.PathFixup.Timeout)
	v.SetDefault("path_fixup.extra", defaults.PathFixup.Extra)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, explicit, err := resolvePath(opts)
	if err != nil {
		return nil, "", err
	}

	resolved := ""
	switch _, statErr := os.Stat(path); {
	case statErr == nil:
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Remove the file to fall back to defaults").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
		resolved = path
	case errors.Is(statErr, fs.ErrNotExist) && !explicit:
		// No file: defaults and environment only.
	default:
		return nil, "", issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithSuggestion("Verify the file path is correct").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(statErr).
			BuildError()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, resolved, nil
}

// resolvePath picks the config file and reports whether it was requested
// explicitly (a missing explicit file is an error).
func resolvePath(opts LoadOptions) (string, bool, error) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, true, nil
	}

	dir := opts.ConfigDirPath
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", false, err
		}
	}
	return filepath.Join(dir, ConfigFileName), false, nil
}

// loadCUEIntoViper validates the file against #Config and merges it into v.
// Fields are optional, so validation is non-concrete and the result is
// decoded to a map rather than a struct.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	unified, err := cueutil.Unify(configSchema, data, "#Config",
		cueutil.WithFilename(path), cueutil.WithConcrete(false))
	if err != nil {
		return err
	}

	var values map[string]any
	if err := unified.Decode(&values); err != nil {
		return cueutil.FormatError(err, path)
	}

	if err := v.MergeConfigMap(values); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}
