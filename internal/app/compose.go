// SPDX-License-Identifier: MPL-2.0

package app

import (
	"log/slog"

	"github.com/asdf-gui/asdf-gui/internal/plugins/scope"
	"github.com/asdf-gui/asdf-gui/internal/plugins/store"
	"github.com/asdf-gui/asdf-gui/internal/shell"
)

// ComposeOptions configures Compose.
type ComposeOptions struct {
	// Display is the windowing backend. Nil means the system display.
	Display shell.Display
	// Logger is handed to plugins. Nil means slog.Default().
	Logger *slog.Logger
	// DataDir overrides the per-application data directory.
	DataDir string

	Scope []scope.Option
	Store []store.Option
	// Plugins are registered after the built-in capabilities.
	Plugins []shell.Plugin
}

// Compose registers the built-in capabilities on a new Builder: the
// persisted filesystem scope, then the key-value store. No plugin code
// runs. A capability registered twice is reported as a
// *shell.DuplicateCapabilityError.
func Compose(opts ComposeOptions) (*shell.Builder, error) {
	var bopts []shell.Option
	if opts.Display != nil {
		bopts = append(bopts, shell.WithDisplay(opts.Display))
	}
	if opts.Logger != nil {
		bopts = append(bopts, shell.WithLogger(opts.Logger))
	}
	if opts.DataDir != "" {
		bopts = append(bopts, shell.WithDataDir(opts.DataDir))
	}

	b := shell.NewBuilder(bopts...).
		Plugin(scope.New(opts.Scope...)).
		Plugin(store.New(opts.Store...))
	for _, p := range opts.Plugins {
		b.Plugin(p)
	}
	if err := b.Err(); err != nil {
		return nil, err
	}
	return b, nil
}
