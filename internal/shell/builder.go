// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/asdf-gui/asdf-gui/internal/appctx"
	"github.com/asdf-gui/asdf-gui/internal/platform"
)

type (
	// Builder accumulates plugins for an Application. It is owned by one
	// goroutine and consumed by a single Build call.
	Builder struct {
		plugins []Plugin
		index   map[CapabilityID]int
		err     error

		display Display
		logger  *slog.Logger
		dataDir string
		dirs    platform.Dirs

		// Set while finalizing; readable by plugins from Initialize.
		finalizing bool
		static     *appctx.Context
		scope      *FSScope
		commands   map[string]CommandHandler
	}

	// Option configures a Builder.
	Option func(*Builder)
)

// WithDisplay sets the windowing backend. Defaults to NewSystemDisplay().
func WithDisplay(d Display) Option {
	return func(b *Builder) { b.display = d }
}

// WithLogger sets the logger handed to plugins. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithDataDir overrides the per-application data directory, which
// otherwise derives from the static context identifier.
func WithDataDir(dir string) Option {
	return func(b *Builder) { b.dataDir = dir }
}

// WithDirs replaces platform directory resolution.
func WithDirs(d platform.Dirs) Option {
	return func(b *Builder) { b.dirs = d }
}

// NewBuilder returns an empty Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		index: make(map[CapabilityID]int),
		dirs:  platform.HostDirs(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.display == nil {
		b.display = NewSystemDisplay()
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Plugin appends p to the registration order. Registration never runs any
// plugin code. Registering nil, registering a capability twice, or
// registering after Build started records an error returned by Err and Build; the first recorded
// error wins.
func (b *Builder) Plugin(p Plugin) *Builder {
	if b.err != nil {
		return b
	}
	if p == nil {
		b.err = fmt.Errorf("register plugin at position %d: %w", len(b.plugins), ErrNilPlugin)
		return b
	}
	if b.finalizing {
		b.err = fmt.Errorf("register plugin %s: %w", p.Capability(), ErrBuilderFinalized)
		return b
	}

	id := p.Capability()
	if first, dup := b.index[id]; dup {
		b.err = &DuplicateCapabilityError{Capability: id, First: first, Position: len(b.plugins)}
		return b
	}
	b.index[id] = len(b.plugins)
	b.plugins = append(b.plugins, p)
	return b
}

// Err returns the first registration error.
func (b *Builder) Err() error {
	return b.err
}

// Capabilities returns registered capability ids in registration order.
func (b *Builder) Capabilities() []CapabilityID {
	ids := make([]CapabilityID, len(b.plugins))
	for i, p := range b.plugins {
		ids[i] = p.Capability()
	}
	return ids
}

// Context returns the static context. Only valid during Initialize.
func (b *Builder) Context() *appctx.Context { return b.static }

// Scope returns the filesystem scope. Only valid during Initialize.
func (b *Builder) Scope() *FSScope { return b.scope }

// DataDir returns the directory where plugins keep state.
func (b *Builder) DataDir() string { return b.dataDir }

// Logger returns the logger plugins should use.
func (b *Builder) Logger() *slog.Logger { return b.logger }

// Handle registers a command handler under "plugin:<capability>|<command>".
// Only valid during Initialize.
func (b *Builder) Handle(capability CapabilityID, command string, h CommandHandler) error {
	if !b.finalizing || b.commands == nil {
		return errors.New("commands can only be registered during plugin initialization")
	}
	name := CommandName(capability, command)
	if _, dup := b.commands[name]; dup {
		return fmt.Errorf("command %s registered twice", name)
	}
	b.commands[name] = h
	return nil
}

// Build finalizes the Builder against the static context. Every plugin's
// Initialize runs in registration order. If one fails, the plugins already
// initialized are shut down in reverse order and a *PluginInitError is
// returned. Build may be called once.
func (b *Builder) Build(ctx context.Context, static *appctx.Context) (*Application, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.finalizing {
		return nil, ErrBuilderFinalized
	}
	b.finalizing = true

	if static == nil {
		return nil, &ContextLoadError{Err: errors.New("static context is nil")}
	}
	b.static = static

	if b.dataDir == "" {
		dir, err := b.dirs.DataDir(static.Identifier)
		if err != nil {
			return nil, fmt.Errorf("resolve data directory: %w", err)
		}
		b.dataDir = dir
	}

	scope, err := NewFSScope(static.Security.FSScope, b.scopeVars())
	if err != nil {
		return nil, fmt.Errorf("build filesystem scope: %w", err)
	}
	b.scope = scope
	b.commands = make(map[string]CommandHandler)

	for i, p := range b.plugins {
		b.logger.Debug("initializing plugin", "capability", p.Capability(), "position", i)
		if err := p.Initialize(ctx, b); err != nil {
			shutdownPlugins(ctx, b.logger, b.plugins[:i])
			return nil, &PluginInitError{Capability: p.Capability(), Err: err}
		}
	}

	app := newApplication(b)
	b.commands = nil
	return app, nil
}

// scopeVars resolves $HOME, $APPDATA and $APPCONFIG for scope patterns,
// falling back to the process environment.
func (b *Builder) scopeVars() func(string) string {
	return func(name string) string {
		switch name {
		case "APPDATA":
			return b.dataDir
		case "APPCONFIG":
			if dir, err := b.dirs.ConfigDir(b.static.Identifier); err == nil {
				return dir
			}
			return ""
		case "HOME":
			if b.dirs.Home != nil {
				if home, err := b.dirs.Home(); err == nil {
					return home
				}
			}
		}
		return os.Getenv(name)
	}
}

// shutdownPlugins shuts plugins down in reverse registration order.
func shutdownPlugins(ctx context.Context, logger *slog.Logger, plugins []Plugin) {
	for i := len(plugins) - 1; i >= 0; i-- {
		s, ok := plugins[i].(Shutdowner)
		if !ok {
			continue
		}
		if err := s.Shutdown(ctx); err != nil {
			logger.Warn("plugin shutdown failed", "capability", plugins[i].Capability(), "error", err)
		}
	}
}
