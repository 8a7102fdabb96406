// SPDX-License-Identifier: MPL-2.0

package scope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"sync"

	"github.com/asdf-gui/asdf-gui/internal/fileutil"
	"github.com/asdf-gui/asdf-gui/internal/shell"
)

// Capability is the capability id of this plugin.
const Capability shell.CapabilityID = "persisted-scope"

// DefaultFile is used when the static context names no file.
const DefaultFile = ".persisted-scope"

const filePerm = 0o600

type (
	// Plugin restores and persists runtime filesystem scope grants.
	Plugin struct {
		file string

		mu     sync.Mutex
		path   string
		state  snapshot
		scope  *shell.FSScope
		logger *slog.Logger
	}

	// Option configures a Plugin.
	Option func(*Plugin)

	// GrantRequest is the payload of the allow and forbid commands. Either
	// Patterns or Directory is set.
	GrantRequest struct {
		Patterns  []string `json:"patterns,omitempty"`
		Directory string   `json:"directory,omitempty"`
		Recursive bool     `json:"recursive,omitempty"`
	}

	// PathRequest is the payload of the is_allowed command.
	PathRequest struct {
		Path string `json:"path"`
	}

	// Listing is the reply of the list command.
	Listing struct {
		Allowed   []string `json:"allowed"`
		Forbidden []string `json:"forbidden"`
	}
)

// WithFile overrides the file name configured in the static context.
func WithFile(name string) Option {
	return func(p *Plugin) { p.file = name }
}

// New returns an uninitialized persisted-scope plugin.
func New(opts ...Option) *Plugin {
	p := &Plugin{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Capability implements shell.Plugin.
func (p *Plugin) Capability() shell.CapabilityID { return Capability }

// Initialize restores saved grants into the application scope, starts
// persisting further changes and registers the scope commands.
func (p *Plugin) Initialize(_ context.Context, b *shell.Builder) error {
	file := p.file
	if file == "" {
		file = b.Context().Plugins.PersistedScope.File
	}
	if file == "" {
		file = DefaultFile
	}

	p.path = filepath.Join(b.DataDir(), file)
	p.scope = b.Scope()
	p.logger = b.Logger().With("capability", Capability)

	if err := p.restore(); err != nil {
		return err
	}
	p.scope.OnChange(p.record)

	handlers := map[string]shell.CommandHandler{
		"allow":      p.handleGrant(false),
		"forbid":     p.handleGrant(true),
		"is_allowed": p.handleIsAllowed,
		"list":       p.handleList,
	}
	for _, name := range slices.Sorted(maps.Keys(handlers)) {
		if err := b.Handle(Capability, name, handlers[name]); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the persisted file, valid after Initialize.
func (p *Plugin) Path() string { return p.path }

func (p *Plugin) restore() error {
	data, err := fileutil.ReadFileIfExists(p.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", p.path, err)
	}
	if data == nil {
		return nil
	}

	saved, err := decodeSnapshot(data)
	if err != nil {
		// A damaged file only loses runtime grants; start over.
		p.logger.Warn("discarding unreadable persisted scope", "path", p.path, "error", err)
		return nil
	}
	if err := p.scope.Allow(saved.Allowed...); err != nil {
		return fmt.Errorf("restore allowed patterns: %w", err)
	}
	if err := p.scope.Forbid(saved.Forbidden...); err != nil {
		return fmt.Errorf("restore forbidden patterns: %w", err)
	}

	p.mu.Lock()
	p.state = saved
	p.mu.Unlock()
	p.logger.Debug("restored persisted scope", "allowed", len(saved.Allowed), "forbidden", len(saved.Forbidden))
	return nil
}

// record runs after each scope change and rewrites the file.
func (p *Plugin) record(c shell.ScopeChange) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c.Forbidden {
		p.state.Forbidden = appendNew(p.state.Forbidden, c.Patterns)
	} else {
		p.state.Allowed = appendNew(p.state.Allowed, c.Patterns)
	}
	if err := p.save(); err != nil {
		p.logger.Error("failed to persist scope", "path", p.path, "error", err)
	}
}

// save must be called with mu held.
func (p *Plugin) save() error {
	data, err := encodeSnapshot(p.state)
	if err != nil {
		return err
	}
	return fileutil.WriteFile(p.path, data, filePerm)
}

func (p *Plugin) handleGrant(forbid bool) shell.CommandHandler {
	return func(_ context.Context, payload json.RawMessage) (any, error) {
		req, err := shell.DecodePayload[GrantRequest](payload)
		if err != nil {
			return nil, err
		}
		switch {
		case req.Directory != "" && len(req.Patterns) > 0:
			return nil, errors.New("set either patterns or directory, not both")
		case req.Directory != "" && forbid:
			err = p.scope.ForbidDirectory(req.Directory, req.Recursive)
		case req.Directory != "":
			err = p.scope.AllowDirectory(req.Directory, req.Recursive)
		case len(req.Patterns) == 0:
			return nil, errors.New("no patterns given")
		case forbid:
			err = p.scope.Forbid(req.Patterns...)
		default:
			err = p.scope.Allow(req.Patterns...)
		}
		if err != nil {
			return nil, err
		}
		return p.listing(), nil
	}
}

func (p *Plugin) handleIsAllowed(_ context.Context, payload json.RawMessage) (any, error) {
	req, err := shell.DecodePayload[PathRequest](payload)
	if err != nil {
		return nil, err
	}
	if req.Path == "" {
		return nil, errors.New("path is required")
	}
	return p.scope.IsAllowed(req.Path), nil
}

func (p *Plugin) handleList(context.Context, json.RawMessage) (any, error) {
	return p.listing(), nil
}

func (p *Plugin) listing() Listing {
	return Listing{Allowed: p.scope.Allowed(), Forbidden: p.scope.Forbidden()}
}

// Load reads a persisted scope file without starting the plugin.
func Load(path string) (Listing, error) {
	data, err := fileutil.ReadFileIfExists(path)
	if err != nil || data == nil {
		return Listing{}, err
	}
	s, err := decodeSnapshot(data)
	if err != nil {
		return Listing{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return Listing{Allowed: s.Allowed, Forbidden: s.Forbidden}, nil
}

func appendNew(dst, patterns []string) []string {
	for _, pat := range patterns {
		if !slices.Contains(dst, pat) {
			dst = append(dst, pat)
		}
	}
	return dst
}
