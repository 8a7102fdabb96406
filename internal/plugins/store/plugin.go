// SPDX-License-Identifier: MPL-2.0

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/asdf-gui/asdf-gui/internal/platform"
	"github.com/asdf-gui/asdf-gui/internal/shell"
)

// Capability is the capability id of this plugin.
const Capability shell.CapabilityID = "key-value-store"

// DefaultStore is opened when the static context lists no stores.
const DefaultStore = "settings"

type (
	// Clock schedules autosave. The real clock is used unless a test
	// substitutes a fake one.
	Clock interface {
		After(d time.Duration) <-chan time.Time
	}

	realClock struct{}

	// Plugin owns the stores declared in the static context.
	Plugin struct {
		clock    Clock
		autosave time.Duration
		override bool

		stores map[string]*Store
		order  []string
		logger *slog.Logger

		kick chan struct{}
		stop chan struct{}
		wg   sync.WaitGroup
		once sync.Once
	}

	// Option configures a Plugin.
	Option func(*Plugin)

	// Request is the payload of every store command. Key and Value are
	// used only by the commands that need them.
	Request struct {
		Store string          `json:"store"`
		Key   string          `json:"key,omitempty"`
		Value json.RawMessage `json:"value,omitempty"`
	}

	// GetReply is the reply of the get command.
	GetReply struct {
		Value  json.RawMessage `json:"value"`
		Exists bool            `json:"exists"`
	}
)

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// WithClock replaces the clock driving autosave.
func WithClock(c Clock) Option {
	return func(p *Plugin) { p.clock = c }
}

// WithAutosave overrides the debounce delay from the static context. Zero
// disables autosave.
func WithAutosave(d time.Duration) Option {
	return func(p *Plugin) {
		p.autosave = d
		p.override = true
	}
}

// New returns an uninitialized key-value-store plugin.
func New(opts ...Option) *Plugin {
	p := &Plugin{
		clock:  realClock{},
		stores: make(map[string]*Store),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Capability implements shell.Plugin.
func (p *Plugin) Capability() shell.CapabilityID { return Capability }

// Initialize opens every configured store and registers the commands.
// A store file that exists but cannot be read or decoded fails
// initialization.
func (p *Plugin) Initialize(_ context.Context, b *shell.Builder) error {
	settings := b.Context().Plugins.KeyValueStore
	p.logger = b.Logger().With("capability", Capability)
	if !p.override {
		p.autosave = settings.Autosave()
	}

	names := settings.Stores
	if len(names) == 0 {
		names = []string{DefaultStore}
	}
	for _, name := range names {
		if err := validName(name); err != nil {
			return err
		}
		s, err := Open(name, filepath.Join(b.DataDir(), name+".json"))
		if err != nil {
			return err
		}
		p.stores[name] = s
		p.order = append(p.order, name)
	}

	for _, c := range p.commands() {
		if err := b.Handle(Capability, c.name, c.handler); err != nil {
			return err
		}
	}

	if p.autosave > 0 {
		p.kick = make(chan struct{}, 1)
		p.stop = make(chan struct{})
		for _, s := range p.stores {
			s.onChange = p.schedule
		}
		p.wg.Add(1)
		go p.autosaveLoop()
	}
	p.logger.Debug("stores opened", "stores", p.order, "autosave", p.autosave)
	return nil
}

// Shutdown stops autosave and writes every store with unsaved changes.
func (p *Plugin) Shutdown(context.Context) error {
	p.once.Do(func() {
		if p.stop != nil {
			close(p.stop)
		}
	})
	p.wg.Wait()
	return p.saveAll()
}

// Store returns the named store.
func (p *Plugin) Store(name string) (*Store, bool) {
	s, ok := p.stores[name]
	return s, ok
}

// Names returns the store names in configuration order.
func (p *Plugin) Names() []string {
	return append([]string(nil), p.order...)
}

func (p *Plugin) saveAll() error {
	var errs []error
	for _, name := range p.order {
		if err := p.stores[name].Save(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Plugin) schedule() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// autosaveLoop saves dirty stores once no mutation has happened for the
// autosave delay.
func (p *Plugin) autosaveLoop() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			return
		case <-p.kick:
		}

		timer := p.clock.After(p.autosave)
	debounce:
		for {
			select {
			case <-p.stop:
				return
			case <-p.kick:
				timer = p.clock.After(p.autosave)
			case <-timer:
				break debounce
			}
		}
		if err := p.saveAll(); err != nil {
			p.logger.Error("autosave failed", "error", err)
		}
	}
}

func validName(name string) error {
	if !platform.IsPortableFileName(name) {
		return fmt.Errorf("invalid store name %q", name)
	}
	return nil
}
