// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/asdf-gui/asdf-gui/internal/appctx"
)

type (
	// Application is the finalized shell. It is created by Builder.Build
	// and owned by whoever calls Run. All mutable state belongs to the
	// event loop goroutine; other goroutines talk to it through events.
	Application struct {
		static   *appctx.Context
		display  Display
		logger   *slog.Logger
		dataDir  string
		scope    *FSScope
		plugins  []Plugin
		commands map[string]CommandHandler

		events  chan event
		done    chan struct{}
		running atomic.Bool
		code    atomic.Int32

		// Loop-owned.
		windows map[string]Window
		order   []string
	}

	event interface {
		handle(a *Application) (stop bool)
	}

	invokeEvent struct {
		ctx     context.Context
		name    string
		payload json.RawMessage
		reply   chan invokeResult
	}

	invokeResult struct {
		data json.RawMessage
		err  error
	}

	closeWindowEvent struct {
		label string
		reply chan error
	}

	windowsEvent struct {
		reply chan []string
	}

	exitEvent struct {
		code int
	}
)

func newApplication(b *Builder) *Application {
	return &Application{
		static:   b.static,
		display:  b.display,
		logger:   b.logger,
		dataDir:  b.dataDir,
		scope:    b.scope,
		plugins:  slices.Clone(b.plugins),
		commands: b.commands,
		events:   make(chan event),
		done:     make(chan struct{}),
		windows:  make(map[string]Window),
	}
}

// Context returns the static context the application was built from.
func (a *Application) Context() *appctx.Context { return a.static }

// Scope returns the filesystem scope.
func (a *Application) Scope() *FSScope { return a.scope }

// DataDir returns the per-application data directory.
func (a *Application) DataDir() string { return a.dataDir }

// Capabilities lists plugin capabilities in registration order.
func (a *Application) Capabilities() []CapabilityID {
	ids := make([]CapabilityID, len(a.plugins))
	for i, p := range a.plugins {
		ids[i] = p.Capability()
	}
	return ids
}

// Commands lists the registered command names, sorted.
func (a *Application) Commands() []string {
	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ExitCode returns the code requested through Exit, 0 otherwise.
func (a *Application) ExitCode() int { return int(a.code.Load()) }

// Done is closed once the event loop has exited.
func (a *Application) Done() <-chan struct{} { return a.done }

// RunOption configures a single Application.Run call.
type RunOption func(*runConfig)

type runConfig struct {
	started func()
}

// WithStarted sets fn to run on the loop goroutine once the display is
// available and every window is open, right before the first event is
// read. It never runs when Run returns an *EventLoopStartError.
func WithStarted(fn func()) RunOption {
	return func(c *runConfig) { c.started = fn }
}

// Run opens every window declared in the static context and runs the event
// loop on the calling goroutine. It returns nil when the loop exits
// normally: ctx is cancelled, the last window closes or Exit is called.
// Plugins are shut down in reverse registration order before Run returns.
func (a *Application) Run(ctx context.Context, opts ...RunOption) error {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(a.done)
	defer a.shutdown(context.WithoutCancel(ctx))

	if err := a.display.Available(); err != nil {
		return &EventLoopStartError{Err: err}
	}
	for _, def := range a.static.Windows {
		w, err := a.display.Open(def)
		if err != nil {
			return &EventLoopStartError{Window: def.Label, Err: err}
		}
		a.windows[def.Label] = w
		a.order = append(a.order, def.Label)
	}

	a.logger.Info("event loop started", "windows", len(a.order), "commands", len(a.commands))
	if cfg.started != nil {
		cfg.started()
	}
	for {
		select {
		case <-ctx.Done():
			a.logger.Debug("event loop cancelled", "cause", context.Cause(ctx))
			return nil
		case ev := <-a.events:
			if ev.handle(a) {
				a.logger.Debug("event loop exiting", "code", a.ExitCode())
				return nil
			}
		}
	}
}

// Invoke dispatches a plugin command through the event loop and returns
// its JSON-encoded result. It blocks until the loop is running.
func (a *Application) Invoke(ctx context.Context, name string, payload json.RawMessage) (json.RawMessage, error) {
	ev := &invokeEvent{ctx: ctx, name: name, payload: payload, reply: make(chan invokeResult, 1)}
	if err := a.post(ctx, ev); err != nil {
		return nil, err
	}
	select {
	case res := <-ev.reply:
		return res.data, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CloseWindow closes the window with the given label. Closing the last
// window stops the event loop.
func (a *Application) CloseWindow(ctx context.Context, label string) error {
	ev := &closeWindowEvent{label: label, reply: make(chan error, 1)}
	if err := a.post(ctx, ev); err != nil {
		return err
	}
	select {
	case err := <-ev.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Windows returns the labels of the open windows in opening order.
func (a *Application) Windows(ctx context.Context) ([]string, error) {
	ev := &windowsEvent{reply: make(chan []string, 1)}
	if err := a.post(ctx, ev); err != nil {
		return nil, err
	}
	select {
	case labels := <-ev.reply:
		return labels, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Exit asks the event loop to stop with the given exit code.
func (a *Application) Exit(ctx context.Context, code int) error {
	return a.post(ctx, &exitEvent{code: code})
}

func (a *Application) post(ctx context.Context, ev event) error {
	select {
	case a.events <- ev:
		return nil
	case <-a.done:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Application) shutdown(ctx context.Context) {
	for i := len(a.order) - 1; i >= 0; i-- {
		label := a.order[i]
		if err := a.windows[label].Close(); err != nil {
			a.logger.Warn("failed to close window", "label", label, "error", err)
		}
		delete(a.windows, label)
	}
	a.order = nil
	shutdownPlugins(ctx, a.logger, a.plugins)
}

func (e *invokeEvent) handle(a *Application) bool {
	h, ok := a.commands[e.name]
	if !ok {
		e.reply <- invokeResult{err: fmt.Errorf("%w: %s", ErrUnknownCommand, e.name)}
		return false
	}
	v, err := h(e.ctx, e.payload)
	if err != nil {
		e.reply <- invokeResult{err: fmt.Errorf("%s: %w", e.name, err)}
		return false
	}
	data, err := json.Marshal(v)
	if err != nil {
		e.reply <- invokeResult{err: fmt.Errorf("%s: encode reply: %w", e.name, err)}
		return false
	}
	e.reply <- invokeResult{data: data}
	return false
}

func (e *closeWindowEvent) handle(a *Application) bool {
	w, ok := a.windows[e.label]
	if !ok {
		e.reply <- fmt.Errorf("%w: %s", ErrUnknownWindow, e.label)
		return false
	}
	err := w.Close()
	delete(a.windows, e.label)
	a.order = slices.DeleteFunc(a.order, func(l string) bool { return l == e.label })
	e.reply <- err
	return len(a.order) == 0
}

func (e *windowsEvent) handle(a *Application) bool {
	e.reply <- slices.Clone(a.order)
	return false
}

func (e *exitEvent) handle(a *Application) bool {
	a.code.Store(int32(e.code))
	return true
}
