// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"sync"

	"github.com/asdf-gui/asdf-gui/internal/appctx"
	"github.com/asdf-gui/asdf-gui/internal/platform"
)

type (
	// Display is the windowing backend used by the event loop. A renderer
	// attaches to the shell by implementing it.
	Display interface {
		// Available reports whether windows can be created at all.
		Available() error
		// Open creates a window from its static definition.
		Open(w appctx.Window) (Window, error)
	}

	// Window is an open window.
	Window interface {
		Label() string
		Close() error
	}

	// SystemDisplay checks that the desktop session provides a windowing
	// system and tracks the windows opened on it.
	SystemDisplay struct {
		GOOS   string
		Getenv func(string) string
	}

	systemWindow struct {
		def appctx.Window
	}
)

// NewSystemDisplay returns a SystemDisplay for the running process.
func NewSystemDisplay() *SystemDisplay {
	return &SystemDisplay{GOOS: runtime.GOOS, Getenv: os.Getenv}
}

// Available requires an X11 or Wayland session on Unix desktops other
// than macOS. Windows and macOS always have a window server.
func (d *SystemDisplay) Available() error {
	switch d.GOOS {
	case platform.Windows, platform.Darwin:
		return nil
	}
	getenv := d.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if getenv("WAYLAND_DISPLAY") == "" && getenv("DISPLAY") == "" {
		return fmt.Errorf("%w: neither DISPLAY nor WAYLAND_DISPLAY is set", ErrNoDisplay)
	}
	return nil
}

// Open records the window.
func (d *SystemDisplay) Open(w appctx.Window) (Window, error) {
	slog.Debug("window opened", "label", w.Label, "title", w.Title, "width", w.Width, "height", w.Height)
	return &systemWindow{def: w}, nil
}

func (w *systemWindow) Label() string { return w.def.Label }

func (w *systemWindow) Close() error {
	slog.Debug("window closed", "label", w.def.Label)
	return nil
}

// HeadlessDisplay opens windows in memory. It records every call so tests
// and CI can assert on what the loop did.
type HeadlessDisplay struct {
	// Err, when set, is returned by Available.
	Err error
	// FailOpen maps window labels to errors returned by Open.
	FailOpen map[string]error

	mu     sync.Mutex
	opened []string
	closed []string
}

// Available returns d.Err.
func (d *HeadlessDisplay) Available() error { return d.Err }

// Open records the window unless FailOpen has an entry for its label.
func (d *HeadlessDisplay) Open(w appctx.Window) (Window, error) {
	if err := d.FailOpen[w.Label]; err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.opened = append(d.opened, w.Label)
	d.mu.Unlock()
	return &headlessWindow{display: d, label: w.Label}, nil
}

// Opened returns the labels opened so far, in order.
func (d *HeadlessDisplay) Opened() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.opened)
}

// Closed returns the labels closed so far, in order.
func (d *HeadlessDisplay) Closed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.closed)
}

type headlessWindow struct {
	display *HeadlessDisplay
	label   string
}

func (w *headlessWindow) Label() string { return w.label }

func (w *headlessWindow) Close() error {
	w.display.mu.Lock()
	w.display.closed = append(w.display.closed, w.label)
	w.display.mu.Unlock()
	return nil
}
