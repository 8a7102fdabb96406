// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"errors"
	"fmt"
)

var (
	// ErrBuilderFinalized is returned when a Builder is used after Build.
	ErrBuilderFinalized = errors.New("builder already finalized")
	// ErrNilPlugin is recorded when Builder.Plugin is given a nil plugin.
	ErrNilPlugin = errors.New("nil plugin")
	// ErrAlreadyRunning is returned by a second call to Application.Run.
	ErrAlreadyRunning = errors.New("event loop already started")
	// ErrNotRunning is returned when posting to a loop that has exited.
	ErrNotRunning = errors.New("event loop is not running")
	// ErrUnknownCommand is returned by Invoke for unregistered commands.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUnknownWindow is returned by CloseWindow for unknown labels.
	ErrUnknownWindow = errors.New("unknown window")
	// ErrNoDisplay means no windowing session is reachable.
	ErrNoDisplay = errors.New("no windowing session available")
)

// DuplicateCapabilityError is reported when two plugins claim the same
// capability. It is detected at registration time and is fatal.
type DuplicateCapabilityError struct {
	Capability CapabilityID
	// First and Position are registration indices.
	First    int
	Position int
}

func (e *DuplicateCapabilityError) Error() string {
	return fmt.Sprintf("capability %q registered twice (positions %d and %d)", e.Capability, e.First, e.Position)
}

// ContextLoadError wraps a failure to load the static context.
type ContextLoadError struct {
	Err error
}

func (e *ContextLoadError) Error() string { return "load static context: " + e.Err.Error() }
func (e *ContextLoadError) Unwrap() error { return e.Err }

// PluginInitError names the capability whose Initialize failed.
type PluginInitError struct {
	Capability CapabilityID
	Err        error
}

func (e *PluginInitError) Error() string {
	return fmt.Sprintf("initialize plugin %s: %v", e.Capability, e.Err)
}
func (e *PluginInitError) Unwrap() error { return e.Err }

// EventLoopStartError wraps a windowing failure while the loop starts.
type EventLoopStartError struct {
	// Window is the label that failed to open, empty when the display
	// itself is unavailable.
	Window string
	Err    error
}

func (e *EventLoopStartError) Error() string {
	if e.Window != "" {
		return fmt.Sprintf("start event loop: open window %q: %v", e.Window, e.Err)
	}
	return "start event loop: " + e.Err.Error()
}
func (e *EventLoopStartError) Unwrap() error { return e.Err }
