// SPDX-License-Identifier: MPL-2.0

package app

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

const (
	// PhaseNotStarted is the state before Main does anything.
	PhaseNotStarted Phase = iota
	// PhaseNormalizing means the PATH fixup is running.
	PhaseNormalizing
	// PhaseComposing means plugins are being registered.
	PhaseComposing
	// PhaseFinalizing means the static context is loading and plugins
	// are initializing.
	PhaseFinalizing
	// PhaseRunning is terminal: the event loop was entered.
	PhaseRunning
	// PhaseFailed is terminal: startup failed.
	PhaseFailed
)

// ErrInvalidTransition is returned for backward or post-terminal moves.
var ErrInvalidTransition = errors.New("invalid phase transition")

type (
	// Phase is a startup lifecycle state.
	Phase int32

	// PhaseTracker records the startup phase. Transitions only move forward
	// and stop at a terminal phase. It is safe for concurrent reads.
	PhaseTracker struct {
		phase atomic.Int32

		mu  sync.Mutex
		err error
	}

	// TransitionError describes a rejected transition.
	TransitionError struct {
		From, To Phase
	}
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not-started"
	case PhaseNormalizing:
		return "normalizing"
	case PhaseComposing:
		return "composing"
	case PhaseFinalizing:
		return "finalizing"
	case PhaseRunning:
		return "running"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// IsTerminal reports whether no further transition is possible.
func (p Phase) IsTerminal() bool {
	return p == PhaseRunning || p == PhaseFailed
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// Phase returns the current phase.
func (t *PhaseTracker) Phase() Phase {
	return Phase(t.phase.Load())
}

// Advance moves to a later non-failed phase.
func (t *PhaseTracker) Advance(to Phase) error {
	if to == PhaseFailed {
		return &TransitionError{From: t.Phase(), To: to}
	}
	for {
		from := t.Phase()
		if from.IsTerminal() || to <= from || to > PhaseRunning {
			return &TransitionError{From: from, To: to}
		}
		if t.phase.CompareAndSwap(int32(from), int32(to)) {
			return nil
		}
	}
}

// Fail moves to PhaseFailed from any non-terminal phase and records err.
// It reports whether the transition happened.
func (t *PhaseTracker) Fail(err error) bool {
	for {
		from := t.Phase()
		if from.IsTerminal() {
			return false
		}
		if t.phase.CompareAndSwap(int32(from), int32(PhaseFailed)) {
			t.mu.Lock()
			t.err = err
			t.mu.Unlock()
			return true
		}
	}
}

// Err returns the error passed to Fail.
func (t *PhaseTracker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}
