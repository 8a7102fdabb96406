// SPDX-License-Identifier: MPL-2.0

package app

import (
	"context"
	"errors"

	"github.com/asdf-gui/asdf-gui/internal/appctx"
	"github.com/asdf-gui/asdf-gui/internal/shell"
)

// Run loads the static context, finalizes b into an Application and runs
// its event loop until it exits. Startup errors are returned as
// *shell.ContextLoadError, *shell.PluginInitError or
// *shell.EventLoopStartError; the event loop is not entered after a
// failed finalization.
func Run(ctx context.Context, b *shell.Builder, load appctx.Loader) error {
	_, err := run(ctx, b, load, &PhaseTracker{})
	return err
}

func run(ctx context.Context, b *shell.Builder, load appctx.Loader, phase *PhaseTracker) (int, error) {
	if err := phase.Advance(PhaseFinalizing); err != nil {
		return 1, err
	}

	static, err := load()
	if err != nil {
		var loadErr *shell.ContextLoadError
		if !errors.As(err, &loadErr) {
			err = &shell.ContextLoadError{Err: err}
		}
		phase.Fail(err)
		return 1, err
	}

	// Startup itself ignores cancellation; only the loop observes ctx.
	app, err := b.Build(context.WithoutCancel(ctx), static)
	if err != nil {
		phase.Fail(err)
		return 1, err
	}

	// The phase reaches Running only once the loop has its windows open;
	// an EventLoopStartError leaves it Finalizing so Fail can record it.
	var advanceErr error
	if err := app.Run(ctx, shell.WithStarted(func() {
		advanceErr = phase.Advance(PhaseRunning)
	})); err != nil {
		phase.Fail(err)
		return 1, err
	}
	if advanceErr != nil {
		return 1, advanceErr
	}
	return app.ExitCode(), nil
}
