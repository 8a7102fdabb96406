// SPDX-License-Identifier: MPL-2.0

// Package shell is the host application shell: a Builder that accumulates
// capability plugins in registration order, and the Application it
// finalizes into, which owns the windows, the command table, the filesystem
// scope and the event loop.
//
// Lifecycle:
//
//	b := shell.NewBuilder(shell.WithDisplay(d))
//	b.Plugin(scope.New()).Plugin(store.New())
//	app, err := b.Build(ctx, staticCtx) // runs every Initialize in order
//	err = app.Run(ctx)                  // blocks in the event loop
//
// A Builder is consumed once. Initialization is all-or-nothing: when a
// plugin fails, plugins that already initialized are shut down in reverse
// order and no Application is returned.
package shell
