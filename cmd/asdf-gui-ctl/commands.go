// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/asdf-gui/asdf-gui/internal/app"
	"github.com/asdf-gui/asdf-gui/internal/appctx"
	"github.com/asdf-gui/asdf-gui/internal/shell"

	"github.com/spf13/cobra"
)

func newCommandsCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the plugin commands the frontend can invoke",
		Long: `Composes the shell the way the desktop entry point does, initializes its
plugins against the data directory on a headless display, and prints every
registered command grouped by capability.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			static, err := a.loadContext()
			if err != nil {
				return err
			}
			dir, err := a.dataDir(cmd.Context(), static)
			if err != nil {
				return err
			}
			names, err := registeredCommands(cmd.Context(), static, dir)
			if err != nil {
				return err
			}

			var last shell.CapabilityID
			for _, name := range names {
				capability, command, ok := shell.ParseCommandName(name)
				if !ok {
					continue
				}
				if capability != last {
					fmt.Fprintln(a.stdout, KeyStyle.Render(string(capability)))
					last = capability
				}
				fmt.Fprintf(a.stdout, "  %-10s %s\n", command, SubtitleStyle.Render(name))
			}
			return nil
		},
	}
}

// registeredCommands builds the application on a headless display and runs
// its loop only long enough to read the command table. Returning from Run
// shuts the plugins down again.
func registeredCommands(ctx context.Context, static *appctx.Context, dataDir string) ([]string, error) {
	b, err := app.Compose(app.ComposeOptions{
		Display: &shell.HeadlessDisplay{},
		Logger:  slog.New(slog.DiscardHandler),
		DataDir: dataDir,
	})
	if err != nil {
		return nil, err
	}
	application, err := b.Build(ctx, static)
	if err != nil {
		return nil, err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var names []string
	err = application.Run(loopCtx, shell.WithStarted(func() {
		names = application.Commands()
		cancel()
	}))
	return names, err
}
