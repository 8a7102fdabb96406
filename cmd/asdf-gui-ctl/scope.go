// SPDX-License-Identifier: MPL-2.0

package main

import (
	"cmp"
	"fmt"
	"path/filepath"

	"github.com/asdf-gui/asdf-gui/internal/plugins/scope"

	"github.com/spf13/cobra"
)

func newScopeCommand(app *App) *cobra.Command {
	scopeCmd := &cobra.Command{
		Use:   "scope",
		Short: "Read filesystem scope grants persisted by the shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	scopeCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List grants made at runtime",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			static, err := app.loadContext()
			if err != nil {
				return err
			}
			dir, err := app.dataDir(cmd.Context(), static)
			if err != nil {
				return err
			}
			path := filepath.Join(dir, cmp.Or(static.Plugins.PersistedScope.File, scope.DefaultFile))
			listing, err := scope.Load(path)
			if err != nil {
				return err
			}

			fmt.Fprintf(app.stdout, "%s: %s\n", KeyStyle.Render("file"), path)
			printPatterns(app, "allowed", listing.Allowed, SuccessStyle.Render("+"))
			printPatterns(app, "forbidden", listing.Forbidden, WarningStyle.Render("-"))
			return nil
		},
	})
	return scopeCmd
}

func printPatterns(app *App, title string, patterns []string, marker string) {
	fmt.Fprintf(app.stdout, "%s:\n", KeyStyle.Render(title))
	if len(patterns) == 0 {
		fmt.Fprintf(app.stdout, "  %s\n", SubtitleStyle.Render("(none)"))
		return
	}
	for _, p := range patterns {
		fmt.Fprintf(app.stdout, "  %s %s\n", marker, p)
	}
}
