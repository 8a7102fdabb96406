// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/asdf-gui/asdf-gui/internal/envfix"
	"github.com/asdf-gui/asdf-gui/internal/issue"

	"github.com/spf13/cobra"
)

func newEnvCommand(app *App) *cobra.Command {
	var respectTerminal bool

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Preview the PATH fixup performed at startup",
		Long: `Query the login shell the way the desktop shell does when it is launched
from a file manager or dock, and print the resulting PATH. Nothing is
modified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.loadConfig(cmd.Context())
			opts := envfix.Options{
				Shell:   cfg.PathFixup.Shell,
				Timeout: cfg.PathFixup.Timeout,
				Extra:   slices.Clone(cfg.PathFixup.Extra),
				Force:   !respectTerminal,
			}
			if static, err := app.Loader(); err == nil {
				opts.Extra = append(opts.Extra, static.SearchPath.Extra...)
			}

			if !cfg.PathFixup.Enabled {
				fmt.Fprintln(app.stdout, WarningStyle.Render("path_fixup.enabled is false: the shell skips this step"))
			}

			report, err := app.Diagnose(cmd.Context(), opts)
			if err != nil {
				return issue.NewErrorContext().
					WithOperation("read login shell environment").
					WithIssue(issue.ShellEnvUnavailableId).
					Wrap(err).
					BuildError()
			}
			renderReport(app, report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&respectTerminal, "respect-terminal", false, "skip the fixup when run from a terminal, as the shell does")
	return cmd
}

func renderReport(app *App, r envfix.Report) {
	w := app.stdout
	fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("shell"), r.Shell)
	if r.Skipped != "" {
		fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("skipped"), SubtitleStyle.Render(r.Skipped))
		return
	}

	fmt.Fprintf(w, "%s:\n", KeyStyle.Render("PATH"))
	for _, entry := range filepath.SplitList(r.After) {
		if entry == "" {
			continue
		}
		if slices.Contains(r.Added, entry) {
			fmt.Fprintf(w, "  %s %s\n", SuccessStyle.Render("+"), entry)
			continue
		}
		fmt.Fprintf(w, "    %s\n", entry)
	}
	if !r.Changed() {
		fmt.Fprintln(w, SubtitleStyle.Render("PATH is already complete"))
	}
}
