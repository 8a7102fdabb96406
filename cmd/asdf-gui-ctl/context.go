// SPDX-License-Identifier: MPL-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/asdf-gui/asdf-gui/internal/appctx"
	"github.com/asdf-gui/asdf-gui/internal/issue"

	"github.com/spf13/cobra"
)

func newContextCommand(app *App) *cobra.Command {
	ctxCmd := &cobra.Command{
		Use:   "context",
		Short: "Inspect the packaged application context",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var (
		asJSON bool
		raw    bool
	)
	show := &cobra.Command{
		Use:   "show",
		Short: "Show the packaged context",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if raw {
				_, err := app.stdout.Write(appctx.Packaged())
				return err
			}
			static, err := app.loadContext()
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(app.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(static)
			}
			renderContext(app.stdout, static)
			return nil
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "print the decoded context as JSON")
	show.Flags().BoolVar(&raw, "raw", false, "print the embedded CUE document")

	validate := &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a context document against the schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			static, err := appctx.LoadFile(args[0])
			if err != nil {
				ae := issue.NewErrorContext().
					WithOperation("validate context").
					WithResource(args[0]).
					WithIssue(issue.ContextLoadFailedId).
					Wrap(err).
					Build()
				fmt.Fprintln(app.stderr, ErrorStyle.Render("✗ ")+ae.Format(app.flags.verbose))
				return &ExitError{Code: 1, Err: ae}
			}
			fmt.Fprintf(app.stdout, "%s %s is valid (%d window(s), %d store(s))\n",
				SuccessStyle.Render("✓"), args[0], len(static.Windows), len(static.Plugins.KeyValueStore.Stores))
			return nil
		},
	}

	ctxCmd.AddCommand(show, validate)
	return ctxCmd
}

func renderContext(w io.Writer, c *appctx.Context) {
	field := func(k, v string) {
		fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render(k), SuccessStyle.Render(v))
	}
	list := func(k string, items []string) {
		fmt.Fprintf(w, "%s:\n", KeyStyle.Render(k))
		if len(items) == 0 {
			fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none)"))
			return
		}
		for _, it := range items {
			fmt.Fprintf(w, "  - %s\n", it)
		}
	}

	fmt.Fprintln(w, TitleStyle.Render(c.ProductName))
	fmt.Fprintln(w)
	field("identifier", c.Identifier)
	field("version", c.Version)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s:\n", KeyStyle.Render("windows"))
	for _, win := range c.Windows {
		flags := []string{}
		if win.Resizable {
			flags = append(flags, "resizable")
		}
		if win.Fullscreen {
			flags = append(flags, "fullscreen")
		}
		fmt.Fprintf(w, "  - %s %q %dx%d %s %s\n", win.Label, win.Title, win.Width, win.Height, win.URL,
			SubtitleStyle.Render(strings.Join(flags, ",")))
	}
	fmt.Fprintln(w)

	list("fs_scope.allow", c.Security.FSScope.Allow)
	list("fs_scope.deny", c.Security.FSScope.Deny)
	list("search_path.extra", c.SearchPath.Extra)
	fmt.Fprintln(w)

	field("persisted-scope.file", c.Plugins.PersistedScope.File)
	list("key-value-store.stores", c.Plugins.KeyValueStore.Stores)
	if d := c.Plugins.KeyValueStore.Autosave(); d > 0 {
		field("key-value-store.autosave", d.String())
	} else {
		field("key-value-store.autosave", "off")
	}
}
