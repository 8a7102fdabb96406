// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/asdf-gui/asdf-gui/internal/issue"

	"github.com/spf13/cobra"
)

func newIssuesCommand(app *App) *cobra.Command {
	var style string

	cmd := &cobra.Command{
		Use:   "issues [ID]",
		Short: "List the startup issue catalog, or render one entry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				entry := issue.Get(issue.Id(n))
				if err != nil || entry == nil {
					return &ExitError{Code: 1, Err: fmt.Errorf("unknown issue %q", args[0])}
				}
				out, err := entry.Render(style)
				if err != nil {
					return err
				}
				fmt.Fprint(app.stdout, out)
				return nil
			}

			for _, entry := range issue.Values() {
				fmt.Fprintf(app.stdout, "%s %s\n", KeyStyle.Render(fmt.Sprintf("%2d", entry.Id())), issueTitle(entry.MarkdownMsg()))
				for _, link := range entry.DocLinks() {
					fmt.Fprintf(app.stdout, "   %s\n", SubtitleStyle.Render(string(link)))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&style, "style", "notty", "glamour style used to render an entry")
	return cmd
}

// issueTitle is the first Markdown heading of msg, or its first line.
func issueTitle(msg issue.MarkdownMsg) string {
	var first string
	for line := range strings.Lines(string(msg)) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if title, ok := strings.CutPrefix(line, "#"); ok {
			return strings.TrimSpace(strings.TrimLeft(title, "#"))
		}
		if first == "" {
			first = line
		}
	}
	return first
}
