// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

// Id identifies a catalog entry.
type Id int

const (
	ContextLoadFailedId Id = iota + 1
	PluginInitFailedId
	EventLoopStartFailedId
	DuplicateCapabilityId
	ConfigLoadFailedId
	ShellEnvUnavailableId
)

type (
	// MarkdownMsg is Markdown guidance rendered with glamour.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string

	// Issue is one catalog entry.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

// Id returns the entry's identifier.
func (i *Issue) Id() Id { return i.id }

// MarkdownMsg returns the raw Markdown guidance.
func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// DocLinks returns a copy of the documentation links.
func (i *Issue) DocLinks() []HttpLink { return slices.Clone(i.docLinks) }

// Render renders the guidance with the given glamour style ("dark",
// "light", "notty", ...).
func (i *Issue) Render(style string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- " + string(link) + "\n")
		}
	}
	return render(md.String(), style)
}

var (
	render = glamour.Render

	contextLoadFailedIssue = &Issue{
		id: ContextLoadFailedId,
		mdMsg: `
# The packaged application context could not be loaded

The window list, identifier and permission grants are compiled into the
binary. A failure here means the build shipped a context document that does
not match its schema.

## Things you can try
- Validate the context with the diagnostics tool:
~~~
$ asdf-gui-ctl context validate internal/appctx/context.cue
~~~
- Rebuild the application after fixing the reported field.`,
		docLinks: []HttpLink{"https://cuelang.org/docs/tour/"},
	}

	pluginInitFailedIssue = &Issue{
		id: PluginInitFailedId,
		mdMsg: `
# A capability failed to initialize

The application refuses to start without every capability. Nothing was
shown and no state was modified beyond what the failing capability reports.

## Things you can try
- Check that the application data directory exists and is writable.
- Inspect persisted state with the diagnostics tool:
~~~
$ asdf-gui-ctl store dump settings
$ asdf-gui-ctl scope list
~~~
- Move a corrupted state file aside and start again.`,
	}

	eventLoopStartFailedIssue = &Issue{
		id: EventLoopStartFailedId,
		mdMsg: `
# The windowing system is not available

The event loop could not open its windows.

## Things you can try
- Start the application from a graphical session.
- On Linux, make sure DISPLAY or WAYLAND_DISPLAY is set.`,
	}

	duplicateCapabilityIssue = &Issue{
		id: DuplicateCapabilityId,
		mdMsg: `
# Two plugins claim the same capability

Each capability may be registered once. This is a packaging bug: the
composition registers a plugin twice.`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load the user configuration

Defaults are used instead. Fix the file or remove it.

## Things you can try
- Check the CUE syntax of config.cue in the configuration directory.
- Run ` + "`asdf-gui-ctl env`" + ` to see the effective settings.`,
	}

	shellEnvUnavailableIssue = &Issue{
		id: ShellEnvUnavailableId,
		mdMsg: `
# Could not read the login shell environment

The application keeps running with the environment it was launched with.
Tools installed through shell profiles (asdf shims, for example) may not be
found.

## Things you can try
- Set path_fixup.shell in config.cue to a working shell.
- Add the missing directories to path_fixup.extra.`,
	}

	issues = map[Id]*Issue{
		contextLoadFailedIssue.id:    contextLoadFailedIssue,
		pluginInitFailedIssue.id:     pluginInitFailedIssue,
		eventLoopStartFailedIssue.id: eventLoopStartFailedIssue,
		duplicateCapabilityIssue.id:  duplicateCapabilityIssue,
		configLoadFailedIssue.id:     configLoadFailedIssue,
		shellEnvUnavailableIssue.id:  shellEnvUnavailableIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

// Get returns the entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
