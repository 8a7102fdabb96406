// SPDX-License-Identifier: MPL-2.0

package envfix

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/asdf-gui/asdf-gui/internal/platform"

	"golang.org/x/term"
	"mvdan.cc/sh/v3/shell"
)

// DefaultTimeout bounds the login shell query.
const DefaultTimeout = 5 * time.Second

type (
	// Options configures Normalize. The zero value targets the running
	// process.
	Options struct {
		// Shell overrides $SHELL.
		Shell string
		// Timeout bounds the shell query. Zero means DefaultTimeout.
		Timeout time.Duration
		// Extra entries are appended after the shell's PATH. $VAR and ~/
		// are expanded against the login shell environment.
		Extra []string
		// Force runs the fixup even when started from a terminal.
		Force bool

		GOOS        string
		Getenv      func(string) string
		Setenv      func(key, value string) error
		Interactive func() bool
		Query       QueryFunc
	}

	// Report describes what Normalize did or would do.
	Report struct {
		Shell   string
		Skipped string
		Before  string
		After   string
		Added   []string
	}
)

// Changed reports whether PATH differs after the fixup.
func (r Report) Changed() bool {
	return r.Skipped == "" && r.Before != r.After
}

func (o Options) withDefaults() Options {
	if o.GOOS == "" {
		o.GOOS = runtime.GOOS
	}
	if o.Getenv == nil {
		o.Getenv = os.Getenv
	}
	if o.Setenv == nil {
		o.Setenv = os.Setenv
	}
	if o.Interactive == nil {
		o.Interactive = stdinIsTerminal
	}
	if o.Query == nil {
		o.Query = QueryLoginShell
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Shell == "" {
		o.Shell = o.Getenv("SHELL")
	}
	if o.Shell == "" {
		o.Shell = "/bin/sh"
	}
	return o
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Normalize merges the login shell's PATH into the process PATH when the
// process was not started from an interactive terminal. Running it again
// leaves PATH unchanged. On error PATH has not been modified.
func Normalize(ctx context.Context, opts Options) error {
	o := opts.withDefaults()

	report, err := diagnose(ctx, o)
	if err != nil {
		return err
	}
	if !report.Changed() {
		slog.Debug("PATH fixup not needed", "skipped", report.Skipped)
		return nil
	}

	if err := o.Setenv("PATH", report.After); err != nil {
		return &FixupError{Op: "set PATH", Err: err}
	}
	slog.Debug("PATH fixed from login shell", "shell", report.Shell, "added", len(report.Added))
	return nil
}

// Diagnose computes the fixup without writing PATH.
func Diagnose(ctx context.Context, opts Options) (Report, error) {
	return diagnose(ctx, opts.withDefaults())
}

func diagnose(ctx context.Context, o Options) (Report, error) {
	report := Report{Shell: o.Shell, Before: o.Getenv("PATH")}
	report.After = report.Before

	switch {
	case o.GOOS == platform.Windows:
		report.Skipped = "windows inherits PATH from the registry"
		return report, nil
	case !o.Force && o.Interactive():
		report.Skipped = "launched from an interactive terminal"
		return report, nil
	}

	qctx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	out, err := o.Query(qctx, o.Shell)
	if err != nil {
		return report, &FixupError{Op: "query shell", Shell: o.Shell, Err: err}
	}

	shellEnv, err := parseShellEnv(out)
	if err != nil {
		return report, &FixupError{Op: "parse shell output", Shell: o.Shell, Err: err}
	}
	shellPath, ok := shellEnv["PATH"]
	if !ok || shellPath == "" {
		return report, &FixupError{Op: "parse shell output", Shell: o.Shell, Err: ErrNoPath}
	}

	lookup := func(name string) string {
		if v, ok := shellEnv[name]; ok {
			return v
		}
		return o.Getenv(name)
	}

	sep := listSeparator(o.GOOS)
	report.After, report.Added = mergePath(report.Before, shellPath, expandAll(o.Extra, lookup), sep)
	return report, nil
}

// mergePath returns shell entries, then current entries, then extras, each
// entry kept once (first occurrence wins) and empty entries dropped.
func mergePath(current, shellPath string, extra []string, sep string) (string, []string) {
	var (
		merged []string
		seen   = make(map[string]struct{})
	)
	add := func(entry string) bool {
		if entry == "" {
			return false
		}
		key := filepath.Clean(entry)
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		merged = append(merged, entry)
		return true
	}

	before := splitList(current, sep)
	for _, e := range splitList(shellPath, sep) {
		add(e)
	}
	for _, e := range before {
		add(e)
	}
	for _, e := range extra {
		add(e)
	}

	var added []string
	for _, e := range merged {
		if !slices.ContainsFunc(before, func(b string) bool { return filepath.Clean(b) == filepath.Clean(e) }) {
			added = append(added, e)
		}
	}
	return strings.Join(merged, sep), added
}

func expandAll(entries []string, lookup func(string) string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if rest, ok := strings.CutPrefix(e, "~/"); ok {
			e = "$HOME/" + rest
		}
		expanded, err := shell.Expand(e, lookup)
		if err != nil {
			slog.Debug("ignoring search path entry", "entry", e, "error", err)
			continue
		}
		out = append(out, expanded)
	}
	return out
}

func splitList(s, sep string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, sep)
}

func listSeparator(goos string) string {
	if goos == platform.Windows {
		return ";"
	}
	return ":"
}
