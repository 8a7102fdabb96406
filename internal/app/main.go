// SPDX-License-Identifier: MPL-2.0

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"

	"github.com/asdf-gui/asdf-gui/internal/appctx"
	"github.com/asdf-gui/asdf-gui/internal/config"
	"github.com/asdf-gui/asdf-gui/internal/envfix"
	"github.com/asdf-gui/asdf-gui/internal/issue"
	"github.com/asdf-gui/asdf-gui/internal/logging"
	"github.com/asdf-gui/asdf-gui/internal/shell"

	"golang.org/x/term"
)

const (
	// ExitOK is returned after the event loop exits normally.
	ExitOK = 0
	// ExitStartupFailure is returned for every fatal startup error.
	ExitStartupFailure = 1
)

// MainOptions injects the process boundary. The zero value runs the real
// application.
type MainOptions struct {
	// Stderr receives logs and the startup diagnostic. Default os.Stderr.
	Stderr io.Writer
	// Logger replaces the logger Main would install as the slog default.
	Logger *slog.Logger
	// Config loads user settings from ConfigLoad. Default
	// config.NewProvider().
	Config     config.Provider
	ConfigLoad config.LoadOptions
	// Loader produces the static context. Default appctx.Load.
	Loader appctx.Loader
	// Normalize runs the PATH fixup. Default envfix.Normalize.
	Normalize func(context.Context, envfix.Options) error
	// Display is the windowing backend. Nil means the system display.
	Display shell.Display
	// Plugins are registered after the built-in capabilities.
	Plugins []shell.Plugin
	// GuidanceStyle is the glamour style for the diagnostic. Empty picks
	// "dark" when Stderr is a terminal and "notty" otherwise.
	GuidanceStyle string
	// Phase, when set, observes startup progress.
	Phase *PhaseTracker
}

func (o MainOptions) withDefaults() MainOptions {
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Config == nil {
		o.Config = config.NewProvider()
	}
	if o.Loader == nil {
		o.Loader = appctx.Load
	}
	if o.Normalize == nil {
		o.Normalize = envfix.Normalize
	}
	if o.Phase == nil {
		o.Phase = &PhaseTracker{}
	}
	return o
}

func loggingOptions(cfg *config.Config) logging.Options {
	return logging.Options{Level: cfg.LogLevel, Prefix: config.AppName, Timestamps: true}
}

// Main runs the application and returns the process exit code.
func Main(ctx context.Context, opts MainOptions) int {
	o := opts.withDefaults()

	cfg, cfgErr := o.Config.Load(ctx, o.ConfigLoad)
	if cfgErr != nil {
		cfg = config.DefaultConfig()
	}

	logger := o.Logger
	if logger == nil {
		logger = logging.Install(o.Stderr, loggingOptions(cfg))
	}
	if cfgErr != nil {
		logger.Warn("using default settings", "error", cfgErr)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The static context is loaded once; its search path feeds the
	// normalizer and the runner reuses the result.
	load := sync.OnceValues(o.Loader)

	if err := o.Phase.Advance(PhaseNormalizing); err != nil {
		return fail(o, logger, err)
	}
	if cfg.PathFixup.Enabled {
		fixup := envfix.Options{
			Shell:   cfg.PathFixup.Shell,
			Timeout: cfg.PathFixup.Timeout,
			Extra:   slices.Clone(cfg.PathFixup.Extra),
		}
		if static, err := load(); err == nil {
			fixup.Extra = append(fixup.Extra, static.SearchPath.Extra...)
		}
		if err := o.Normalize(ctx, fixup); err != nil {
			logger.Debug("PATH fixup skipped", "error", err)
		}
	}

	if err := o.Phase.Advance(PhaseComposing); err != nil {
		return fail(o, logger, err)
	}
	b, err := Compose(ComposeOptions{
		Display: o.Display,
		Logger:  logger,
		DataDir: cfg.DataDir,
		Plugins: o.Plugins,
	})
	if err != nil {
		return fail(o, logger, err)
	}

	code, err := run(ctx, b, load, o.Phase)
	if err != nil {
		return fail(o, logger, err)
	}
	logger.Info("application exited", "code", code)
	return code
}

func fail(o MainOptions, logger *slog.Logger, err error) int {
	o.Phase.Fail(err)
	logger.Debug("startup failed", "phase", o.Phase.Phase(), "error", err)
	writeDiagnostic(o.Stderr, err, o.guidanceStyle())
	return ExitStartupFailure
}

func (o MainOptions) guidanceStyle() string {
	if o.GuidanceStyle != "" {
		return o.GuidanceStyle
	}
	if f, ok := o.Stderr.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "dark"
	}
	return "notty"
}

// Diagnose converts a startup error into an actionable error pointing at
// the matching issue catalog entry.
func Diagnose(err error) *issue.ActionableError {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae
	}

	ec := issue.NewErrorContext().Wrap(err)
	var (
		dup     *shell.DuplicateCapabilityError
		loadErr *shell.ContextLoadError
		initErr *shell.PluginInitError
		loopErr *shell.EventLoopStartError
	)
	switch {
	case errors.As(err, &dup):
		ec.WithOperation("compose application").
			WithResource(string(dup.Capability)).
			WithIssue(issue.DuplicateCapabilityId)
	case errors.As(err, &loadErr):
		ec.WithOperation("load static context").
			WithIssue(issue.ContextLoadFailedId).
			WithSuggestion("Run `asdf-gui-ctl context show` to inspect the packaged context")
	case errors.As(err, &initErr):
		ec.WithOperation("initialize plugin").
			WithResource(string(initErr.Capability)).
			WithIssue(issue.PluginInitFailedId).
			WithSuggestion("Check the files in the application data directory")
	case errors.As(err, &loopErr):
		ec.WithOperation("start event loop").
			WithResource(loopErr.Window).
			WithIssue(issue.EventLoopStartFailedId)
	default:
		ec.WithOperation("start application")
	}
	return ec.Build()
}

func writeDiagnostic(w io.Writer, err error, style string) {
	ae := Diagnose(err)
	fmt.Fprintln(w, ae.Format(false))

	entry := issue.Get(ae.IssueID)
	if entry == nil {
		return
	}
	guidance, renderErr := entry.Render(style)
	if renderErr != nil {
		slog.Debug("failed to render guidance", "error", renderErr)
		return
	}
	fmt.Fprint(w, guidance)
}
