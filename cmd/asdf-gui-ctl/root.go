// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/asdf-gui/asdf-gui/internal/appctx"
	"github.com/asdf-gui/asdf-gui/internal/config"
	"github.com/asdf-gui/asdf-gui/internal/envfix"
	"github.com/asdf-gui/asdf-gui/internal/issue"
	"github.com/asdf-gui/asdf-gui/internal/platform"

	"github.com/spf13/cobra"
)

type (
	// App carries the services every command uses. Tests replace them
	// through Dependencies.
	App struct {
		Config   config.Provider
		Loader   appctx.Loader
		Dirs     platform.Dirs
		Diagnose func(context.Context, envfix.Options) (envfix.Report, error)
		stdout   io.Writer
		stderr   io.Writer

		flags globalFlags
	}

	// Dependencies are the injection points of NewApp. Nil fields get
	// production defaults.
	Dependencies struct {
		Config   config.Provider
		Loader   appctx.Loader
		Dirs     *platform.Dirs
		Diagnose func(context.Context, envfix.Options) (envfix.Report, error)
		Stdout   io.Writer
		Stderr   io.Writer
	}

	globalFlags struct {
		configFile string
		dataDir    string
		verbose    bool
	}
)

// NewApp builds an App, filling omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Loader == nil {
		deps.Loader = appctx.Load
	}
	if deps.Diagnose == nil {
		deps.Diagnose = envfix.Diagnose
	}
	dirs := platform.HostDirs()
	if deps.Dirs != nil {
		dirs = *deps.Dirs
	}
	return &App{
		Config:   deps.Config,
		Loader:   deps.Loader,
		Dirs:     dirs,
		Diagnose: deps.Diagnose,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
	}
}

func newRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "asdf-gui-ctl",
		Short: "Diagnostics for the asdf GUI desktop shell",
		Long: TitleStyle.Render("asdf-gui-ctl") + SubtitleStyle.Render(" - diagnostics for the asdf GUI desktop shell") + `

Inspects the packaged application context, previews the PATH fixup the
shell performs at startup, and reads the state kept by its plugins.

` + SubtitleStyle.Render("Examples:") + `
  asdf-gui-ctl context show            Show the packaged context
  asdf-gui-ctl context validate FILE   Validate a context document
  asdf-gui-ctl env                     Preview the PATH fixup
  asdf-gui-ctl store dump settings     Print a key-value store
  asdf-gui-ctl scope list              Print persisted scope grants
  asdf-gui-ctl commands                List plugin commands
  asdf-gui-ctl issues 2                Explain a startup failure`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&app.flags.configFile, "config", "", "config file (default is <config dir>/asdf-gui/config.cue)")
	pf.StringVar(&app.flags.dataDir, "data-dir", "", "override the application data directory")
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "show the full error chain")

	root.AddCommand(
		newContextCommand(app),
		newEnvCommand(app),
		newStoreCommand(app),
		newScopeCommand(app),
		newCommandsCommand(app),
		newIssuesCommand(app),
		newVersionCommand(app),
	)
	return root
}

// loadConfig loads user settings, warning and falling back to defaults on
// failure like the shell itself does.
func (a *App) loadConfig(ctx context.Context) *config.Config {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.flags.configFile})
	if err != nil {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, a.flags.verbose))
		return config.DefaultConfig()
	}
	return cfg
}

// loadContext wraps static context failures with catalog guidance.
func (a *App) loadContext() (*appctx.Context, error) {
	static, err := a.Loader()
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load static context").
			WithIssue(issue.ContextLoadFailedId).
			Wrap(err).
			BuildError()
	}
	return static, nil
}

// dataDir resolves the directory plugins keep their state in: --data-dir,
// then data_dir from the config file, then the platform default.
func (a *App) dataDir(ctx context.Context, static *appctx.Context) (string, error) {
	if a.flags.dataDir != "" {
		return a.flags.dataDir, nil
	}
	if cfg := a.loadConfig(ctx); cfg.DataDir != "" {
		return cfg.DataDir, nil
	}
	return a.Dirs.DataDir(static.Identifier)
}

// formatErrorForDisplay uses ActionableError formatting when available.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

func newVersionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(app.stdout, "%s %s\n", TitleStyle.Render("asdf-gui-ctl"), getVersionString())
			if static, err := app.Loader(); err == nil {
				fmt.Fprintf(app.stdout, "%s %s\n", KeyStyle.Render(static.ProductName), static.Version)
			}
			return nil
		},
	}
}
