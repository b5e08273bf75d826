// Package cli provides the drawcal command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/drawcal"
	"github.com/felixgeelhaar/drawcal/domain/config"
	infraconfig "github.com/felixgeelhaar/drawcal/infrastructure/config"
	"github.com/felixgeelhaar/drawcal/infrastructure/logging"
)

// Version information, overridable at build time.
var (
	Version   = drawcal.Version
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App represents the CLI application.
type App struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
}

// New creates a new CLI application.
func New() *App {
	app := &App{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	app.root = &cobra.Command{
		Use:   "drawcal",
		Short: "Pattern search over the weekly draw calendar",
		Long: `drawcal searches the weekly draw calendar for records whose session codes
satisfy a named relation and returns the four-week window around every match.

Searches run against SQLite, PostgreSQL or an in-memory fixture, and can be
served over HTTP with "drawcal serve".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if app.logLevel != "" {
				cfg := logging.DefaultConfig()
				cfg.Level = app.logLevel
				cfg.Output = app.stderr
				logging.Init(cfg)
			}
		},
	}

	app.root.PersistentFlags().StringVarP(&app.configPath, "config", "c", "", "Path to configuration file (YAML or JSON)")
	app.root.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	app.root.AddCommand(
		app.newVersionCmd(),
		app.newServeCmd(),
		app.newSearchCmd(),
		app.newRelationsCmd(),
		app.newCalendarCmd(),
		app.newWeeksCmd(),
		app.newImportCmd(),
		app.newValidateCmd(),
	)

	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

// loadConfig reads the --config file, or returns the defaults.
func (a *App) loadConfig() (*config.ServiceConfig, error) {
	if a.configPath == "" {
		cfg := config.Default()
		return &cfg, nil
	}
	cfg, err := infraconfig.NewLoader().LoadFile(a.configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

// newVersionCmd creates the version command.
func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(a.stdout, "drawcal version %s\n", Version)
			_, _ = fmt.Fprintf(a.stdout, "  Git commit: %s\n", GitCommit)
			_, _ = fmt.Fprintf(a.stdout, "  Build date: %s\n", BuildDate)
		},
	}
}
