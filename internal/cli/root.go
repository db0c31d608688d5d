// Package cli implements the modalkeys command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dshills/modalkeys/internal/config"
	"github.com/dshills/modalkeys/internal/logging"
)

// BuildInfo is set from main via ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// App holds what the subcommands share: the loaded configuration and
// the logger built from it.
type App struct {
	Build   BuildInfo
	Manager *config.Manager
	Config  *config.Config
	Logger  zerolog.Logger

	configFile string
	logLevel   string
	closer     io.Closer
}

// newRootCommand builds the command tree and the App its commands share.
func newRootCommand(info BuildInfo) (*cobra.Command, *App) {
	// Until the config is loaded, log as MODALKEYS_LOG_* says.
	app := &App{Build: info, Logger: logging.NewFromEnv()}

	root := &cobra.Command{
		Use:   "modalkeys",
		Short: "Vim-style modal keystroke engine",
		Long: `modalkeys turns raw key and mouse events into modal commands.

Bindings are organized by mode (normal, insert, hints). In normal mode a
numeric count may precede a binding; unbound keys are handed back to the
host in their original order.

Use 'modalkeys run' to try the engine in a terminal, 'modalkeys keys' to
list the effective bindings and 'modalkeys normalize' to see how a key
specification is tokenized.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&app.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/modalkeys/config.yaml)")
	root.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	root.AddCommand(
		newRunCommand(app),
		newKeysCommand(app),
		newNormalizeCommand(),
		newSchemaCommand(),
		newVersionCommand(app),
	)
	return root, app
}

// Execute runs the command line and exits non-zero on error.
func Execute(info BuildInfo) {
	if err := run(newRootCommand(info)); err != nil {
		os.Exit(1)
	}
}

// run executes root and closes the log file whether or not the command
// failed.
func run(root *cobra.Command, app *App) error {
	defer app.Close()
	return root.Execute()
}

// load reads the configuration and builds the logger. logFile sends the
// log to a file so it does not draw over a full-screen host.
func (a *App) load(logFile bool) error {
	opts := []config.Option{config.WithLogger(a.Logger)}
	if a.configFile != "" {
		opts = append(opts, config.WithFile(a.configFile))
	}
	m, err := config.NewManager(opts...)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		m.Set("logging.level", a.logLevel)
	}
	if err := m.Load(); err != nil {
		return err
	}
	cfg := m.Get()

	logCfg, err := cfg.Logging.LoggerConfig()
	if err != nil {
		return err
	}
	if logFile && logCfg.File == "" {
		if logCfg.File, err = config.DefaultLogFile(); err != nil {
			return err
		}
	}
	logger, closer, err := logging.Open(logCfg)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}

	a.Manager, a.Config, a.Logger, a.closer = m, cfg, logger, closer
	return nil
}

// Close closes the log file, if any.
func (a *App) Close() {
	if a.closer != nil {
		_ = a.closer.Close()
		a.closer = nil
	}
}
