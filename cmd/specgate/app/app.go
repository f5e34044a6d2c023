// Package app provides the application context and dependency management
// for the specgate CLI: configuration, logging and build information are
// created once and handed to every command.
package app

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentstation/specgate/internal/config"
	"github.com/agentstation/specgate/pkg/errors"
)

// App represents the specgate application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
	runID  string
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		runID:   uuid.NewString(),
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, errors.NewConfigError("app", "load config", err)
	}
	app.config = cfg

	logger := NewLogger(cfg)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// RunID returns the ID attached to every log line of this invocation.
func (a *App) RunID() string {
	return a.runID
}

// OutputFormat returns the --format value, empty when unset.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Color reports whether console output may be coloured. fatih/color
// already turns colour off for NO_COLOR and non-terminal stdout.
func (a *App) Color() bool {
	return !a.config.NoColor && !color.NoColor
}

// Settings loads the gate settings. The config file is looked up in the
// container root, then in $HOME, unless --config names one. A non-empty
// root overrides the configured root.
func (a *App) Settings(root string) (*config.Settings, error) {
	dir := root
	if dir == "" {
		dir = "."
	}
	dirs := []string{dir}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}

	v := config.New(a.config.ConfigFile, dirs...)
	if err := config.ReadConfig(v); err != nil {
		return nil, err
	}
	if root != "" {
		v.Set(config.KeyRoot, root)
	}
	s, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	if used := v.ConfigFileUsed(); used != "" {
		a.logger.Debug().Str("file", used).Msg("Config file loaded")
	}
	return s, nil
}

// Shutdown releases application resources. The gate holds none between
// runs, so this only flushes a final log line.
func (a *App) Shutdown(_ context.Context) error {
	a.logger.Debug().Str("run_id", a.runID).Msg("Shutdown")
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(cfg *Config) Option {
	return func(a *App) error {
		a.config = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
