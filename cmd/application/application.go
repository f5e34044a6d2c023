// Package application provides the application interface for specgate commands.
//
// Commands accept this interface rather than the concrete App type so they
// can be exercised with a mock in tests:
//
//	mock := &application.Mock{
//	    SettingsFunc: func(root string) (*config.Settings, error) {
//	        return testSettings, nil
//	    },
//	}
//	cmd := check.NewCommand(mock)
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/specgate/internal/config"
)

// Application provides what commands need from the CLI layer.
type Application interface {
	// Settings loads the gate settings for the container at root. An empty
	// root keeps the configured one.
	Settings(root string) (*config.Settings, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// RunID identifies this invocation in logs.
	RunID() string

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Color reports whether console output may use ANSI colours.
	Color() bool

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
