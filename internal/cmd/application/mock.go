// Package application provides a test double for the command application
// interface.
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/specgate/cmd/application"
	"github.com/agentstation/specgate/internal/config"
)

// Mock implements application.Application with overridable functions.
// A nil function yields default settings, a no-op logger or "table".
type Mock struct {
	SettingsFunc     func(root string) (*config.Settings, error)
	LoggerFunc       func() *zerolog.Logger
	RunIDFunc        func() string
	OutputFormatFunc func() string
	ColorFunc        func() bool
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Settings returns settings using the mock function or the built-in
// defaults anchored at root.
func (m *Mock) Settings(root string) (*config.Settings, error) {
	if m.SettingsFunc != nil {
		return m.SettingsFunc(root)
	}
	return config.Defaults(root)
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// RunID returns the run ID using the mock function or "test-run".
func (m *Mock) RunID() string {
	if m.RunIDFunc != nil {
		return m.RunIDFunc()
	}
	return "test-run"
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Color returns the colour setting using the mock function or false.
func (m *Mock) Color() bool {
	if m.ColorFunc != nil {
		return m.ColorFunc()
	}
	return false
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

var _ application.Application = (*Mock)(nil)
