package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/specgate/pkg/constants"
)

// Config describes the logger the CLI builds for one gate run.
type Config struct {
	// Level is the minimum level: trace, debug, info, warn, error or off.
	Level string

	// Format is auto, json or console. Auto picks console on a terminal.
	Format string

	// Output is stderr, stdout, discard or a file path to append to.
	Output string

	NoColor   bool
	AddCaller bool
}

// NewLoggerFromConfig builds a logger and sets the global level to match.
// A nil config logs info and above to stderr.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = &Config{}
	}
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	out, terminal := openOutput(cfg.Output)
	ctx := zerolog.New(formatWriter(out, cfg.Format, terminal, cfg.NoColor)).
		Level(level).
		With().
		Timestamp()
	if cfg.AddCaller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// openOutput resolves the output name. An unopenable file falls back to
// stderr so a bad log path never aborts a gate run.
func openOutput(name string) (io.Writer, bool) {
	switch strings.ToLower(name) {
	case "", "stderr":
		return os.Stderr, stderrIsTerminal()
	case "stdout":
		return os.Stdout, false
	case "discard", "none":
		return io.Discard, false
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return os.Stderr, stderrIsTerminal()
	}
	return f, false
}

func formatWriter(out io.Writer, format string, terminal, noColor bool) io.Writer {
	switch strings.ToLower(format) {
	case "console", "pretty":
	case "", "auto":
		if !terminal {
			return out
		}
	default:
		return out
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: noColor}
}

// parseLevel accepts zerolog's names plus warning and off. Unknown names
// mean info.
func parseLevel(level string) zerolog.Level {
	switch l := strings.ToLower(level); l {
	case "", "info":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "off", "none", "disabled":
		return zerolog.Disabled
	default:
		if parsed, err := zerolog.ParseLevel(l); err == nil {
			return parsed
		}
		return zerolog.InfoLevel
	}
}
