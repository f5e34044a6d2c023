package app

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/agentstation/specgate/internal/config"
)

// Config holds the CLI-level configuration: global flags and logging.
// Gate settings live in internal/config and are loaded per command.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// ConfigFile is an explicit config file path.
	ConfigFile string

	// Logging configuration. LogLevel is the --log-level flag; the
	// environment level only applies when no flag chose one.
	LogLevel    string
	EnvLogLevel string
	LogFormat   string
	LogOutput   string
}

// LoadConfig loads the CLI configuration. Environment variables come from
// the process and from .env files; flags are applied later by
// UpdateFromFlags.
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	return &Config{
		NoColor:     os.Getenv("NO_COLOR") != "",
		Format:      getEnv("FORMAT", ""),
		ConfigFile:  getEnv("CONFIG", ""),
		EnvLogLevel: getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// Flag values take precedence over environment variables.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel, configFile string) {
	c.Verbose = verbose
	c.Quiet = quiet
	if noColor {
		c.NoColor = true
	}
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if configFile != "" {
		c.ConfigFile = configFile
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env; neither overrides the real environment.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnv returns SPECGATE_<key> or the default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(config.EnvPrefix + "_" + key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefault also accepts the unprefixed <key>.
func getEnvOrDefault(key, defaultValue string) string {
	if value := getEnv(key, ""); value != "" {
		return value
	}
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
