// Package config holds the gate settings and loads them through viper.
//
// Settings come from, in increasing precedence: built-in defaults, the
// .specgate.yaml config file, SPECGATE_* environment variables (including
// those loaded from .env files) and command-line flags bound by the CLI.
package config

import (
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/agentstation/specgate/internal/discovery"
	"github.com/agentstation/specgate/pkg/constants"
	"github.com/agentstation/specgate/pkg/errors"
	"github.com/agentstation/specgate/pkg/grammar"
	"github.com/agentstation/specgate/pkg/report"
	"github.com/agentstation/specgate/pkg/scanner"
)

// EnvPrefix prefixes every environment variable the gate reads.
const EnvPrefix = "SPECGATE"

// Keys shared with the CLI flag bindings.
const (
	KeyRoot          = "root"
	KeyWorkbook      = "workbook"
	KeyReportPath    = "report.path"
	KeyReportSummary = "report.summary"
	KeyReportChanges = "report.changes"
	KeyReportMetrics = "report.metrics"
	KeyReportFormat  = "report.format"
	KeyMaxExamples   = "report.max_examples"
	KeyScanMaxRow    = "scan.max_row"
	KeyScanMaxCol    = "scan.max_col"
	KeyHardClasses   = "gate.hard_classes"
	KeyHardRules     = "gate.hard_rules"
	KeySoftRules     = "gate.soft_rules"
	KeyPublish       = "repair.publish"
	KeyNormalize     = "repair.normalize"
)

// Settings is the complete gate configuration.
type Settings struct {
	Root     string                   `mapstructure:"root" json:"root" yaml:"root"`
	Workbook string                   `mapstructure:"workbook" json:"workbook" yaml:"workbook"`
	Sources  discovery.SourcePatterns `mapstructure:"sources" json:"sources" yaml:"sources"`
	Report   ReportSettings           `mapstructure:"report" json:"report" yaml:"report"`
	Scan     scanner.Bounds           `mapstructure:"scan" json:"scan" yaml:"scan"`
	Gate     report.Policy            `mapstructure:"gate" json:"gate" yaml:"gate"`
	Repair   RepairSettings           `mapstructure:"repair" json:"repair" yaml:"repair"`
}

// ReportSettings locate the outputs. Empty Changes or Metrics disables
// that output. Relative paths are resolved against Root.
type ReportSettings struct {
	Path        string `mapstructure:"path" json:"path" yaml:"path"`
	Summary     string `mapstructure:"summary" json:"summary" yaml:"summary"`
	Changes     string `mapstructure:"changes" json:"changes" yaml:"changes"`
	Metrics     string `mapstructure:"metrics" json:"metrics" yaml:"metrics"`
	Format      string `mapstructure:"format" json:"format" yaml:"format"`
	MaxExamples int    `mapstructure:"max_examples" json:"max_examples" yaml:"max_examples"`
}

// RepairSettings tune the repair engine.
type RepairSettings struct {
	// Publish writes the validation-result sheet after a repair.
	Publish bool `mapstructure:"publish" json:"publish" yaml:"publish"`
	// Normalize replaces the default terminology rules when set.
	Normalize []grammar.Term `mapstructure:"normalize" json:"normalize" yaml:"normalize"`
}

// SetDefaults registers the built-in defaults on v. Every key needs a
// default for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	policy := report.DefaultPolicy()
	classes := make([]string, len(policy.HardClasses))
	for i, c := range policy.HardClasses {
		classes[i] = string(c)
	}

	v.SetDefault(KeyRoot, ".")
	v.SetDefault(KeyWorkbook, constants.DefaultWorkbook)
	v.SetDefault("sources.requirements", constants.DefaultRequirements)
	v.SetDefault("sources.features", constants.DefaultFeatures)
	v.SetDefault("sources.api", constants.DefaultAPICatalog)
	v.SetDefault("sources.db", constants.DefaultDBCatalog)
	v.SetDefault(KeyReportPath, constants.DefaultReportPath)
	v.SetDefault(KeyReportSummary, constants.DefaultSummaryPath)
	v.SetDefault(KeyReportChanges, constants.DefaultChangesPath)
	v.SetDefault(KeyReportMetrics, "")
	v.SetDefault(KeyReportFormat, string(report.FormatJSON))
	v.SetDefault(KeyMaxExamples, constants.MaxExamples)
	v.SetDefault(KeyScanMaxRow, constants.ScanMaxRow)
	v.SetDefault(KeyScanMaxCol, constants.ScanMaxCol)
	v.SetDefault(KeyHardClasses, classes)
	v.SetDefault(KeyHardRules, []string{})
	v.SetDefault(KeySoftRules, []string{})
	v.SetDefault(KeyPublish, true)
}

// New returns a viper instance with defaults and SPECGATE_* environment
// binding, searching for .specgate.yaml in dirs.
func New(configFile string, dirs ...string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		return v
	}
	v.SetConfigName(constants.DefaultConfigName)
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}
	return v
}

// ReadConfig reads the config file. A missing file is fine unless it was
// named explicitly.
func ReadConfig(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return errors.NewConfigError("config", "read "+v.ConfigFileUsed(), err)
}

// Defaults returns the built-in settings with environment overrides and no
// config file, anchored at root when root is set.
func Defaults(root string) (*Settings, error) {
	v := New("")
	if root != "" {
		v.Set(KeyRoot, root)
	}
	return Load(v)
}

// Load unmarshals and validates the settings held by v.
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.NewConfigError("config", "decode settings", err)
	}
	// Environment lists arrive as a single comma or space separated value.
	s.Gate.HardClasses = splitList(s.Gate.HardClasses)
	s.Gate.HardRules = splitList(s.Gate.HardRules)
	s.Gate.SoftRules = splitList(s.Gate.SoftRules)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every section.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.Workbook) == "" {
		return errors.NewValidationError(KeyWorkbook, s.Workbook, "must not be empty")
	}
	if s.Report.Path == "" {
		return errors.NewValidationError(KeyReportPath, s.Report.Path, "must not be empty")
	}
	if _, err := report.ParseFormat(s.Report.Format); err != nil {
		return errors.WrapValidation(KeyReportFormat, err)
	}
	if s.Report.MaxExamples < 1 {
		return errors.NewValidationError(KeyMaxExamples, s.Report.MaxExamples, "must be positive")
	}
	if err := s.Scan.Validate(); err != nil {
		return err
	}
	if err := s.Gate.Validate(); err != nil {
		return err
	}
	if _, err := s.Terminology(); err != nil {
		return err
	}
	return nil
}

// Patterns returns the document locations for discovery.
func (s *Settings) Patterns() discovery.Patterns {
	return discovery.Patterns{Workbook: s.Workbook, Sources: s.Sources}
}

// Terminology compiles the normalization rules, falling back to the
// standard rules when none are configured.
func (s *Settings) Terminology() (*grammar.Terminology, error) {
	terms := s.Repair.Normalize
	if len(terms) == 0 {
		terms = grammar.DefaultTerms
	}
	t, err := grammar.NewTerminology(terms)
	if err != nil {
		return nil, errors.WrapValidation(KeyNormalize, err)
	}
	return t, nil
}

// Resolve anchors a relative output path at Root. Empty stays empty.
func (s *Settings) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.Root, path)
}

// Format returns the parsed report format.
func (s *Settings) Format() report.Format {
	f, _ := report.ParseFormat(s.Report.Format)
	return f
}

// SummaryOptions returns the summary bounds.
func (s *Settings) SummaryOptions() report.SummaryOptions {
	opts := report.DefaultSummaryOptions()
	opts.MaxExamples = s.Report.MaxExamples
	return opts
}

func splitList[T ~string](in []T) []T {
	out := []T{}
	for _, item := range in {
		for _, f := range strings.FieldsFunc(string(item), func(r rune) bool { return r == ',' || r == ' ' }) {
			out = append(out, T(f))
		}
	}
	return out
}
