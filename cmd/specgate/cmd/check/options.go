// Package check provides the check and repair commands.
package check

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/specgate/internal/config"
)

// Flags holds the check command flags. Empty values keep the configured
// setting.
type Flags struct {
	Repair       bool
	Report       string
	Summary      string
	Changes      string
	Metrics      string
	ReportFormat string
	MaxExamples  int
	NoPublish    bool
}

// addFlags registers the flags shared by check and repair.
func addFlags(cmd *cobra.Command, withRepair bool) *Flags {
	f := &Flags{}
	if withRepair {
		cmd.Flags().BoolVar(&f.Repair, "repair", false, "repair the workbook, then verify again")
	}
	cmd.Flags().StringVar(&f.Report, "report", "", "gate report path (default from config)")
	cmd.Flags().StringVar(&f.Summary, "summary", "", "plain-text summary path (default from config)")
	cmd.Flags().StringVar(&f.Changes, "changes", "", "repair change log path (default from config)")
	cmd.Flags().StringVar(&f.Metrics, "metrics", "", "Prometheus textfile path (disabled by default)")
	cmd.Flags().StringVar(&f.ReportFormat, "report-format", "", "gate report format: json, yaml")
	cmd.Flags().IntVar(&f.MaxExamples, "max-examples", 0, "examples listed per failing check")
	cmd.Flags().BoolVar(&f.NoPublish, "no-publish", false, "do not write the validation-result sheet after a repair")
	return f
}

// Apply overlays the set flags on s and validates the result.
func (f *Flags) Apply(s *config.Settings) error {
	if f.Report != "" {
		s.Report.Path = f.Report
	}
	if f.Summary != "" {
		s.Report.Summary = f.Summary
	}
	if f.Changes != "" {
		s.Report.Changes = f.Changes
	}
	if f.Metrics != "" {
		s.Report.Metrics = f.Metrics
	}
	if f.ReportFormat != "" {
		s.Report.Format = f.ReportFormat
	}
	if f.MaxExamples > 0 {
		s.Report.MaxExamples = f.MaxExamples
	}
	if f.NoPublish {
		s.Repair.Publish = false
	}
	return s.Validate()
}
