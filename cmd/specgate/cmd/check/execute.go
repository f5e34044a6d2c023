package check

import (
	"context"
	"fmt"
	"io"

	"github.com/agentstation/specgate/cmd/application"
	"github.com/agentstation/specgate/internal/cmd/emoji"
	"github.com/agentstation/specgate/internal/config"
	"github.com/agentstation/specgate/internal/discovery"
	"github.com/agentstation/specgate/pkg/catalog"
	"github.com/agentstation/specgate/pkg/checker"
	"github.com/agentstation/specgate/pkg/gate"
	"github.com/agentstation/specgate/pkg/logging"
	"github.com/agentstation/specgate/pkg/repair"
	"github.com/agentstation/specgate/pkg/report"
	"github.com/agentstation/specgate/pkg/tabular/xlsx"
)

// NewGate builds the gate for the resolved documents.
func NewGate(s *config.Settings, docs discovery.Documents) (*gate.Gate, error) {
	terms, err := s.Terminology()
	if err != nil {
		return nil, err
	}
	return gate.New(
		catalog.NewLoader(docs.Sources),
		xlsx.NewStore(docs.Workbook),
		gate.WithPolicy(s.Gate),
		gate.WithChecker(checker.New(checker.WithBounds(s.Scan), checker.WithTerminology(terms))),
		gate.WithRepairEngine(repair.New(repair.WithTerminology(terms))),
		gate.WithPublish(s.Repair.Publish),
	), nil
}

// Execute runs one gate pass for the container at root, writes the
// configured outputs and prints the summary to w. Fatal errors return
// before anything is written.
func Execute(ctx context.Context, app application.Application, root string, flags *Flags, w io.Writer) (*gate.Result, error) {
	s, err := app.Settings(root)
	if err != nil {
		return nil, err
	}
	if err := flags.Apply(s); err != nil {
		return nil, err
	}

	ctx = logging.WithLogger(ctx, app.Logger())
	ctx = logging.WithRunID(ctx, app.RunID())
	log := logging.FromContext(ctx)

	docs, err := discovery.Resolve(s.Root, s.Patterns())
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("workbook", docs.Workbook).
		Str("requirements", docs.Sources.Requirements).
		Str("api", docs.Sources.API).
		Str("db", docs.Sources.DB).
		Msg("Documents resolved")

	g, err := NewGate(s, docs)
	if err != nil {
		return nil, err
	}

	var res *gate.Result
	if flags.Repair {
		res, err = g.Repair(ctx)
	} else {
		res, err = g.Check(ctx)
	}
	if err != nil {
		return nil, err
	}

	if err := WriteOutputs(ctx, s, res); err != nil {
		return nil, err
	}

	opts := s.SummaryOptions()
	opts.Color = app.Color()
	if err := report.WriteSummary(w, res.Document, opts); err != nil {
		return nil, err
	}
	fmt.Fprintln(w, Verdict(res))
	return res, nil
}

// WriteOutputs writes the report, the summary file, and when configured
// the change log and the metrics textfile.
func WriteOutputs(ctx context.Context, s *config.Settings, res *gate.Result) error {
	logger := logging.FromContext(logging.WithPhase(ctx, "emit"))

	path := s.Resolve(s.Report.Path)
	if err := report.Write(path, res.Document, s.Format()); err != nil {
		return err
	}
	logger.Info().Str("path", path).Msg("Report written")

	if p := s.Resolve(s.Report.Summary); p != "" {
		if err := report.WriteSummaryFile(p, res.Document, s.SummaryOptions()); err != nil {
			return err
		}
		logger.Debug().Str("path", p).Msg("Summary written")
	}
	if p := s.Resolve(s.Report.Changes); p != "" && res.Changes != nil {
		if err := report.Write(p, res.Changes, report.FormatFor(p)); err != nil {
			return err
		}
		logger.Info().Str("path", p).Int("entries", len(res.Changes.Entries)).Msg("Change log written")
	}
	if p := s.Resolve(s.Report.Metrics); p != "" {
		if err := report.WriteMetrics(p, res.Document, res.Changes); err != nil {
			return err
		}
		logger.Debug().Str("path", p).Msg("Metrics written")
	}
	return nil
}

// Verdict is the one-line result printed after the summary.
func Verdict(res *gate.Result) string {
	d := res.Document
	switch {
	case d.HardFailCount > 0:
		return fmt.Sprintf("%s gate failed: %d hard-gating check(s) failed", emoji.Error, d.HardFailCount)
	case d.FailCount > 0:
		return fmt.Sprintf("%s gate passed with %d non-gating failure(s)", emoji.Warning, d.FailCount)
	default:
		return fmt.Sprintf("%s gate passed", emoji.Success)
	}
}
