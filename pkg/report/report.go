// Package report serializes gate reports, writes the plain-text summary,
// the repair change log and the metrics textfile, and turns a report into
// the process exit signal.
//
// Every output is rebuilt from scratch on each run and written atomically
// to a fixed path. Identical input yields byte-identical output: reports
// carry no timestamps or run IDs, and every list is sorted upstream.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/specgate/internal/utils/fsutil"
	"github.com/agentstation/specgate/pkg/checker"
	"github.com/agentstation/specgate/pkg/errors"
	"github.com/agentstation/specgate/pkg/repair"
	"github.com/agentstation/specgate/pkg/tabular"
)

// Format is a serialization format.
type Format string

// Serialization formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates s. The empty string means FormatJSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", errors.NewValidationError("report.format", s, "must be json or yaml")
	}
}

// FormatFor picks the format from the extension of path.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Document is the structured gate report.
type Document struct {
	Status   checker.Status `json:"status" yaml:"status"`
	Repaired bool           `json:"repaired" yaml:"repaired"`
	Policy   Policy         `json:"policy" yaml:"policy"`

	checker.Report `yaml:",inline"`
}

// NewDocument applies p to r and wraps the result.
func NewDocument(r *checker.Report, p Policy, repaired bool) Document {
	p.Apply(r)
	status := checker.StatusPass
	if r.HardFailCount > 0 {
		status = checker.StatusFail
	}
	return Document{Status: status, Repaired: repaired, Policy: p, Report: *r}
}

// Changes is the repair change log.
type Changes struct {
	Workbook     string         `json:"workbook" yaml:"workbook"`
	SheetsAdded  int            `json:"sheets_added" yaml:"sheets_added"`
	CellsChanged int            `json:"cells_changed" yaml:"cells_changed"`
	Entries      []repair.Entry `json:"entries" yaml:"entries"`
}

// NewChanges merges the entries and op counts of plans.
func NewChanges(workbook string, plans ...*repair.Plan) Changes {
	c := Changes{Workbook: workbook, Entries: []repair.Entry{}}
	for _, p := range plans {
		if p == nil {
			continue
		}
		sheets, cells := tabular.Summary(p.Ops)
		c.SheetsAdded += sheets
		c.CellsChanged += cells
		c.Entries = append(c.Entries, p.Entries...)
	}
	return c
}

// Encode writes v to w in format. JSON uses two-space indentation and a
// trailing newline; HTML characters are not escaped.
func Encode(w io.Writer, v any, format Format) error {
	switch format {
	case FormatYAML:
		data, err := yaml.MarshalWithOptions(v, yaml.Indent(2), yaml.IndentSequence(false))
		if err != nil {
			return errors.WrapParse("yaml", "", err)
		}
		_, err = w.Write(data)
		return err
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	default:
		return errors.NewValidationError("report.format", format, "must be json or yaml")
	}
}

// Write encodes v and atomically replaces the file at path.
func Write(path string, v any, format Format) error {
	var buf bytes.Buffer
	if err := Encode(&buf, v, format); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return fsutil.WriteAtomic(path, buf.Bytes())
}
