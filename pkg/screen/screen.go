// Package screen collects per-screen metadata records from the screen
// sheets of a UI/UX workbook.
package screen

import (
	"context"
	"sort"

	"github.com/agentstation/specgate/pkg/errors"
	"github.com/agentstation/specgate/pkg/grammar"
	"github.com/agentstation/specgate/pkg/logging"
	"github.com/agentstation/specgate/pkg/scanner"
	"github.com/agentstation/specgate/pkg/tabular"
)

// DocWorkbook names the UI/UX workbook in errors and violations.
const DocWorkbook = "uiux_workbook"

// Record is the metadata of one screen sheet, rebuilt on every pass.
type Record struct {
	Sheet      string `json:"sheet_name" yaml:"sheet_name"`
	Sequence   int    `json:"sequence" yaml:"sequence"`
	ExpectedID string `json:"expected_screen_id" yaml:"expected_screen_id"`
	ActualID   string `json:"actual_screen_id" yaml:"actual_screen_id"`

	ProgramText string   `json:"program_text" yaml:"program_text"`
	ProgramIDs  []string `json:"program_ids" yaml:"program_ids"`
	APIText     string   `json:"api_text" yaml:"api_text"`
	RoleText    string   `json:"role_text" yaml:"role_text"`
	Role        string   `json:"role" yaml:"role"`
	PhaseText   string   `json:"phase_text" yaml:"phase_text"`
	Phase       string   `json:"phase" yaml:"phase"`

	// Origins records where each metadata value was found.
	Origins map[string]tabular.Origin `json:"-" yaml:"-"`

	Sections       map[string]bool `json:"sections" yaml:"sections"`
	HasConstraints bool            `json:"has_constraints" yaml:"has_constraints"`

	Referenced   map[grammar.Kind]grammar.Set `json:"referenced" yaml:"referenced"`
	Terms        grammar.Set                  `json:"deprecated_terms" yaml:"deprecated_terms"`
	Placeholders int                          `json:"placeholders" yaml:"placeholders"`
	Truncated    bool                         `json:"truncated" yaml:"truncated"`
}

// Field returns the resolved text of a mandatory metadata field.
func (r Record) Field(name string) string {
	switch name {
	case FieldScreenID:
		return r.ActualID
	case FieldProgram:
		return r.ProgramText
	case FieldAPI:
		return r.APIText
	case FieldRole:
		return r.Role
	case FieldPhase:
		return r.Phase
	}
	return ""
}

// MissingFields returns the mandatory fields that resolved empty.
func (r Record) MissingFields() []string {
	var out []string
	for _, name := range MandatoryFields {
		if r.Field(name) == "" {
			out = append(out, name)
		}
	}
	return out
}

// MissingSections returns the keys of required sections not found.
func (r Record) MissingSections() []string {
	var out []string
	for _, sec := range Sections {
		if !r.Sections[sec.Key] {
			out = append(out, sec.Key)
		}
	}
	return out
}

// Collector builds screen records.
type Collector struct {
	layout Layout
	opts   []scanner.Option
	roles  grammar.Set
}

// Option configures a Collector.
type Option func(*Collector)

// WithLayout overrides the screen sheet contract.
func WithLayout(l Layout) Option {
	return func(c *Collector) { c.layout = l }
}

// WithScanOptions passes options to the per-sheet scanner.
func WithScanOptions(opts ...scanner.Option) Option {
	return func(c *Collector) { c.opts = append(c.opts, opts...) }
}

// WithRoles sets the role vocabulary used to normalize the role field.
func WithRoles(roles grammar.Set) Option {
	return func(c *Collector) { c.roles = roles }
}

// NewCollector returns a Collector with the default layout.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{layout: DefaultLayout(), roles: grammar.KnownRoles}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Layout returns the screen sheet contract in use.
func (c *Collector) Layout() Layout { return c.layout }

// Sheets returns the screen sheet names of wb ordered by sequence, then name.
func Sheets(wb tabular.Workbook) []string {
	type entry struct {
		name string
		seq  int
	}
	var entries []entry
	for _, name := range wb.SheetNames() {
		if seq, _, ok := grammar.ScreenIDFromSheetName(name); ok {
			entries = append(entries, entry{name, seq})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].seq != entries[j].seq {
			return entries[i].seq < entries[j].seq
		}
		return entries[i].name < entries[j].name
	})
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.name
	}
	return out
}

// ExpectedIDs returns the screen IDs derived from the screen sheet names.
func ExpectedIDs(wb tabular.Workbook) grammar.Set {
	ids := grammar.NewSet()
	for _, name := range wb.SheetNames() {
		if _, id, ok := grammar.ScreenIDFromSheetName(name); ok {
			ids.Add(id)
		}
	}
	return ids
}

// Collect builds one record per screen sheet. A screen sheet that is
// listed but cannot be read aborts the collection.
func (c *Collector) Collect(ctx context.Context, wb tabular.Workbook) ([]Record, error) {
	if err := c.layout.Validate(); err != nil {
		return nil, err
	}
	expected := ExpectedIDs(wb)

	names := Sheets(wb)
	records := make([]Record, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sh, ok := wb.Sheet(name)
		if !ok {
			return nil, errors.NewUnreadableError(DocWorkbook, name, errors.ErrNotFound)
		}
		rec := c.record(sh, expected)
		if missing := rec.MissingFields(); len(missing) > 0 {
			logging.FromContext(logging.WithSheet(ctx, name)).Trace().
				Strs("missing", missing).
				Msg("Screen fields missing")
		}
		records = append(records, rec)
	}

	logging.FromContext(ctx).Debug().
		Int("screens", len(records)).
		Msg("Collected screen records")
	return records, nil
}

func (c *Collector) record(sh tabular.Sheet, screenIDs grammar.Set) Record {
	seq, expected, _ := grammar.ScreenIDFromSheetName(sh.Name())
	r := Record{
		Sheet:      sh.Name(),
		Sequence:   seq,
		ExpectedID: expected,
		Origins:    make(map[string]tabular.Origin, len(c.layout.Fields)),
		Sections:   make(map[string]bool, len(Sections)),
	}

	read := func(name string) string {
		v := c.layout.MustField(name).Read(sh)
		r.Origins[name] = v.Origin
		return v.Text
	}
	if id := read(FieldScreenID); id != "" {
		r.ActualID = grammar.ScreenIDIn(id)
	}
	r.ProgramText = read(FieldProgram)
	r.ProgramIDs = grammar.SortedUnique(grammar.ProgramIDs(r.ProgramText))
	r.APIText = read(FieldAPI)
	r.RoleText = read(FieldRole)
	r.Role = grammar.ExtractRole(r.RoleText, c.roles)
	r.PhaseText = read(FieldPhase)
	r.Phase = grammar.ExtractPhase(r.PhaseText)

	for _, sec := range Sections {
		r.Sections[sec.Key] = c.layout.HasSection(sh, sec.Prefix)
	}
	r.HasConstraints = c.layout.HasConstraints(sh)

	// Screen IDs share the requirement ID shape; the sheet's own screen ID
	// field must not read as a requirement reference either.
	exclude := screenIDs.Clone()
	if r.ActualID != "" {
		exclude.Add(r.ActualID)
	}
	opts := append([]scanner.Option{scanner.WithExcludedRequirements(exclude)}, c.opts...)
	res := scanner.New(opts...).Sheet(sh)
	r.Referenced = res.IDs
	r.Terms = res.Terms
	r.Placeholders = res.Placeholders
	r.Truncated = res.Truncated
	return r
}

// Referenced returns the union of kind across records.
func Referenced(records []Record, kind grammar.Kind) grammar.Set {
	out := grammar.NewSet()
	for _, r := range records {
		out = out.Union(r.Referenced[kind])
	}
	return out
}
