// Package checker runs the ordered consistency rule set over a reference
// catalog and the screen records of a workbook.
package checker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agentstation/specgate/pkg/catalog"
	"github.com/agentstation/specgate/pkg/grammar"
	"github.com/agentstation/specgate/pkg/logging"
	"github.com/agentstation/specgate/pkg/scanner"
	"github.com/agentstation/specgate/pkg/screen"
	"github.com/agentstation/specgate/pkg/tabular"
	"github.com/agentstation/specgate/pkg/workbook"
)

// noteExamples is how many items a check note names before eliding.
const noteExamples = 3

// Checker evaluates workbooks against a reference catalog.
type Checker struct {
	layout      workbook.Layout
	screen      screen.Layout
	bounds      scanner.Bounds
	terminology *grammar.Terminology
}

// Option configures a Checker.
type Option func(*Checker)

// WithLayout overrides the required sheet set.
func WithLayout(l workbook.Layout) Option {
	return func(c *Checker) { c.layout = l }
}

// WithScreenLayout overrides the screen sheet contract.
func WithScreenLayout(l screen.Layout) Option {
	return func(c *Checker) { c.screen = l }
}

// WithBounds overrides the per-screen scan region.
func WithBounds(b scanner.Bounds) Option {
	return func(c *Checker) { c.bounds = b }
}

// WithTerminology enables the deprecated-term check.
func WithTerminology(t *grammar.Terminology) Option {
	return func(c *Checker) { c.terminology = t }
}

// New returns a Checker with the default layouts and scan bounds.
func New(opts ...Option) *Checker {
	c := &Checker{
		layout: workbook.DefaultLayout(),
		screen: screen.DefaultLayout(),
		bounds: scanner.DefaultBounds(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Layout returns the required sheet set in use.
func (c *Checker) Layout() workbook.Layout { return c.layout }

// ScreenLayout returns the screen sheet contract in use.
func (c *Checker) ScreenLayout() screen.Layout { return c.screen }

// env is the read-only input of one pass.
type env struct {
	cat     *catalog.Catalog
	wb      tabular.Workbook
	sheets  workbook.SheetMap
	missing []string
	records []screen.Record
	screen  screen.Layout
}

func (e *env) sheet(key string) (tabular.Sheet, bool) {
	name, ok := e.sheets[key]
	if !ok {
		return nil, false
	}
	return e.wb.Sheet(name)
}

// Check runs every rule in order. The source catalog is extended with the
// workbook's own error, role and event catalogs before any rule runs.
// Only an unreadable screen sheet is an error; everything else becomes a
// violation.
func (c *Checker) Check(ctx context.Context, cat *catalog.Catalog, wb tabular.Workbook) (*Report, error) {
	if err := c.layout.Validate(); err != nil {
		return nil, err
	}
	if err := c.bounds.Validate(); err != nil {
		return nil, err
	}

	sheets, missing := c.layout.Resolve(wb)
	full := cat.WithWorkbook(wb, sheets)

	scanOpts := []scanner.Option{
		scanner.WithBounds(c.bounds),
		scanner.WithEventVocabulary(full.Set(grammar.KindEventType)),
	}
	if c.terminology != nil {
		scanOpts = append(scanOpts, scanner.WithTerminology(c.terminology))
	}
	collector := screen.NewCollector(
		screen.WithLayout(c.screen),
		screen.WithRoles(full.Set(grammar.KindRole)),
		screen.WithScanOptions(scanOpts...),
	)
	records, err := collector.Collect(ctx, wb)
	if err != nil {
		return nil, err
	}

	e := &env{cat: full, wb: wb, sheets: sheets, missing: missing, records: records, screen: c.screen}
	report := &Report{
		SheetMap:      sheets,
		MissingSheets: append([]string{}, missing...),
		ScreenSheets:  make([]string, 0, len(records)),
		Screens:       records,
		Violations:    []Violation{},
	}
	for _, r := range records {
		report.ScreenSheets = append(report.ScreenSheets, r.Sheet)
	}

	log := logging.FromContext(ctx)
	for _, rule := range rules {
		found := rule.run(e)
		sortViolations(found)
		for i := range found {
			found[i].Rule = rule.ID
			found[i].Class = rule.Class
		}
		check := rule.check(found)
		report.Checks = append(report.Checks, check)
		report.Violations = append(report.Violations, found...)

		logging.FromContext(logging.WithRule(ctx, rule.ID)).Debug().
			Str("status", string(check.Status)).
			Int("missing", check.MissingCount).
			Msg("Rule evaluated")
	}
	report.Tally()

	log.Info().
		Int("screens", len(records)).
		Int("pass", report.PassCount).
		Int("fail", report.FailCount).
		Msg("Consistency check complete")
	return report, nil
}

// Rule is one entry of the ordered rule set.
type Rule struct {
	ID      string
	Section string
	Item    string
	Class   Class
	run     func(*env) []Violation
	note    func([]Violation) string
}

// Rules returns the rule set in evaluation order.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

func (r Rule) check(found []Violation) Check {
	c := Check{
		Rule:         r.ID,
		Section:      r.Section,
		Item:         r.Item,
		Class:        r.Class,
		Status:       StatusPass,
		MissingCount: len(found),
		Items:        make([]string, 0, len(found)),
	}
	for _, v := range found {
		c.Items = append(c.Items, v.Item)
	}
	if len(found) > 0 {
		c.Status = StatusFail
	}
	if r.note != nil {
		c.Note = r.note(found)
	} else {
		c.Note = examplesNote(c.Items)
	}
	return c
}

func examplesNote(items []string) string {
	if len(items) <= noteExamples {
		return strings.Join(items, "; ")
	}
	return fmt.Sprintf("%s (+%d)", strings.Join(items[:noteExamples], "; "), len(items)-noteExamples)
}

func sortViolations(vs []Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		if vs[i].Code != vs[j].Code {
			return vs[i].Code < vs[j].Code
		}
		return vs[i].Item < vs[j].Item
	})
}
