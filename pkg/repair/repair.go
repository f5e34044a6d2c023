// Package repair plans deterministic, idempotent fixes for the gaps a
// checker pass found. Repairs are applied to a staged copy of the
// workbook; the resulting plan is the cell-level diff between the
// original and the staged copy.
package repair

import (
	"context"
	"fmt"

	"github.com/agentstation/specgate/pkg/checker"
	"github.com/agentstation/specgate/pkg/grammar"
	"github.com/agentstation/specgate/pkg/logging"
	"github.com/agentstation/specgate/pkg/screen"
	"github.com/agentstation/specgate/pkg/tabular"
	"github.com/agentstation/specgate/pkg/workbook"
)

// Entry is one repair log record.
type Entry struct {
	Target  string `json:"target_document" yaml:"target_document"`
	Sheet   string `json:"sheet" yaml:"sheet"`
	Message string `json:"message" yaml:"message"`
	Source  string `json:"source" yaml:"source"`
	// Ledgered entries are placeholder insertions recorded in the
	// assumptions ledger; they are skipped when the ledger already holds
	// the same message.
	Ledgered bool `json:"ledgered" yaml:"ledgered"`
}

// Plan is the outcome of one repair pass.
type Plan struct {
	Ops     []tabular.Op `json:"ops" yaml:"ops"`
	Entries []Entry      `json:"entries" yaml:"entries"`
	// Staged is the edited copy the ops were diffed from.
	Staged *tabular.Book `json:"-" yaml:"-"`
}

// Empty reports whether the plan changes nothing.
func (p *Plan) Empty() bool {
	return len(p.Ops) == 0
}

// Engine plans repairs.
type Engine struct {
	layout workbook.Layout
	screen screen.Layout
	terms  *grammar.Terminology
}

// Option configures an Engine.
type Option func(*Engine)

// WithLayout overrides the required sheet set.
func WithLayout(l workbook.Layout) Option {
	return func(e *Engine) { e.layout = l }
}

// WithScreenLayout overrides the screen sheet contract.
func WithScreenLayout(l screen.Layout) Option {
	return func(e *Engine) { e.screen = l }
}

// WithTerminology enables terminology normalization.
func WithTerminology(t *grammar.Terminology) Option {
	return func(e *Engine) { e.terms = t }
}

// New returns an Engine with the default layouts and no terminology rules.
func New(opts ...Option) *Engine {
	e := &Engine{layout: workbook.DefaultLayout(), screen: screen.DefaultLayout()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// pass is the mutable state of one Plan call.
type pass struct {
	staged  *tabular.Book
	sheets  workbook.SheetMap
	ledger  *ledger
	entries []Entry
}

func (p *pass) record(sheet, source, message string) {
	p.entries = append(p.entries, Entry{Target: screen.DocWorkbook, Sheet: sheet, Message: message, Source: source})
}

// placeholder records a ledgered insertion. It returns false when the
// ledger already holds message, in which case the caller must not insert.
func (p *pass) placeholder(sheet, source, message string) bool {
	if p.ledger.has(message) {
		return false
	}
	p.ledger.add(sheet, source, message)
	p.entries = append(p.entries, Entry{
		Target: screen.DocWorkbook, Sheet: sheet, Message: message, Source: source, Ledgered: true,
	})
	return true
}

// Plan stages every repair the report calls for and returns the diff.
// wb is not modified. A fixed-position assumption that no longer holds
// aborts the plan with a RepairError.
func (e *Engine) Plan(ctx context.Context, wb *tabular.Book, report *checker.Report) (*Plan, error) {
	ctx = logging.WithPhase(ctx, "repair")
	log := logging.FromContext(ctx)

	p := &pass{staged: wb.Clone()}

	expandRanges(p)
	if e.terms != nil {
		normalizeTerms(p, e.terms)
	}
	e.ensureSheets(p)

	var err error
	if p.ledger, err = readLedger(p.staged, p.sheets[workbook.SheetLedger]); err != nil {
		return nil, err
	}

	for _, rec := range report.Screens {
		if err := e.repairScreen(p, rec); err != nil {
			return nil, err
		}
	}
	if err := appendErrorCodes(p, report); err != nil {
		return nil, err
	}
	rebuildTOC(p, report)
	if err := p.ledger.flush(p.staged); err != nil {
		return nil, err
	}

	plan := &Plan{Ops: tabular.Diff(wb, p.staged), Entries: p.entries, Staged: p.staged}
	if plan.Entries == nil {
		plan.Entries = []Entry{}
	}

	sheetsAdded, cells := tabular.Summary(plan.Ops)
	log.Info().
		Int("entries", len(plan.Entries)).
		Int("sheets_added", sheetsAdded).
		Int("cells", cells).
		Msg("Repair plan ready")
	return plan, nil
}

// ensureSheets creates every missing required sheet and resolves the
// sheet map against the staged book.
func (e *Engine) ensureSheets(p *pass) {
	_, missing := e.layout.Resolve(p.staged)
	for _, name := range missing {
		t := p.staged.AddSheet(name)
		t.Set(1, 1, fmt.Sprintf("%s (자동 생성)", name))
		p.record(name, "required sheet", fmt.Sprintf("필수 시트 %s 누락으로 자동 생성", name))
	}
	p.sheets, _ = e.layout.Resolve(p.staged)
}

// expandRanges rewrites compressed identifier ranges in every sheet.
func expandRanges(p *pass) {
	rewriteCells(p, p.staged.SheetNames(), "range expansion", "압축 ID 범위 %d건 전개", grammar.ExpandRanges)
}

// normalizeTerms replaces deprecated phrases in the screen sheets.
func normalizeTerms(p *pass, terms *grammar.Terminology) {
	rewrite := func(s string) string {
		out, _ := terms.Rewrite(s)
		return out
	}
	rewriteCells(p, screen.Sheets(p.staged), "terminology", "폐기 용어 %d건 표준 용어로 치환", rewrite)
}

func rewriteCells(p *pass, sheets []string, source, format string, fn func(string) string) {
	for _, name := range sheets {
		t := p.staged.Table(name)
		changed := 0
		for _, c := range t.Coords() {
			raw := t.Raw(c.Row, c.Col)
			if next := fn(raw); next != raw {
				t.Set(c.Row, c.Col, next)
				changed++
			}
		}
		if changed > 0 {
			p.record(name, source, fmt.Sprintf(format, changed))
		}
	}
}
