// Package scanner extracts identifier references from bounded regions of
// tabular documents.
package scanner

import (
	"regexp"

	"github.com/agentstation/specgate/pkg/constants"
	"github.com/agentstation/specgate/pkg/errors"
	"github.com/agentstation/specgate/pkg/grammar"
	"github.com/agentstation/specgate/pkg/tabular"
)

// Kinds are the identifier kinds a scan collects.
var Kinds = []grammar.Kind{
	grammar.KindErrorCode,
	grammar.KindRequirement,
	grammar.KindTable,
	grammar.KindEndpoint,
	grammar.KindEventType,
}

// Event vocabulary words only count in cells that talk about streaming.
var streamContext = regexp.MustCompile(`(?i)\b(?:sse|events?|event_type|stream|streaming)\b`)

// Bounds is the scanned region: rows 1..MaxRow, columns 1..MaxCol.
type Bounds struct {
	MaxRow int `mapstructure:"max_row" json:"max_row" yaml:"max_row"`
	MaxCol int `mapstructure:"max_col" json:"max_col" yaml:"max_col"`
}

// DefaultBounds returns the standard screen scan region.
func DefaultBounds() Bounds {
	return Bounds{MaxRow: constants.ScanMaxRow, MaxCol: constants.ScanMaxCol}
}

// Validate rejects empty regions.
func (b Bounds) Validate() error {
	if b.MaxRow < 1 {
		return errors.NewValidationError("scan.max_row", b.MaxRow, "must be positive")
	}
	if b.MaxCol < 1 {
		return errors.NewValidationError("scan.max_col", b.MaxCol, "must be positive")
	}
	return nil
}

// Result holds what one scan found.
type Result struct {
	IDs map[grammar.Kind]grammar.Set
	// Terms holds deprecated phrases found, when a terminology is set.
	Terms grammar.Set
	// Placeholders counts scanned cells still holding placeholder text.
	Placeholders int
	// Truncated is set when non-empty cells lie outside the bounds.
	Truncated bool
}

func newResult() Result {
	r := Result{IDs: make(map[grammar.Kind]grammar.Set, len(Kinds)), Terms: grammar.NewSet()}
	for _, k := range Kinds {
		r.IDs[k] = grammar.NewSet()
	}
	return r
}

// Set returns the identifiers of kind, never nil.
func (r Result) Set(kind grammar.Kind) grammar.Set {
	if s, ok := r.IDs[kind]; ok {
		return s
	}
	return grammar.NewSet()
}

// Scanner extracts identifiers. The zero value is not usable; call New.
type Scanner struct {
	bounds  Bounds
	events  grammar.Set
	exclude grammar.Set
	terms   *grammar.Terminology
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithBounds overrides the scanned region.
func WithBounds(b Bounds) Option {
	return func(s *Scanner) { s.bounds = b }
}

// WithEventVocabulary sets the event types recognized as plain words.
func WithEventVocabulary(events grammar.Set) Option {
	return func(s *Scanner) { s.events = events }
}

// WithExcludedRequirements drops tokens that share the requirement ID
// shape but name something else, such as screen IDs.
func WithExcludedRequirements(ids grammar.Set) Option {
	return func(s *Scanner) { s.exclude = ids }
}

// WithTerminology reports deprecated phrases found while scanning.
func WithTerminology(t *grammar.Terminology) Option {
	return func(s *Scanner) { s.terms = t }
}

// New returns a Scanner with the default bounds and event vocabulary.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		bounds:  DefaultBounds(),
		events:  grammar.DefaultEventTypes,
		exclude: grammar.NewSet(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bounds returns the scanned region.
func (s *Scanner) Bounds() Bounds { return s.bounds }

// Text scans a single string.
func (s *Scanner) Text(text string) Result {
	r := newResult()
	s.cell(&r, text)
	return r
}

// Sheet scans the bounded region of sh.
func (s *Scanner) Sheet(sh tabular.Sheet) Result {
	r := newResult()
	for row := 1; row <= min(sh.MaxRow(), s.bounds.MaxRow); row++ {
		for col := 1; col <= min(sh.MaxCol(), s.bounds.MaxCol); col++ {
			s.cell(&r, sh.Cell(row, col))
		}
	}
	r.Truncated = sh.MaxRow() > s.bounds.MaxRow || sh.MaxCol() > s.bounds.MaxCol
	return r
}

func (s *Scanner) cell(r *Result, text string) {
	if text == "" {
		return
	}
	if grammar.IsPlaceholder(text) {
		r.Placeholders++
	}
	if s.terms != nil {
		r.Terms.Add(s.terms.Find(text)...)
	}

	text = grammar.ExpandRanges(text)
	r.IDs[grammar.KindErrorCode].Add(grammar.ErrorCodes(text)...)
	for _, id := range grammar.RequirementIDs(text) {
		if !s.exclude.Has(id) {
			r.IDs[grammar.KindRequirement].Add(id)
		}
	}
	r.IDs[grammar.KindTable].Add(grammar.Tables(text)...)
	r.IDs[grammar.KindEndpoint].Add(grammar.Endpoints(text)...)

	events := r.IDs[grammar.KindEventType]
	events.Add(grammar.ExplicitEventTypes(text)...)
	if streamContext.MatchString(text) {
		events.Add(grammar.Words(text, s.events, true)...)
	}
}
