package grammar

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Term is a deprecated phrase and its standard replacement. IgnoreCase
// matches the phrase in any letter case.
type Term struct {
	From       string `mapstructure:"from" json:"from" yaml:"from"`
	To         string `mapstructure:"to" json:"to" yaml:"to"`
	IgnoreCase bool   `mapstructure:"ignore_case" json:"ignore_case,omitempty" yaml:"ignore_case,omitempty"`
}

// DefaultTerms are the standard terminology fixes: streaming event lists
// written with the retired "chunk" event, session endpoints written with a
// bare {id} parameter, and secret references written with the retired
// key_ref names.
var DefaultTerms = []Term{
	{From: "token/chunk/done/error", To: "token/tool/citation/done/error/heartbeat/safe_response"},
	{From: "token/chunk", To: "token/tool/citation"},
	{From: "/v1/sessions/{id}/messages", To: "/v1/sessions/{session_id}/messages"},
	{From: "/v1/sessions/{id}/stream", To: "/v1/sessions/{session_id}/messages/{message_id}/stream"},
	{From: "/v1/sessions/{id}/close", To: "/v1/sessions/{session_id}/close"},
	{From: "/v1/sessions/{id}", To: "/v1/sessions/{session_id}"},
	{From: "/v1/messages/{id}/feedback", To: "/v1/sessions/{session_id}/messages/{message_id}/feedback"},
	{From: "api_key_ref", To: "secret_ref", IgnoreCase: true},
	{From: "key_ref", To: "secret_ref", IgnoreCase: true},
}

var (
	placeholderRe = regexp.MustCompile(`(?i)\bTBD\b|coverage-gap|placeholder|\btodo\b`)
	accessLevelRe = regexp.MustCompile(`access_level\s*=\s*([A-Z_]+)`)
)

// AccessLevels are the values allowed in an access_level= annotation.
var AccessLevels = NewSet("PUBLIC", "AUTHENTICATED")

// IsPlaceholder reports whether text still carries placeholder content.
func IsPlaceholder(text string) bool {
	return placeholderRe.MatchString(text)
}

// AccessLevelsIn returns the access_level= annotations in text.
func AccessLevelsIn(text string) []string {
	var out []string
	for _, m := range accessLevelRe.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}

// Terminology rewrites deprecated phrases. Phrases are matched on word
// boundaries, longest first, so "api_key_ref" is never half-rewritten by
// the "key_ref" rule.
type Terminology struct {
	terms []Term
	res   []*regexp.Regexp
}

// NewTerminology compiles terms. A rule whose replacement contains any
// rule's phrase is rejected: rewriting would not reach a fixed point.
func NewTerminology(terms []Term) (*Terminology, error) {
	sorted := append([]Term(nil), terms...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].From) > len(sorted[j].From)
	})

	t := &Terminology{terms: sorted}
	for _, term := range sorted {
		if strings.TrimSpace(term.From) == "" {
			return nil, fmt.Errorf("terminology rule with empty phrase")
		}
		re := phraseRegexp(term)
		for _, other := range sorted {
			if phraseRegexp(other).MatchString(term.To) {
				return nil, fmt.Errorf("replacement %q for %q contains %q and would not converge", term.To, term.From, other.From)
			}
		}
		t.res = append(t.res, re)
	}
	return t, nil
}

func phraseRegexp(term Term) *regexp.Regexp {
	phrase := term.From
	pattern := regexp.QuoteMeta(phrase)
	if isWordByte(phrase[0]) {
		pattern = `\b` + pattern
	}
	if isWordByte(phrase[len(phrase)-1]) {
		pattern += `\b`
	}
	if term.IgnoreCase {
		pattern = `(?i)` + pattern
	}
	return regexp.MustCompile(pattern)
}

func isWordByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z'
}

// Find returns the deprecated phrases present in text.
func (t *Terminology) Find(text string) []string {
	var out []string
	for i, re := range t.res {
		if re.MatchString(text) {
			out = append(out, t.terms[i].From)
		}
	}
	return out
}

// Rewrite replaces every deprecated phrase in text and reports whether
// anything changed.
func (t *Terminology) Rewrite(text string) (string, bool) {
	out := text
	for i, re := range t.res {
		out = re.ReplaceAllLiteralString(out, t.terms[i].To)
	}
	return out, out != text
}

// Terms returns the compiled rules, longest phrase first.
func (t *Terminology) Terms() []Term {
	return append([]Term(nil), t.terms...)
}
