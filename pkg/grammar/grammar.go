// Package grammar defines the identifier kinds shared by every document in
// the gate and the patterns that recognize them. All recognition rules
// live here; other packages never compile their own identifier patterns.
package grammar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind tags an identifier with the grammar it belongs to.
type Kind string

// Identifier kinds.
const (
	KindRequirement Kind = "requirement_id"
	KindErrorCode   Kind = "error_code"
	KindTable       Kind = "table"
	KindEndpoint    Kind = "endpoint"
	KindRole        Kind = "role"
	KindEventType   Kind = "event_type"
	KindScreen      Kind = "screen_id"
)

// Kinds lists every identifier kind in a fixed order.
var Kinds = []Kind{
	KindRequirement,
	KindErrorCode,
	KindTable,
	KindEndpoint,
	KindRole,
	KindEventType,
	KindScreen,
}

// TablePrefix starts every database table name.
const TablePrefix = "TB_"

// HTTPMethods accepted in front of an endpoint path.
var HTTPMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

// KnownRoles is the role vocabulary used when no canonical role list exists.
var KnownRoles = NewSet("AGENT", "CUSTOMER", "ADMIN", "OPS", "SYSTEM", "PUBLIC")

// DefaultEventTypes is the streaming event vocabulary used when no
// canonical event list exists.
var DefaultEventTypes = NewSet("token", "tool", "citation", "done", "error", "heartbeat", "safe_response")

var (
	requirementRe    = regexp.MustCompile(`\b[A-Z]{2,5}-\d{3}\b`)
	requirementWhole = regexp.MustCompile(`^[A-Z]{2,5}-\d{3}$`)

	errorCodeRe    = regexp.MustCompile(`\b[A-Z]{2,5}-\d{3}(?:-[A-Z0-9_]+){1,3}\b`)
	errorCodeWhole = regexp.MustCompile(`^[A-Z]{2,5}-\d{3}(?:-[A-Z0-9_]+){1,3}$`)
	httpStatusRe   = regexp.MustCompile(`-(\d{3})(?:-|$)`)

	requirementPrefix = regexp.MustCompile(`^[A-Z]{2,5}-\d{3}`)

	tableRe    = regexp.MustCompile(`\bTB_[A-Z0-9_]+\b`)
	tableWhole = regexp.MustCompile(`^TB_[A-Z0-9_]+$`)

	methodEndpointRe = regexp.MustCompile(`\b(GET|POST|PUT|PATCH|DELETE)\s+(/v\d+/[A-Za-z0-9_{}\-/]+)`)
	endpointRe       = regexp.MustCompile(`/v\d+/[A-Za-z0-9_{}\-/]+`)
	endpointWhole    = regexp.MustCompile(`^(?:(?:GET|POST|PUT|PATCH|DELETE)\s+)?/v\d+/[A-Za-z0-9_{}\-/]+$`)

	roleWhole = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

	eventWhole    = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	eventExplicit = regexp.MustCompile(`(?i)\b(?:event_type|event|sse)\s*[:=]\s*([A-Za-z][A-Za-z0-9_]*)`)

	screenRe        = regexp.MustCompile(`\b[A-Z]{3}-\d{3}\b`)
	screenWhole     = regexp.MustCompile(`^[A-Z]{3}-\d{3}$`)
	screenSheetName = regexp.MustCompile(`^(\d{2})_([A-Z]{3})(\d{3})_`)

	phaseRe = regexp.MustCompile(`\bPHASE\d+\b`)

	programWhole = regexp.MustCompile(`^[A-Z][A-Z0-9]*(?:[-_][A-Z0-9]+)+$`)
)

// Matcher recognizes one identifier kind.
type Matcher interface {
	// Kind returns the identifier kind.
	Kind() Kind
	// Match reports whether token, as a whole, is an identifier of this kind.
	Match(token string) bool
	// FindAll returns every occurrence in text, in order of appearance.
	FindAll(text string) []string
}

type matcher struct {
	kind  Kind
	whole *regexp.Regexp
	find  func(string) []string
}

func (m matcher) Kind() Kind                   { return m.kind }
func (m matcher) Match(token string) bool      { return m.whole.MatchString(strings.TrimSpace(token)) }
func (m matcher) FindAll(text string) []string { return m.find(text) }

var matchers = map[Kind]Matcher{
	KindRequirement: matcher{KindRequirement, requirementWhole, RequirementIDs},
	KindErrorCode:   matcher{KindErrorCode, errorCodeWhole, ErrorCodes},
	KindTable:       matcher{KindTable, tableWhole, Tables},
	KindEndpoint:    matcher{KindEndpoint, endpointWhole, Endpoints},
	KindRole:        matcher{KindRole, roleWhole, func(text string) []string { return Words(text, KnownRoles, false) }},
	KindEventType:   matcher{KindEventType, eventWhole, ExplicitEventTypes},
	KindScreen:      matcher{KindScreen, screenWhole, func(text string) []string { return findStandalone(screenRe, text) }},
}

// For returns the matcher for kind.
func For(kind Kind) (Matcher, error) {
	m, ok := matchers[kind]
	if !ok {
		return nil, fmt.Errorf("unknown identifier kind %q", kind)
	}
	return m, nil
}

// Match reports whether token is a whole identifier of kind.
func Match(kind Kind, token string) bool {
	m, ok := matchers[kind]
	return ok && m.Match(token)
}

// ErrorCodes returns every error code in text.
func ErrorCodes(text string) []string {
	return findStandalone(errorCodeRe, text)
}

// RequirementIDs returns every bare requirement ID in text. Requirement IDs
// that only appear as the prefix of an error code are not returned:
// "AI-009-422-SCHEMA" yields nothing, "AI-009 / AI-009-422-SCHEMA" yields AI-009.
// Tails of longer hyphenated tokens are not IDs: "AGT-API-001" yields nothing.
func RequirementIDs(text string) []string {
	return findStandalone(requirementRe, maskErrorCodes(text))
}

// standaloneSpans returns the matches of re that do not continue a longer
// token. \b alone accepts "API-001" inside "AGT-API-001".
func standaloneSpans(re *regexp.Regexp, text string) [][]int {
	var out [][]int
	for _, span := range re.FindAllStringIndex(text, -1) {
		if span[0] > 0 && isTokenByte(text[span[0]-1]) {
			continue
		}
		out = append(out, span)
	}
	return out
}

func findStandalone(re *regexp.Regexp, text string) []string {
	var out []string
	for _, span := range standaloneSpans(re, text) {
		out = append(out, text[span[0]:span[1]])
	}
	return out
}

func isTokenByte(c byte) bool {
	return c == '-' || c == '_' || c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z'
}

func maskErrorCodes(text string) string {
	spans := standaloneSpans(errorCodeRe, text)
	if len(spans) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, span := range spans {
		b.WriteString(text[last:span[0]])
		b.WriteString(strings.Repeat(" ", span[1]-span[0]))
		last = span[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// Tables returns every table name in text.
func Tables(text string) []string {
	return tableRe.FindAllString(text, -1)
}

// Endpoints returns the endpoint paths in text. Paths written after an
// HTTP method win; bare versioned paths are used only when no method form
// is present.
func Endpoints(text string) []string {
	var out []string
	for _, m := range methodEndpointRe.FindAllStringSubmatch(text, -1) {
		out = append(out, strings.TrimSpace(m[2]))
	}
	if len(out) > 0 {
		return out
	}
	return endpointRe.FindAllString(text, -1)
}

// MethodEndpoints returns "METHOD /path" pairs in text.
func MethodEndpoints(text string) []string {
	var out []string
	for _, m := range methodEndpointRe.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1]+" "+strings.TrimSpace(m[2]))
	}
	return out
}

// ExplicitEventTypes returns event types written in an explicit
// "event: name" / "event_type=name" form, lowercased.
func ExplicitEventTypes(text string) []string {
	var out []string
	for _, m := range eventExplicit.FindAllStringSubmatch(text, -1) {
		out = append(out, strings.ToLower(m[1]))
	}
	return out
}

// Words returns the members of vocabulary that appear in text as whole
// words. With fold set, text is lowercased first and vocabulary is
// expected to be lowercase. Results follow vocabulary's sorted order.
func Words(text string, vocabulary Set, fold bool) []string {
	if fold {
		text = strings.ToLower(text)
	}
	present := NewSet(tokenize(text)...)
	var out []string
	for _, word := range vocabulary.Sorted() {
		if present.Has(word) {
			out = append(out, word)
		}
	}
	return out
}

// tokenize splits text into runs of word characters ([A-Za-z0-9_]).
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !(r == '_' || r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z')
	})
}

// ScreenIDFromSheetName parses "NN_XXX###_freeform" into its sequence and
// the expected screen ID "XXX-###".
func ScreenIDFromSheetName(name string) (seq int, id string, ok bool) {
	m := screenSheetName.FindStringSubmatch(name)
	if m == nil {
		return 0, "", false
	}
	seq, _ = strconv.Atoi(m[1])
	return seq, m[2] + "-" + m[3], true
}

// IsScreenSheet reports whether name follows the screen sheet convention.
func IsScreenSheet(name string) bool {
	return screenSheetName.MatchString(name)
}

// ScreenIDIn returns the first screen ID written in text, or text trimmed
// when none is present.
func ScreenIDIn(text string) string {
	if ids := findStandalone(screenRe, text); len(ids) > 0 {
		return ids[0]
	}
	return strings.TrimSpace(text)
}

// ExtractRole returns the first vocabulary role (in sorted order) that
// appears as a whole word in the uppercased text. When none does and the
// whole text is a single role-shaped token, that token is returned so an
// unknown role can be reported instead of disappearing.
func ExtractRole(text string, vocabulary Set) string {
	up := strings.ToUpper(text)
	if words := Words(up, vocabulary, false); len(words) > 0 {
		return words[0]
	}
	token := strings.TrimSpace(up)
	if roleWhole.MatchString(token) && token != "TBD" {
		return token
	}
	return ""
}

// ExtractPhase returns the delivery phase named in text: "PHASE<n>",
// "MVP", or "" when neither is present.
func ExtractPhase(text string) string {
	up := strings.ToUpper(text)
	if m := phaseRe.FindString(up); m != "" {
		return m
	}
	if strings.Contains(up, "MVP") {
		return "MVP"
	}
	return ""
}

// InferHTTPStatus returns the three-digit status segment that follows the
// requirement prefix of an error code ("AI-009-422-SCHEMA" -> "422").
func InferHTTPStatus(code string) (string, bool) {
	prefix := requirementPrefix.FindString(code)
	if prefix == "" {
		return "", false
	}
	m := httpStatusRe.FindStringSubmatch(code[len(prefix):])
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ProgramIDs returns the program-ID-shaped tokens in text ("AGT-API-001",
// "CS_CHAT_01"), in order of appearance.
func ProgramIDs(text string) []string {
	var out []string
	for _, tok := range strings.FieldsFunc(text, func(r rune) bool {
		return !(r == '_' || r == '-' || r >= '0' && r <= '9' || r >= 'A' && r <= 'Z')
	}) {
		if programWhole.MatchString(tok) && !requirementWhole.MatchString(tok) {
			out = append(out, tok)
		}
	}
	return out
}
