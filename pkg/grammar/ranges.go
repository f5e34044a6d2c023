package grammar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/agentstation/specgate/pkg/constants"
)

// rangeRe matches compressed identifier ranges: "AI-001~005" and
// "AI-001~AI-005". The prefix may be a single letter so ad hoc ranges
// such as "X-001~003" expand too.
var rangeRe = regexp.MustCompile(`\b([A-Z]{1,5})-(\d{3})\s*~\s*(?:([A-Z]{1,5})-)?(\d{3})\b`)

// ExpandRange expands a single compressed range token into its members.
// It returns false, and no members, for anything that is not a well-formed
// range: mismatched prefixes, an end before the start, or a span wider
// than constants.MaxRangeSpan.
func ExpandRange(token string) ([]string, bool) {
	m := rangeRe.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil || len(m[0]) != len(strings.TrimSpace(token)) {
		return nil, false
	}
	return expand(m)
}

func expand(m []string) ([]string, bool) {
	prefix, endPrefix := m[1], m[3]
	if endPrefix != "" && endPrefix != prefix {
		return nil, false
	}
	start, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, false
	}
	end, err := strconv.Atoi(m[4])
	if err != nil {
		return nil, false
	}
	if end < start || end-start+1 > constants.MaxRangeSpan {
		return nil, false
	}
	width := len(m[2])
	out := make([]string, 0, end-start+1)
	for n := start; n <= end; n++ {
		out = append(out, fmt.Sprintf("%s-%0*d", prefix, width, n))
	}
	return out, true
}

// ExpandRanges rewrites every well-formed compressed range in text as a
// comma-separated list of its members. Malformed ranges are left as written.
// Applying it twice yields the same text as applying it once.
func ExpandRanges(text string) string {
	if !strings.Contains(text, "~") {
		return text
	}
	return rangeRe.ReplaceAllStringFunc(text, func(match string) string {
		members, ok := expand(rangeRe.FindStringSubmatch(match))
		if !ok {
			return match
		}
		return strings.Join(members, ", ")
	})
}
