package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/agentstation/specgate/internal/utils/fsutil"
	"github.com/agentstation/specgate/pkg/checker"
	"github.com/agentstation/specgate/pkg/constants"
)

// SummaryOptions bounds and styles the plain-text summary.
type SummaryOptions struct {
	// MaxExamples caps the items listed per category.
	MaxExamples int
	// MaxRisks caps the risk lines.
	MaxRisks int
	// Color enables ANSI colouring of statuses.
	Color bool
}

// DefaultSummaryOptions returns uncoloured options with the standard caps.
func DefaultSummaryOptions() SummaryOptions {
	return SummaryOptions{MaxExamples: constants.MaxExamples, MaxRisks: constants.MaxRisks}
}

// Risk is one risk line of the summary.
type Risk struct {
	Rule     string
	Label    string
	Location string
}

// risks lists the candidate risk lines in priority order.
var risks = []Risk{
	{checker.RuleConstraints, "공통 제약 표 누락", "화면 시트 하단 10. 프로젝트 공통 제약 섹션"},
	{checker.RuleErrorCodes, "에러코드 참조 불일치", "01_에러메시지코드 + 각 화면 8.예외사항"},
	{checker.RuleScreenID, "화면ID/시트명 불일치", "각 화면 시트 4행 화면 ID"},
	{checker.RuleTrace, "추적성 매트릭스 링크 누락", "91_추적성매트릭스 4행 이후"},
	{checker.RuleRequiredSheets, "필수 시트 누락", "00~93 필수 시트 구성"},
	{checker.RuleRequirementRefs, "ReqID 참조 불일치", "요구사항 정의서 + 각 화면 시트"},
	{checker.RuleUnmappedEndpoints, "API 미매핑 다수", "93_검증결과 B-4 미매핑 상세"},
	{checker.RuleUnmappedTables, "DB 미매핑 다수", "93_검증결과 B-4 미매핑 상세"},
	{checker.RuleUnmappedRequirements, "ReqID 미매핑 다수", "93_검증결과 B-4 미매핑 상세"},
}

// Risks returns up to limit risk lines for the failing checks of r.
func Risks(r *checker.Report, limit int) []Risk {
	var out []Risk
	for _, risk := range risks {
		if len(out) == limit {
			break
		}
		if c, ok := r.Check(risk.Rule); ok && c.Failed() {
			out = append(out, risk)
		}
	}
	return out
}

// topMissing lists the categories of the "top missing" block.
var topMissing = []struct {
	label string
	rule  string
}{
	{"ReqID", checker.RuleUnmappedRequirements},
	{"API", checker.RuleUnmappedEndpoints},
	{"DB", checker.RuleUnmappedTables},
	{"에러코드", checker.RuleErrorCodes},
}

// Examples joins up to limit items with ", " and notes how many were left
// out. No items yields "없음".
func Examples(items []string, limit int) string {
	if len(items) == 0 {
		return "없음"
	}
	if limit <= 0 || len(items) <= limit {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s (+%d)", strings.Join(items[:limit], ", "), len(items)-limit)
}

// WriteSummary writes the human-readable summary of d to w: the tally, a
// table of every check, bounded examples for each failing check, the top
// missing identifiers and the risk lines.
func WriteSummary(w io.Writer, d Document, opts SummaryOptions) error {
	pass := color.New(color.FgGreen, color.Bold)
	fail := color.New(color.FgRed, color.Bold)
	soft := color.New(color.FgYellow)
	for _, c := range []*color.Color{pass, fail, soft} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	paint := func(c checker.Check) string {
		switch {
		case !c.Failed():
			return pass.Sprint(c.Status)
		case c.Hard:
			return fail.Sprint(c.Status)
		default:
			return soft.Sprint(c.Status)
		}
	}

	verdict := pass.Sprint(d.Status)
	if d.Status == checker.StatusFail {
		verdict = fail.Sprint(d.Status)
	}
	if _, err := fmt.Fprintf(w, "[specgate] gate %s: PASS=%d FAIL=%d HARD_FAIL=%d\n",
		verdict, d.PassCount, d.FailCount, d.HardFailCount); err != nil {
		return err
	}

	table := tablewriter.NewTable(w)
	table.Header("Section", "Rule", "Class", "Gate", "Result", "Missing")
	for _, c := range d.Checks {
		gate := "soft"
		if c.Hard {
			gate = "hard"
		}
		if err := table.Append(c.Section, c.Rule, string(c.Class), gate, paint(c), strconv.Itoa(c.MissingCount)); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	var b strings.Builder
	if failed := d.Failed(); len(failed) > 0 {
		fmt.Fprintf(&b, "[specgate] 실패 항목 예시 (최대 %d개)\n", opts.MaxExamples)
		for _, c := range failed {
			fmt.Fprintf(&b, "- %s: %s\n", c.Rule, Examples(c.Items, opts.MaxExamples))
		}
	}
	fmt.Fprintf(&b, "[specgate] Top 누락 %d개\n", opts.MaxExamples)
	for _, t := range topMissing {
		c, _ := d.Check(t.rule)
		fmt.Fprintf(&b, "- %s: %s\n", t.label, Examples(c.Items, opts.MaxExamples))
	}
	fmt.Fprintf(&b, "[specgate] 위험 리스크 %d개\n", opts.MaxRisks)
	for i, risk := range Risks(&d.Report, opts.MaxRisks) {
		fmt.Fprintf(&b, "%d. %s @ %s\n", i+1, risk.Label, risk.Location)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSummaryFile writes an uncoloured summary to path atomically.
func WriteSummaryFile(path string, d Document, opts SummaryOptions) error {
	opts.Color = false
	var buf bytes.Buffer
	if err := WriteSummary(&buf, d, opts); err != nil {
		return err
	}
	return fsutil.WriteAtomic(path, buf.Bytes())
}
