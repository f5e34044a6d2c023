package repair

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/agentstation/specgate/pkg/checker"
	"github.com/agentstation/specgate/pkg/logging"
	"github.com/agentstation/specgate/pkg/screen"
	"github.com/agentstation/specgate/pkg/tabular"
	"github.com/agentstation/specgate/pkg/workbook"
)

// maxTraceDetail bounds the trace gaps listed on the validation sheet.
const maxTraceDetail = 30

const none = "없음"

var unmappedDetail = []struct {
	label string
	rule  string
}{
	{"API 미매핑", checker.RuleUnmappedEndpoints},
	{"DB 미매핑", checker.RuleUnmappedTables},
	{"ReqID 미매핑", checker.RuleUnmappedRequirements},
}

var integrityDetail = []struct {
	label string
	rule  string
}{
	{"에러코드 불일치", checker.RuleErrorCodes},
	{"권한값 불일치", checker.RuleRoles},
	{"SSE 타입 불일치", checker.RuleEventTypes},
	{"ReqID 불일치", checker.RuleRequirementRefs},
	{"Trace 매트릭스 누락", checker.RuleTrace},
}

// Publish writes report onto the validation sheet and returns the diff.
// Content left over from an earlier run is cleared. Publishing the same
// report twice yields an empty plan the second time.
func (e *Engine) Publish(ctx context.Context, wb *tabular.Book, report *checker.Report) (*Plan, error) {
	staged := wb.Clone()
	sheets, _ := e.layout.Resolve(staged)
	name, ok := sheets[workbook.SheetValidation]
	if !ok {
		decl, _ := e.layout.Sheet(workbook.SheetValidation)
		name = staged.AddSheet(decl.DefaultName).Name()
	}
	t := staged.Table(name)
	for _, c := range t.Coords() {
		t.Set(c.Row, c.Col, "")
	}
	writeValidation(t, report)

	plan := &Plan{Ops: tabular.Diff(wb, staged), Entries: []Entry{}, Staged: staged}
	if !plan.Empty() {
		plan.Entries = append(plan.Entries, Entry{
			Target:  screen.DocWorkbook,
			Sheet:   name,
			Message: fmt.Sprintf("검증결과 갱신: PASS %d / FAIL %d", report.PassCount, report.FailCount),
			Source:  "gate report",
		})
	}
	logging.FromContext(ctx).Debug().
		Str("sheet", name).
		Int("ops", len(plan.Ops)).
		Msg("Validation sheet staged")
	return plan, nil
}

func writeValidation(t *tabular.Table, report *checker.Report) {
	t.Set(1, 1, t.Name())
	t.Set(2, 1, fmt.Sprintf("PASS %d / FAIL %d", report.PassCount, report.FailCount))

	row := 4
	t.SetRow(row, "분류", "검증 항목", "결과", "누락 개수", "비고")
	row++
	for _, c := range report.Checks {
		t.SetRow(row, c.Section, c.Item, string(c.Status), strconv.Itoa(c.MissingCount), c.Note)
		row++
	}

	row += 2
	t.Set(row, 1, "[B-4] 미매핑 상세 리스트")
	row++
	t.SetRow(row, "타입", "항목", "비고")
	row++
	for _, d := range unmappedDetail {
		c, _ := report.Check(d.rule)
		if len(c.Items) == 0 {
			t.SetRow(row, d.label, none, string(checker.StatusPass))
			row++
			continue
		}
		for _, item := range c.Items {
			t.SetRow(row, d.label, item)
			row++
		}
	}

	row += 2
	t.Set(row, 1, "[참조 무결성 상세]")
	row++
	for _, d := range integrityDetail {
		c, _ := report.Check(d.rule)
		items := c.Items
		if d.rule == checker.RuleTrace && len(items) > maxTraceDetail {
			items = items[:maxTraceDetail]
		}
		value := none
		if len(items) > 0 {
			value = strings.Join(items, "; ")
		}
		t.SetRow(row, d.label, value)
		row++
	}
}
