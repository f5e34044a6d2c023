package repair

import (
	"fmt"
	"strings"

	"github.com/agentstation/specgate/pkg/constants"
	"github.com/agentstation/specgate/pkg/errors"
	"github.com/agentstation/specgate/pkg/grammar"
	"github.com/agentstation/specgate/pkg/screen"
	"github.com/agentstation/specgate/pkg/tabular"
)

// Labels written when a metadata label cell is empty.
var fieldLabels = map[string]string{
	screen.FieldScreenID: "화면 ID",
	screen.FieldProgram:  "프로그램 ID",
	screen.FieldAPI:      "API",
	screen.FieldRole:     "권한",
	screen.FieldPhase:    "개발일(Phase)",
}

// ConstraintsTitle heads an inserted constraints table.
const ConstraintsTitle = "10. 프로젝트 공통 제약 섹션"

var constraintHeaders = []string{"항목", "UI에서의 표현(보이는 것/숨기는 것)", "관련 ReqID", "관련 API", "관련 DB/Telemetry"}

var constraintRows = [][2]string{
	{"Fail-Closed", "스키마/근거/정책 실패 시 전송 차단 + 안전 응답만 노출"},
	{"PII", "입력/로그/복사/다운로드 경로 전부 마스킹"},
	{"trace_id", "요청-검색-도구-응답 전 구간 trace_id 연결"},
	{"RBAC", "UI 제어 + 서버 403 최종 강제"},
	{"Budget", "429/Retry-After/쿨다운/남은 예산 표시"},
	{"승인버전", "approved 버전만 운영 경로 사용, 롤백 제공"},
}

const missingAPIRef = "TBD (근거 부족: 화면 API 필드 확인 필요)"

// maxScanCol is the column span checked when locating the last used row.
const maxScanCol = 8

func (e *Engine) repairScreen(p *pass, rec screen.Record) error {
	t := p.staged.Table(rec.Sheet)
	if t == nil {
		return errors.NewRepairError(rec.Sheet, 0, 0, "screen sheet disappeared from the workbook")
	}
	if err := e.fixScreenID(p, t, rec); err != nil {
		return err
	}
	for _, sec := range screen.Sections {
		if rec.Sections[sec.Key] {
			continue
		}
		if err := e.insertSection(p, t, sec); err != nil {
			return err
		}
	}
	if !rec.HasConstraints {
		if err := e.insertConstraints(p, t); err != nil {
			return err
		}
	}
	return e.backfill(p, t)
}

// fixScreenID writes the ID the sheet name implies into a wrong or empty
// screen ID field. The sheet name is never changed.
func (e *Engine) fixScreenID(p *pass, t *tabular.Table, rec screen.Record) error {
	if rec.ExpectedID == "" || rec.ExpectedID == rec.ActualID {
		return nil
	}
	f := e.screen.MustField(screen.FieldScreenID)
	if err := writeField(t, f, rec.ExpectedID); err != nil {
		return err
	}
	msg := fmt.Sprintf("화면 ID %s를 시트명 기준 %s로 정정", rec.ActualID, rec.ExpectedID)
	if rec.ActualID == "" {
		msg = fmt.Sprintf("화면 ID 누락으로 시트명 기준 %s 기입", rec.ExpectedID)
	}
	p.record(t.Name(), "screen id", msg)
	return nil
}

// writeField stores value in the value cell of f. An empty label cell
// gets the standard label; a label cell naming something else means the
// fixed layout no longer holds.
func writeField(t *tabular.Table, f tabular.Field, value string) error {
	label, empty, matches := f.LabelState(t)
	switch {
	case empty:
		t.Set(f.Row, f.LabelCol, fieldLabels[f.Name])
	case !matches:
		return errors.NewRepairError(t.Name(), f.Row, f.LabelCol,
			fmt.Sprintf("expected a %q label, found %q", f.Label, label))
	case f.Read(t).Origin == tabular.OriginInline:
		// The stale inline value would still be read if the value cell is
		// ever cleared; keep only the label.
		t.Set(f.Row, f.LabelCol, fieldLabels[f.Name])
	}
	t.Set(f.Row, f.ValueCol, value)
	return nil
}

// appendRow returns the row two below the last used row and checks that a
// block starting there stays inside window.
func appendRow(t *tabular.Table, window int, what string) (int, error) {
	start := tabular.LastUsedRow(t, maxScanCol, constants.LastUsedWindow) + 2
	if start > window {
		return 0, errors.NewRepairError(t.Name(), start, 1,
			fmt.Sprintf("%s would start past row %d where it is no longer detected", what, window))
	}
	return start, nil
}

func (e *Engine) insertSection(p *pass, t *tabular.Table, sec screen.Section) error {
	msg := fmt.Sprintf("[%s] %s 누락으로 자동 추가됨. 세부값은 TBD로 채움", t.Name(), sec.Title)
	if p.ledger.has(msg) {
		return nil
	}
	start, err := appendRow(t, e.screen.SectionWindow, sec.Title)
	if err != nil {
		return err
	}
	p.placeholder(t.Name(), "screen sheet self-check", msg)
	t.Set(start, 1, sec.Title)
	t.SetRow(start+1, sec.Headers...)
	t.SetRow(start+2, sec.Placeholder...)
	return nil
}

func (e *Engine) insertConstraints(p *pass, t *tabular.Table) error {
	msg := fmt.Sprintf("[%s] %s 누락으로 자동 추가됨. 관련 ReqID/DB는 TBD로 채움", t.Name(), ConstraintsTitle)
	if p.ledger.has(msg) {
		return nil
	}
	start, err := appendRow(t, e.screen.ConstraintWindow, ConstraintsTitle)
	if err != nil {
		return err
	}
	p.placeholder(t.Name(), "screen sheet self-check", msg)

	apiRef := missingAPIRef
	api := e.screen.MustField(screen.FieldAPI).Read(t).Text
	if refs := grammar.MethodEndpoints(api); len(refs) > 0 {
		apiRef = strings.Join(refs[:min(2, len(refs))], ", ")
	}

	t.Set(start, 1, ConstraintsTitle)
	t.SetRow(start+1, constraintHeaders...)
	for i, r := range constraintRows {
		t.SetRow(start+2+i, r[0], r[1], "TBD", apiRef, "TBD")
	}
	return nil
}

// backfill writes a placeholder into every empty mandatory field.
func (e *Engine) backfill(p *pass, t *tabular.Table) error {
	for _, name := range screen.MandatoryFields {
		f := e.screen.MustField(name)
		if f.Read(t).Text != "" {
			continue
		}
		label := fieldLabels[name]
		msg := fmt.Sprintf("[%s] %s 값이 없어 TBD로 보완", t.Name(), label)
		if p.ledger.has(msg) {
			continue
		}
		if err := writeField(t, f, fmt.Sprintf("TBD (근거 부족: %s 원본 스펙 미기재)", label)); err != nil {
			return err
		}
		p.placeholder(t.Name(), "screen mandatory field", msg)
	}
	return nil
}
