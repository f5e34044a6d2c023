package repair

import (
	"fmt"

	"github.com/agentstation/specgate/pkg/checker"
	"github.com/agentstation/specgate/pkg/constants"
	"github.com/agentstation/specgate/pkg/workbook"
)

// TOC text written on rebuild.
const (
	TOCTitle       = "UIUX 설계서 통합목차"
	tocDescription = "UIUX 설계 문서 구성 시트"
	tocAllPhases   = "전체"
	tocCols        = 4
)

// rebuildTOC rewrites the table of contents when the staged sheet list no
// longer matches it. Phases come from the screen records.
func rebuildTOC(p *pass, report *checker.Report) {
	name := p.sheets[workbook.SheetTOC]
	t := p.staged.Table(name)
	if t == nil {
		return
	}
	targets := checker.TOCTargets(p.staged, name)
	if checker.TOCEntries(t).Equal(targets) {
		return
	}

	phases := make(map[string]string, len(report.Screens))
	for _, r := range report.Screens {
		if r.Phase != "" {
			phases[r.Sheet] = r.Phase
		}
	}

	for _, c := range t.Coords() {
		if c.Row <= constants.TOCWindow && c.Col <= tocCols {
			t.Set(c.Row, c.Col, "")
		}
	}
	t.Set(1, 1, TOCTitle)
	t.SetRow(constants.TOCHeaderRow, "No", "시트명", "Phase", "설명")
	row := constants.TOCFirstRow
	for _, sheet := range p.staged.SheetNames() {
		if sheet == name {
			continue
		}
		phase, ok := phases[sheet]
		if !ok {
			phase = tocAllPhases
		}
		t.SetRow(row, fmt.Sprintf("%02d", row-constants.TOCFirstRow+1), sheet, phase, tocDescription)
		row++
	}
	p.record(name, "table of contents", fmt.Sprintf("통합목차 재작성 (%d개 시트)", row-constants.TOCFirstRow))
}
