package repair

import (
	"fmt"

	"github.com/agentstation/specgate/pkg/checker"
	"github.com/agentstation/specgate/pkg/constants"
	"github.com/agentstation/specgate/pkg/errors"
	"github.com/agentstation/specgate/pkg/grammar"
	"github.com/agentstation/specgate/pkg/tabular"
	"github.com/agentstation/specgate/pkg/workbook"
)

// appendErrorCodes adds every referenced but uncataloged error code to
// the error sheet with a placeholder description.
func appendErrorCodes(p *pass, report *checker.Report) error {
	unknown := report.ViolationsOf(checker.CodeUnknownErrorCode)
	if len(unknown) == 0 {
		return nil
	}
	name := p.sheets[workbook.SheetErrors]
	t := p.staged.Table(name)
	if t == nil {
		return errors.NewRepairError(name, 0, 0, "error catalog sheet not found")
	}

	existing := grammar.NewSet()
	for _, v := range tabular.Column(t, 1, 1, constants.ErrorCatalogWindow) {
		existing.Add(v)
	}
	row := tabular.LastUsedRow(t, maxScanCol, constants.LastUsedWindow) + 1
	for _, v := range unknown {
		code := v.Item
		if existing.Has(code) {
			continue
		}
		msg := fmt.Sprintf("[%s] 에러코드 %s 누락으로 자동 추가(TBD)", name, code)
		if p.ledger.has(msg) {
			continue
		}
		if row > constants.ErrorCatalogWindow {
			return errors.NewRepairError(name, row, 1,
				fmt.Sprintf("error code %s would land past row %d where the catalog is no longer read", code, constants.ErrorCatalogWindow))
		}
		status, ok := grammar.InferHTTPStatus(code)
		if !ok {
			status = "TBD"
		}
		t.SetRow(row, code, "TBD (근거 부족: 상세 메시지 원문 스펙 미정)", status, "자동 보완: 참조 무결성 맞춤")
		p.placeholder(name, "cross validation (screen -> error catalog)", msg)
		existing.Add(code)
		row++
	}
	return nil
}
