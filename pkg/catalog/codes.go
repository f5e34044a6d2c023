package catalog

import (
	"strings"

	"github.com/agentstation/specgate/pkg/constants"
	"github.com/agentstation/specgate/pkg/grammar"
	"github.com/agentstation/specgate/pkg/tabular"
	"github.com/agentstation/specgate/pkg/workbook"
)

// Code groups of the canonical code sheet.
const (
	GroupRole      = "ROLE"
	GroupEventType = "SSE_EVENT_TYPE"
)

// WithWorkbook returns a copy of c extended with the catalogs kept inside
// the workbook itself: error codes from the error sheet, and roles and
// event types from the code sheet. Sheets absent from sheets contribute
// nothing, except that roles and event types fall back to their defaults.
func (c *Catalog) WithWorkbook(wb tabular.Workbook, sheets workbook.SheetMap) *Catalog {
	out := c.clone()

	codes := grammar.NewSet()
	if s, ok := sheet(wb, sheets, workbook.SheetErrors); ok {
		for row := 1; row <= min(s.MaxRow(), constants.ErrorCatalogWindow); row++ {
			for col := 1; col <= constants.ErrorCatalogCols; col++ {
				codes.Add(grammar.ErrorCodes(s.Cell(row, col))...)
			}
		}
	}
	out.sets[grammar.KindErrorCode] = codes

	roles, events := grammar.NewSet(), grammar.NewSet()
	if s, ok := sheet(wb, sheets, workbook.SheetCodes); ok {
		for row := 1; row <= min(s.MaxRow(), constants.CodeCatalogWindow); row++ {
			code := s.Cell(row, 2)
			if code == "" {
				continue
			}
			switch strings.ToUpper(s.Cell(row, 1)) {
			case GroupRole:
				roles.Add(strings.ToUpper(code))
			case GroupEventType:
				events.Add(strings.ToLower(code))
			}
		}
	}
	out.RolesDefaulted = roles.Len() == 0
	if out.RolesDefaulted {
		roles = grammar.KnownRoles.Clone()
	}
	out.EventsDefaulted = events.Len() == 0
	if out.EventsDefaulted {
		events = grammar.DefaultEventTypes.Clone()
	}
	out.sets[grammar.KindRole] = roles
	out.sets[grammar.KindEventType] = events

	screens := grammar.NewSet()
	for _, name := range wb.SheetNames() {
		if _, id, ok := grammar.ScreenIDFromSheetName(name); ok {
			screens.Add(id)
		}
	}
	out.sets[grammar.KindScreen] = screens

	return out
}

func sheet(wb tabular.Workbook, sheets workbook.SheetMap, key string) (tabular.Sheet, bool) {
	name, ok := sheets[key]
	if !ok {
		return nil, false
	}
	return wb.Sheet(name)
}
