package checker

import (
	"fmt"
	"strings"

	"github.com/agentstation/specgate/pkg/catalog"
	"github.com/agentstation/specgate/pkg/constants"
	"github.com/agentstation/specgate/pkg/grammar"
	"github.com/agentstation/specgate/pkg/screen"
	"github.com/agentstation/specgate/pkg/tabular"
	"github.com/agentstation/specgate/pkg/workbook"
)

// Rule IDs.
const (
	RuleRequiredSheets       = "required-sheets"
	RuleScreenID             = "screen-id"
	RuleMandatoryFields      = "mandatory-fields"
	RuleSections             = "required-sections"
	RuleConstraints          = "constraints-table"
	RuleErrorCodes           = "error-codes"
	RuleRoles                = "roles"
	RuleEventTypes           = "event-types"
	RuleRequirementRefs      = "requirement-refs"
	RuleTrace                = "trace-links"
	RuleTOC                  = "toc"
	RuleUnmappedEndpoints    = "unmapped-endpoints"
	RuleUnmappedTables       = "unmapped-tables"
	RuleUnmappedRequirements = "unmapped-requirements"
	RuleRegistry             = "registry"
	RuleFeatureRefs          = "feature-refs"
	RuleRemarkRefs           = "remark-refs"
	RuleTraceRefs            = "trace-refs"
	RuleAPIRoles             = "api-roles"
	RuleAccessLevels         = "access-levels"
	RuleProgramRefs          = "program-refs"
	RuleTerminology          = "terminology"
	RulePlaceholders         = "placeholders"
	RuleScanBounds           = "scan-bounds"
)

// DocWorkbook names the UI/UX workbook in locations.
const DocWorkbook = screen.DocWorkbook

// Trace matrix link columns, in column order starting at column 2.
var traceLinks = []string{"Screen", "API", "DB", "Telemetry"}

var rules = []Rule{
	{ID: RuleRequiredSheets, Section: "B1", Item: "필수 시트가 존재하는가", Class: ClassStructural, run: requiredSheets},
	{ID: RuleScreenID, Section: "B2", Item: "화면ID가 시트명 패턴과 일치하는가", Class: ClassIdentity, run: screenIDs},
	{ID: RuleMandatoryFields, Section: "B2", Item: "프로그램ID/API/권한/개발일(Phase) 필드 누락이 없는가", Class: ClassIdentity, run: mandatoryFields},
	{ID: RuleSections, Section: "B2", Item: "필수 섹션(입력/버튼/예외/단위테스트) 누락이 없는가", Class: ClassStructural, run: sections},
	{ID: RuleConstraints, Section: "B2", Item: "프로젝트 공통 제약 표가 모든 화면 시트에 존재하는가", Class: ClassStructural, run: constraints},
	{ID: RuleErrorCodes, Section: "B3", Item: "화면 시트 에러코드가 01_에러메시지코드와 일치하는가", Class: ClassReferential, run: errorCodes},
	{ID: RuleRoles, Section: "B3", Item: "화면 권한 값이 02_추가종합코드 ROLE 그룹과 일치하는가", Class: ClassReferential, run: roles},
	{ID: RuleEventTypes, Section: "B3", Item: "SSE 이벤트 타입이 02_추가종합코드(SSE_EVENT_TYPE)에 정의되어 있는가", Class: ClassReferential, run: eventTypes},
	{ID: RuleRequirementRefs, Section: "B3", Item: "화면 시트 ReqID가 요구사항 정의서에 존재하는가", Class: ClassReferential, run: requirementRefs},
	{ID: RuleTrace, Section: "B3", Item: "91_추적성매트릭스 ReqID→Screen→API→DB→Telemetry 링크가 최소 연결되는가", Class: ClassCompleteness, run: traceLinksRule},
	{ID: RuleTOC, Section: "B1", Item: "00_통합목차에 모든 시트가 등록되었는가", Class: ClassStructural, run: toc, note: tocNote},
	{ID: RuleUnmappedEndpoints, Section: "B4", Item: "API 미매핑 목록", Class: ClassCoverage, run: unmapped(grammar.KindEndpoint, CodeUnmappedEndpoint, catalog.DocAPI)},
	{ID: RuleUnmappedTables, Section: "B4", Item: "DB 미매핑 목록", Class: ClassCoverage, run: unmapped(grammar.KindTable, CodeUnmappedTable, catalog.DocDB)},
	{ID: RuleUnmappedRequirements, Section: "B4", Item: "ReqID 미매핑 목록", Class: ClassCoverage, run: unmapped(grammar.KindRequirement, CodeUnmappedRequirement, catalog.DocRequirements)},
	{ID: RuleRegistry, Section: "B5", Item: "요구사항 정의서 ReqID 형식/중복 오류가 없는가", Class: ClassConsistency, run: registry},
	{ID: RuleFeatureRefs, Section: "B5", Item: "기능 정의서 ReqID가 요구사항 정의서에 존재하는가", Class: ClassConsistency, run: featureRefs},
	{ID: RuleRemarkRefs, Section: "B5", Item: "API 비고 ReqID가 요구사항 정의서에 존재하는가", Class: ClassConsistency, run: remarkRefs},
	{ID: RuleTraceRefs, Section: "B5", Item: "91_추적성매트릭스 ReqID가 카탈로그에 존재하는가", Class: ClassConsistency, run: traceRefs},
	{ID: RuleAPIRoles, Section: "B5", Item: "API 권한 컬럼 값이 표준 ROLE과 일치하는가", Class: ClassConsistency, run: apiRoles},
	{ID: RuleAccessLevels, Section: "B5", Item: "API access_level 값이 표준(PUBLIC/AUTHENTICATED)과 일치하는가", Class: ClassConsistency, run: accessLevels},
	{ID: RuleProgramRefs, Section: "B5", Item: "화면 프로그램ID가 API 목록에 존재하는가", Class: ClassConsistency, run: programRefs},
	{ID: RuleTerminology, Section: "B5", Item: "폐기 용어가 화면 시트에 남아있지 않은가", Class: ClassConsistency, run: terminology},
	{ID: RulePlaceholders, Section: "B5", Item: "TBD/placeholder 잔존 화면이 없는가", Class: ClassInformational, run: placeholders},
	{ID: RuleScanBounds, Section: "B5", Item: "스캔 범위 밖 내용이 없는가", Class: ClassInformational, run: scanBounds},
}

func atSheet(sheet string) Location {
	return Location{Document: DocWorkbook, Sheet: sheet}
}

func requiredSheets(e *env) []Violation {
	var out []Violation
	for _, name := range e.missing {
		out = append(out, Violation{
			Code:     CodeMissingSheet,
			Item:     name,
			Message:  fmt.Sprintf("required sheet %s is missing", name),
			Location: atSheet(name),
		})
	}
	return out
}

func screenIDs(e *env) []Violation {
	row := e.screen.MustField(screen.FieldScreenID).Row
	var out []Violation
	for _, r := range e.records {
		if r.ExpectedID == "" || r.ExpectedID == r.ActualID {
			continue
		}
		msg := fmt.Sprintf("screen ID field reads %s but the sheet name implies %s", r.ActualID, r.ExpectedID)
		if r.ActualID == "" {
			msg = fmt.Sprintf("screen ID field is empty; the sheet name implies %s", r.ExpectedID)
		}
		out = append(out, Violation{
			Code:     CodeScreenIDMismatch,
			Item:     fmt.Sprintf("%s: expected=%s, actual=%s", r.Sheet, r.ExpectedID, r.ActualID),
			Message:  msg,
			Location: Location{Document: DocWorkbook, Sheet: r.Sheet, Row: row},
		})
	}
	return out
}

func mandatoryFields(e *env) []Violation {
	var out []Violation
	for _, r := range e.records {
		missing := r.MissingFields()
		if len(missing) == 0 {
			continue
		}
		out = append(out, Violation{
			Code:     CodeMandatoryField,
			Item:     fmt.Sprintf("%s: %s", r.Sheet, strings.Join(missing, ", ")),
			Message:  fmt.Sprintf("mandatory fields empty: %s", strings.Join(missing, ", ")),
			Location: atSheet(r.Sheet),
		})
	}
	return out
}

func sections(e *env) []Violation {
	var out []Violation
	for _, r := range e.records {
		missing := r.MissingSections()
		if len(missing) == 0 {
			continue
		}
		out = append(out, Violation{
			Code:     CodeMissingSection,
			Item:     fmt.Sprintf("%s: %s", r.Sheet, strings.Join(missing, ", ")),
			Message:  fmt.Sprintf("required sections missing: %s", strings.Join(missing, ", ")),
			Location: atSheet(r.Sheet),
		})
	}
	return out
}

func constraints(e *env) []Violation {
	var out []Violation
	for _, r := range e.records {
		if r.HasConstraints {
			continue
		}
		out = append(out, Violation{
			Code:     CodeMissingConstraints,
			Item:     r.Sheet,
			Message:  "project constraints table missing",
			Location: atSheet(r.Sheet),
		})
	}
	return out
}

// firstSheets maps each referenced identifier of kind to the first screen
// sheet that mentions it.
func firstSheets(records []screen.Record, kind grammar.Kind) map[string]string {
	out := make(map[string]string)
	for _, r := range records {
		for id := range r.Referenced[kind] {
			if _, seen := out[id]; !seen {
				out[id] = r.Sheet
			}
		}
	}
	return out
}

func unknownRefs(e *env, kind grammar.Kind, code Code, what string) []Violation {
	where := firstSheets(e.records, kind)
	unknown := screen.Referenced(e.records, kind).Minus(e.cat.Set(kind))
	var out []Violation
	for _, id := range unknown.Sorted() {
		out = append(out, Violation{
			Code:     code,
			Item:     id,
			Message:  fmt.Sprintf("%s %s is not in the catalog", what, id),
			Location: atSheet(where[id]),
		})
	}
	return out
}

func errorCodes(e *env) []Violation {
	return unknownRefs(e, grammar.KindErrorCode, CodeUnknownErrorCode, "error code")
}

func requirementRefs(e *env) []Violation {
	return unknownRefs(e, grammar.KindRequirement, CodeUnknownRequirement, "requirement")
}

func roles(e *env) []Violation {
	known := e.cat.Set(grammar.KindRole)
	var out []Violation
	for _, r := range e.records {
		if r.Role == "" || known.Has(r.Role) {
			continue
		}
		out = append(out, Violation{
			Code:     CodeUnknownRole,
			Item:     fmt.Sprintf("%s: %s", r.Sheet, r.Role),
			Message:  fmt.Sprintf("role %s is not a canonical role", r.Role),
			Location: atSheet(r.Sheet),
		})
	}
	return out
}

func eventTypes(e *env) []Violation {
	known := e.cat.Set(grammar.KindEventType)
	var out []Violation
	for _, r := range e.records {
		unknown := r.Referenced[grammar.KindEventType].Minus(known).Sorted()
		if len(unknown) == 0 {
			continue
		}
		out = append(out, Violation{
			Code:     CodeUnknownEventType,
			Item:     fmt.Sprintf("%s: %s", r.Sheet, strings.Join(unknown, ", ")),
			Message:  fmt.Sprintf("event types not defined: %s", strings.Join(unknown, ", ")),
			Location: atSheet(r.Sheet),
		})
	}
	return out
}

// traceRow is one requirement row of the trace matrix.
type traceRow struct {
	row   int
	links []string
}

// readTrace returns the trace matrix rows keyed by requirement ID. Links
// from duplicate rows are merged.
func readTrace(sh tabular.Sheet) map[string]*traceRow {
	out := make(map[string]*traceRow)
	for row := constants.TraceFirstRow; row <= min(sh.MaxRow(), constants.TraceWindow); row++ {
		id := sh.Cell(row, 1)
		if !grammar.Match(grammar.KindRequirement, id) {
			continue
		}
		tr, ok := out[id]
		if !ok {
			tr = &traceRow{row: row, links: make([]string, len(traceLinks))}
			out[id] = tr
		}
		for i := range traceLinks {
			if v := sh.Cell(row, i+2); v != "" && tr.links[i] == "" {
				tr.links[i] = v
			}
		}
	}
	return out
}

func traceLinksRule(e *env) []Violation {
	sh, ok := e.sheet(workbook.SheetTrace)
	if !ok {
		return nil
	}
	trace := readTrace(sh)
	var out []Violation
	for _, id := range e.cat.Set(grammar.KindRequirement).Sorted() {
		loc := atSheet(sh.Name())
		var missing []string
		if tr, ok := trace[id]; ok {
			loc.Row = tr.row
			for i, link := range tr.links {
				if link == "" {
					missing = append(missing, traceLinks[i])
				}
			}
		} else {
			missing = traceLinks
		}
		if len(missing) == 0 {
			continue
		}
		out = append(out, Violation{
			Code:     CodeIncompleteTrace,
			Item:     fmt.Sprintf("%s: %s", id, strings.Join(missing, ", ")),
			Message:  fmt.Sprintf("trace links missing for %s: %s", id, strings.Join(missing, ", ")),
			Location: loc,
		})
	}
	return out
}

// TOCEntries returns the sheet names listed in the table of contents.
func TOCEntries(sh tabular.Sheet) grammar.Set {
	entries := grammar.NewSet()
	for _, v := range tabular.Column(sh, 2, constants.TOCFirstRow, constants.TOCWindow) {
		entries.Add(tabular.NormalizeName(v))
	}
	return entries
}

// TOCTargets returns the sheets a table of contents must list: every
// sheet except the table of contents itself.
func TOCTargets(wb tabular.Workbook, tocName string) grammar.Set {
	targets := grammar.NewSet()
	for _, name := range wb.SheetNames() {
		if name != tocName {
			targets.Add(name)
		}
	}
	return targets
}

func toc(e *env) []Violation {
	tocName := e.sheets[workbook.SheetTOC]
	targets := TOCTargets(e.wb, tocName)
	entries := grammar.NewSet()
	if sh, ok := e.sheet(workbook.SheetTOC); ok {
		entries = TOCEntries(sh)
	}

	var out []Violation
	for _, name := range targets.Minus(entries).Sorted() {
		out = append(out, Violation{
			Code:     CodeTOCMissing,
			Item:     name,
			Message:  fmt.Sprintf("sheet %s is not listed in the table of contents", name),
			Location: atSheet(tocName),
		})
	}
	for _, name := range entries.Minus(targets).Sorted() {
		out = append(out, Violation{
			Code:     CodeTOCExtra,
			Item:     name,
			Message:  fmt.Sprintf("table of contents lists %s which does not exist", name),
			Location: atSheet(tocName),
		})
	}
	return out
}

func tocNote(vs []Violation) string {
	missing, extra := 0, 0
	for _, v := range vs {
		if v.Code == CodeTOCMissing {
			missing++
		} else {
			extra++
		}
	}
	return fmt.Sprintf("missing:%d, extra:%d", missing, extra)
}

func unmapped(kind grammar.Kind, code Code, doc string) func(*env) []Violation {
	return func(e *env) []Violation {
		var out []Violation
		for _, id := range e.cat.Set(kind).Minus(screen.Referenced(e.records, kind)).Sorted() {
			out = append(out, Violation{
				Code:     code,
				Item:     id,
				Message:  fmt.Sprintf("%s is never referenced by a screen", id),
				Location: Location{Document: doc},
			})
		}
		return out
	}
}
