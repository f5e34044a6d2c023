package checker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/specgate/internal/fixture"
	"github.com/agentstation/specgate/pkg/catalog"
	"github.com/agentstation/specgate/pkg/grammar"
	"github.com/agentstation/specgate/pkg/tabular"
	"github.com/agentstation/specgate/pkg/workbook"
)

func run(t *testing.T, cat *catalog.Catalog, wb tabular.Workbook, opts ...Option) *Report {
	t.Helper()
	r, err := New(opts...).Check(context.Background(), cat, wb)
	require.NoError(t, err)
	return r
}

func TestCheckCleanWorkbookPasses(t *testing.T) {
	src := fixture.DefaultSources()
	r := run(t, src.Catalog(t), src.CleanWorkbook())

	for _, c := range r.Checks {
		assert.Equal(t, StatusPass, c.Status, "%s: %v", c.Rule, c.Items)
	}
	assert.Equal(t, len(rules), r.PassCount)
	assert.Zero(t, r.FailCount)
	assert.Empty(t, r.Violations)
	assert.Equal(t, []string{"05_AGT003_상담"}, r.ScreenSheets)
	assert.Empty(t, r.MissingSheets)
}

func TestCheckRuleOrder(t *testing.T) {
	src := fixture.DefaultSources()
	r := run(t, src.Catalog(t), src.CleanWorkbook())

	var got []string
	for _, c := range r.Checks {
		got = append(got, c.Rule)
	}
	assert.Equal(t, []string{
		RuleRequiredSheets, RuleScreenID, RuleMandatoryFields, RuleSections, RuleConstraints,
		RuleErrorCodes, RuleRoles, RuleEventTypes, RuleRequirementRefs, RuleTrace, RuleTOC,
		RuleUnmappedEndpoints, RuleUnmappedTables, RuleUnmappedRequirements,
		RuleRegistry, RuleFeatureRefs, RuleRemarkRefs, RuleTraceRefs, RuleAPIRoles,
		RuleAccessLevels, RuleProgramRefs, RuleTerminology, RulePlaceholders, RuleScanBounds,
	}, got)
	assert.Len(t, Rules(), len(got))
}

func TestCheckScreenIDMismatch(t *testing.T) {
	src := fixture.DefaultSources()
	sc := src.DefaultScreen()
	sc.ID = "AGT-002"
	r := run(t, src.Catalog(t), src.Workbook(sc))

	vs := r.ViolationsOf(CodeScreenIDMismatch)
	require.Len(t, vs, 1)
	assert.Equal(t, "05_AGT003_상담: expected=AGT-003, actual=AGT-002", vs[0].Item)
	assert.Equal(t, Location{Document: DocWorkbook, Sheet: "05_AGT003_상담", Row: 4}, vs[0].Location)
	assert.Equal(t, ClassIdentity, vs[0].Class)

	c, ok := r.Check(RuleScreenID)
	require.True(t, ok)
	assert.Equal(t, StatusFail, c.Status)
	assert.Equal(t, 1, c.MissingCount)

	// The mismatched field value is not a requirement reference.
	assert.Empty(t, r.ViolationsOf(CodeUnknownRequirement))
}

func TestCheckEmptyScreenID(t *testing.T) {
	src := fixture.DefaultSources()
	sc := src.DefaultScreen()
	sc.ID = ""
	r := run(t, src.Catalog(t), src.Workbook(sc))

	vs := r.ViolationsOf(CodeScreenIDMismatch)
	require.Len(t, vs, 1)
	assert.Equal(t, "05_AGT003_상담: expected=AGT-003, actual=", vs[0].Item)
	assert.Contains(t, vs[0].Message, "empty")
}

func TestCheckUnknownAndUnmappedRequirements(t *testing.T) {
	src := fixture.DefaultSources()
	src.Features = nil
	sc := src.DefaultScreen()
	sc.Refs = []string{"AI-001", "AI-003", fixture.ErrorCode, "TB_MESSAGE", "TB_SESSION",
		"POST /v1/chat/sessions", "GET /v1/chat/sessions/{session_id}/stream"}
	r := run(t, src.Catalog(t), src.Workbook(sc))

	c, _ := r.Check(RuleRequirementRefs)
	assert.Equal(t, []string{"AI-003"}, c.Items)
	assert.Equal(t, ClassReferential, c.Class)
	unknown := r.ViolationsOf(CodeUnknownRequirement)
	require.Len(t, unknown, 1)
	assert.Equal(t, "05_AGT003_상담", unknown[0].Location.Sheet)

	c, _ = r.Check(RuleUnmappedRequirements)
	assert.Equal(t, []string{"AI-002"}, c.Items)
	assert.Equal(t, ClassCoverage, c.Class)
}

func TestCheckBareScreen(t *testing.T) {
	src := fixture.DefaultSources()
	sc := src.DefaultScreen()
	sc.Bare = true
	sc.Program = ""
	sc.Role = "TBD"
	r := run(t, src.Catalog(t), src.Workbook(sc))

	c, _ := r.Check(RuleMandatoryFields)
	assert.Equal(t, []string{"05_AGT003_상담: program_id, role"}, c.Items)
	c, _ = r.Check(RuleSections)
	assert.Equal(t, []string{"05_AGT003_상담: input, button, exception, test"}, c.Items)
	c, _ = r.Check(RuleConstraints)
	assert.Equal(t, []string{"05_AGT003_상담"}, c.Items)
	c, _ = r.Check(RulePlaceholders)
	assert.Equal(t, []string{"05_AGT003_상담: 1"}, c.Items)
}

func TestCheckReferentialValidity(t *testing.T) {
	src := fixture.DefaultSources()
	sc := src.DefaultScreen()
	sc.Role = "SUPERVISOR"
	sc.Refs = append(sc.Refs, "AI-002-500-INTERNAL", "event_type=chunk")
	r := run(t, src.Catalog(t), src.Workbook(sc))

	c, _ := r.Check(RuleErrorCodes)
	assert.Equal(t, []string{"AI-002-500-INTERNAL"}, c.Items)
	c, _ = r.Check(RuleRoles)
	assert.Equal(t, []string{"05_AGT003_상담: SUPERVISOR"}, c.Items)
	c, _ = r.Check(RuleEventTypes)
	assert.Equal(t, []string{"05_AGT003_상담: chunk"}, c.Items)
}

func TestCheckMissingSheetsAndTOC(t *testing.T) {
	src := fixture.DefaultSources()
	wb := src.CleanWorkbook()
	clone := tabular.NewBook()
	for _, name := range wb.SheetNames() {
		if name == "38_권한 별 UI" {
			continue
		}
		dst := clone.AddSheet(name)
		from := wb.Table(name)
		for _, c := range from.Coords() {
			dst.Set(c.Row, c.Col, from.Raw(c.Row, c.Col))
		}
	}
	clone.AddSheet("99_메모")
	r := run(t, src.Catalog(t), clone)

	assert.Equal(t, []string{"38_권한 별 UI"}, r.MissingSheets)
	c, _ := r.Check(RuleRequiredSheets)
	assert.Equal(t, []string{"38_권한 별 UI"}, c.Items)

	c, _ = r.Check(RuleTOC)
	assert.Equal(t, "missing:1, extra:1", c.Note)
	assert.Equal(t, 2, c.MissingCount)
	assert.Len(t, r.ViolationsOf(CodeTOCMissing), 1)
	assert.Equal(t, "99_메모", r.ViolationsOf(CodeTOCMissing)[0].Item)
	assert.Equal(t, "38_권한 별 UI", r.ViolationsOf(CodeTOCExtra)[0].Item)
}

func TestCheckTraceLinks(t *testing.T) {
	src := fixture.DefaultSources()
	wb := src.CleanWorkbook()
	trace := wb.Table("91_추적성매트릭스")
	trace.Set(4, 4, "")
	trace.SetRow(5, "", "", "", "", "")
	trace.SetRow(6, "ZZ-999", "AGT-003", "x", "y", "z")
	r := run(t, src.Catalog(t), wb)

	c, _ := r.Check(RuleTrace)
	assert.Equal(t, []string{"AI-001: DB", "AI-002: Screen, API, DB, Telemetry"}, c.Items)
	assert.Equal(t, ClassCompleteness, c.Class)
	v := r.ViolationsOf(CodeIncompleteTrace)
	assert.Equal(t, 4, v[0].Location.Row)
	assert.Zero(t, v[1].Location.Row)

	c, _ = r.Check(RuleTraceRefs)
	assert.Equal(t, []string{"ZZ-999"}, c.Items)
}

func TestCheckSourceConsistency(t *testing.T) {
	src := fixture.DefaultSources()
	src.Requirements = append(src.Requirements, "bad", "AI-001")
	src.Features = append(src.Features, "SEC-001")
	src.APIs[0].Remarks = "ReqID: AI-001, RAG-009; access_level=INTERNAL"
	src.APIs[1].Role = "AGENT/SUPERVISOR"
	r := run(t, src.Catalog(t), src.CleanWorkbook())

	c, _ := r.Check(RuleRegistry)
	assert.Equal(t, []string{"duplicate: AI-001", "malformed: bad"}, c.Items)
	c, _ = r.Check(RuleFeatureRefs)
	assert.Equal(t, []string{"SEC-001"}, c.Items)
	c, _ = r.Check(RuleRemarkRefs)
	assert.Equal(t, []string{"RAG-009"}, c.Items)
	c, _ = r.Check(RuleAPIRoles)
	assert.Equal(t, []string{"SUPERVISOR"}, c.Items)
	c, _ = r.Check(RuleAccessLevels)
	assert.Equal(t, []string{"POST /v1/chat/sessions: INTERNAL"}, c.Items)
	assert.Equal(t, ClassConsistency, c.Class)
}

func TestCheckProgramRefsAndTerminology(t *testing.T) {
	src := fixture.DefaultSources()
	sc := src.DefaultScreen()
	sc.Program = "AGT_API_99"
	sc.Refs = append(sc.Refs, "secret: key_ref")
	terms, err := grammar.NewTerminology(grammar.DefaultTerms)
	require.NoError(t, err)
	r := run(t, src.Catalog(t), src.Workbook(sc), WithTerminology(terms))

	c, _ := r.Check(RuleProgramRefs)
	assert.Equal(t, []string{"05_AGT003_상담: AGT_API_99"}, c.Items)
	c, _ = r.Check(RuleTerminology)
	assert.Equal(t, []string{"05_AGT003_상담: key_ref"}, c.Items)
}

func TestCheckDeterministic(t *testing.T) {
	src := fixture.DefaultSources()
	sc := src.DefaultScreen()
	sc.Refs = append(sc.Refs, "AI-009", "AI-008", "AI-002-500-X", "AI-001-404-Y")
	cat := src.Catalog(t)
	wb := src.Workbook(sc)

	a := run(t, cat, wb)
	b := run(t, cat, wb)
	assert.Equal(t, a, b)

	c, _ := a.Check(RuleErrorCodes)
	assert.Equal(t, []string{"AI-001-404-Y", "AI-002-500-X"}, c.Items)
}

func TestCheckNotes(t *testing.T) {
	assert.Equal(t, "a; b", examplesNote([]string{"a", "b"}))
	assert.Equal(t, "a; b; c (+2)", examplesNote([]string{"a", "b", "c", "d", "e"}))
}

func TestCheckInvalidLayout(t *testing.T) {
	src := fixture.DefaultSources()
	bad := workbook.Layout{Sheets: []workbook.RequiredSheet{{Key: "toc"}}}
	_, err := New(WithLayout(bad)).Check(context.Background(), src.Catalog(t), src.CleanWorkbook())
	assert.Error(t, err)
}

func TestReportTally(t *testing.T) {
	r := &Report{Checks: []Check{
		{Status: StatusPass},
		{Status: StatusFail, Hard: true},
		{Status: StatusFail},
	}}
	r.Tally()
	assert.Equal(t, 1, r.PassCount)
	assert.Equal(t, 2, r.FailCount)
	assert.Equal(t, 1, r.HardFailCount)
	assert.Len(t, r.Failed(), 2)
}

func TestLocationString(t *testing.T) {
	assert.Equal(t, "s!3", Location{Sheet: "s", Row: 3}.String())
	assert.Equal(t, "s", Location{Sheet: "s"}.String())
	assert.Equal(t, "api catalog", Location{Document: "api catalog"}.String())
}
