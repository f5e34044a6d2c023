package gate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/specgate/internal/fixture"
	"github.com/agentstation/specgate/pkg/catalog"
	"github.com/agentstation/specgate/pkg/checker"
	"github.com/agentstation/specgate/pkg/errors"
	"github.com/agentstation/specgate/pkg/report"
	"github.com/agentstation/specgate/pkg/tabular"
	"github.com/agentstation/specgate/pkg/tabular/xlsx"
)

const screenSheet = "05_AGT003_상담"

type env struct {
	dir     string
	sources catalog.Sources
	book    string
}

func setup(t *testing.T, wb func(fixture.Sources) *tabular.Book) env {
	t.Helper()
	dir := t.TempDir()
	src := fixture.DefaultSources()
	e := env{dir: dir, sources: src.Write(t, dir), book: filepath.Join(dir, "CS_RAG_UI_UX_v1.xlsx")}
	require.NoError(t, xlsx.Save(e.book, wb(src)))
	return e
}

func (e env) gate(opts ...Option) *Gate {
	return New(catalog.NewLoader(e.sources), xlsx.NewStore(e.book), opts...)
}

func broken(src fixture.Sources) *tabular.Book {
	sc := src.DefaultScreen()
	sc.Bare = true
	sc.Program = ""
	sc.ID = "AGT-002"
	sc.Refs = append(sc.Refs, "AI-002-500-INTERNAL", "AI-001~002")
	return fixture.Without(src.Workbook(sc), "38_권한 별 UI")
}

func status(t *testing.T, r *checker.Report, rule string) checker.Status {
	t.Helper()
	c, ok := r.Check(rule)
	require.True(t, ok, rule)
	return c.Status
}

func TestCheckClean(t *testing.T) {
	e := setup(t, fixture.Sources.CleanWorkbook)

	res, err := e.gate().Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, checker.StatusPass, res.Document.Status)
	assert.Zero(t, res.Report.FailCount)
	assert.Equal(t, errors.ExitOK, res.ExitCode())
	assert.NoError(t, res.Err())
	assert.Nil(t, res.Changes)
	assert.False(t, res.Document.Repaired)
}

func TestCheckDoesNotWrite(t *testing.T) {
	e := setup(t, broken)
	before, err := os.ReadFile(e.book)
	require.NoError(t, err)

	res, err := e.gate().Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, checker.StatusFail, res.Document.Status)
	assert.Equal(t, errors.ExitFailed, res.ExitCode())
	assert.True(t, errors.IsGateFailed(res.Err()))

	after, err := os.ReadFile(e.book)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRepairClosesGapsAndIsIdempotent(t *testing.T) {
	e := setup(t, broken)
	ctx := context.Background()

	first, err := e.gate().Repair(ctx)
	require.NoError(t, err)
	require.NotNil(t, first.Changes)
	assert.NotEmpty(t, first.Changes.Entries)
	assert.Len(t, first.Plans, 2, "repair plan and validation sheet")
	assert.True(t, first.Document.Repaired)

	for _, rule := range []string{
		checker.RuleRequiredSheets, checker.RuleScreenID, checker.RuleSections,
		checker.RuleConstraints, checker.RuleErrorCodes, checker.RuleTOC,
	} {
		assert.Equal(t, checker.StatusPass, status(t, first.Report, rule), rule)
	}
	assert.Equal(t, errors.ExitOK, first.ExitCode())

	book, err := xlsx.Load(ctx, e.book)
	require.NoError(t, err)
	s, ok := book.Sheet(screenSheet)
	require.True(t, ok)
	assert.Equal(t, "AGT-003", s.Cell(4, 2), "field is corrected, the sheet name is kept")
	v, ok := book.Sheet("93_검증결과")
	require.True(t, ok)
	assert.Contains(t, v.Cell(2, 1), "PASS ")

	before, err := os.ReadFile(e.book)
	require.NoError(t, err)

	second, err := e.gate().Repair(ctx)
	require.NoError(t, err)
	assert.Empty(t, second.Changes.Entries)
	assert.Empty(t, second.Plans)
	assert.Zero(t, second.Changes.CellsChanged)

	after, err := os.ReadFile(e.book)
	require.NoError(t, err)
	assert.Equal(t, before, after, "second repair leaves the workbook untouched")
	assert.Equal(t, first.Report.Checks, second.Report.Checks)
}

func TestRepairFillsEmptyScreenID(t *testing.T) {
	e := setup(t, func(src fixture.Sources) *tabular.Book {
		sc := src.DefaultScreen()
		sc.ID = ""
		return src.Workbook(sc)
	})
	ctx := context.Background()

	checked, err := e.gate().Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, checker.StatusFail, status(t, checked.Report, checker.RuleScreenID))
	assert.Equal(t, errors.ExitFailed, checked.ExitCode())

	repaired, err := e.gate().Repair(ctx)
	require.NoError(t, err)
	assert.Equal(t, checker.StatusPass, status(t, repaired.Report, checker.RuleScreenID))
	require.Len(t, repaired.Report.Screens, 1)
	assert.Equal(t, repaired.Report.Screens[0].ExpectedID, repaired.Report.Screens[0].ActualID)

	book, err := xlsx.Load(ctx, e.book)
	require.NoError(t, err)
	s, ok := book.Sheet(screenSheet)
	require.True(t, ok)
	assert.Equal(t, "AGT-003", s.Cell(4, 2))

	again, err := e.gate().Repair(ctx)
	require.NoError(t, err)
	assert.Empty(t, again.Changes.Entries)
}

func TestProgramIDIsNotARequirementReference(t *testing.T) {
	e := setup(t, func(src fixture.Sources) *tabular.Book {
		sc := src.DefaultScreen()
		sc.Refs = append(sc.Refs, "호출 프로그램: AGT-API-001")
		return src.Workbook(sc)
	})

	res, err := e.gate().Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, checker.StatusPass, status(t, res.Report, checker.RuleRequirementRefs))
	assert.Empty(t, res.Report.ViolationsOf(checker.CodeUnknownRequirement))
	assert.Equal(t, errors.ExitOK, res.ExitCode())
}

func TestRepairWithoutPublish(t *testing.T) {
	e := setup(t, broken)

	res, err := e.gate(WithPublish(false)).Repair(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Plans, 1)

	book, err := xlsx.Load(context.Background(), e.book)
	require.NoError(t, err)
	v, _ := book.Sheet("93_검증결과")
	assert.Empty(t, v.Cell(2, 1))
}

func TestMissingSourceIsFatal(t *testing.T) {
	e := setup(t, fixture.Sources.CleanWorkbook)
	require.NoError(t, os.Remove(e.sources.DB))

	_, err := e.gate().Check(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsSourceMissing(err))
	assert.Equal(t, errors.ExitFatal, errors.ExitCode(err))
}

func TestInvalidPolicyIsRejected(t *testing.T) {
	e := setup(t, fixture.Sources.CleanWorkbook)
	g := e.gate(WithPolicy(report.Policy{HardRules: []string{"bogus"}}))

	_, err := g.Check(context.Background())
	assert.True(t, errors.IsValidationError(err))
	_, err = g.Repair(context.Background())
	assert.True(t, errors.IsValidationError(err))
}

// racingStore rewrites the workbook behind the gate's back after every load.
type racingStore struct {
	*xlsx.Store
	t *testing.T
}

func (s racingStore) Load(ctx context.Context) (*tabular.Book, error) {
	b, err := s.Store.Load(ctx)
	if err != nil {
		return nil, err
	}
	other := b.Clone()
	other.Table(screenSheet).Set(200, 1, "edited elsewhere")
	require.NoError(s.t, xlsx.Save(s.Path(), other))
	return b, nil
}

func TestRepairDetectsConcurrentModification(t *testing.T) {
	e := setup(t, broken)
	g := New(catalog.NewLoader(e.sources), racingStore{Store: xlsx.NewStore(e.book), t: t})

	_, err := g.Repair(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsConcurrentModification(err))
	assert.Equal(t, errors.ExitFatal, errors.ExitCode(err))
}
