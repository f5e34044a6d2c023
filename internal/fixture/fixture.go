// Package fixture builds source documents and UI/UX workbooks for tests.
// The default sources and CleanWorkbook together pass every check.
package fixture

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentstation/specgate/pkg/catalog"
	"github.com/agentstation/specgate/pkg/errors"
	"github.com/agentstation/specgate/pkg/grammar"
	"github.com/agentstation/specgate/pkg/tabular"
	"github.com/agentstation/specgate/pkg/tabular/xlsx"
)

// API is one API catalog row.
type API struct {
	Program string
	Method  string
	Path    string
	Role    string
	Remarks string
}

// Sources describes the four source documents.
type Sources struct {
	Requirements []string
	Features     []string
	APIs         []API
	Tables       []string
}

// DefaultSources returns a small consistent source set.
func DefaultSources() Sources {
	return Sources{
		Requirements: []string{"AI-001", "AI-002"},
		Features:     []string{"AI-001"},
		APIs: []API{
			{Program: "AGT_API_01", Method: "POST", Path: "/v1/chat/sessions", Role: "AGENT", Remarks: "ReqID: AI-001"},
			{Program: "AGT_API_02", Method: "GET", Path: "/v1/chat/sessions/{session_id}/stream", Role: "AGENT", Remarks: "access_level=AUTHENTICATED"},
		},
		Tables: []string{"TB_MESSAGE", "TB_SESSION"},
	}
}

// File names of the sources inside a container.
const (
	RequirementsFile = "requirements.xlsx"
	FeaturesFile     = "features.xlsx"
	APIFile          = "api.xlsx"
	DBFile           = "db.xlsx"
)

// Paths returns the source paths relative to dir.
func Paths(dir string) catalog.Sources {
	return catalog.Sources{
		Requirements: filepath.Join(dir, RequirementsFile),
		Features:     filepath.Join(dir, FeaturesFile),
		API:          filepath.Join(dir, APIFile),
		DB:           filepath.Join(dir, DBFile),
	}
}

// Books renders the sources keyed by file name.
func (s Sources) Books() map[string]*tabular.Book {
	req := tabular.NewBook()
	rs := req.AddSheet("요구사항")
	rs.SetRow(1, "ReqID", "요구사항명")
	for i, id := range s.Requirements {
		rs.SetRow(i+2, id, "요구사항 "+id)
	}

	feat := tabular.NewBook()
	fs := feat.AddSheet("기능")
	fs.SetRow(1, "No", "기능명", "설명", "담당", "Phase", "요구사항ID")
	for i, id := range s.Features {
		fs.SetRow(i+2, fmt.Sprint(i+1), "기능", "설명", "담당", "PHASE1", id)
	}

	api := tabular.NewBook()
	api.AddSheet("표지").SetRow(1, "API 명세")
	as := api.AddSheet(catalog.APISheetName)
	as.SetRow(1, "No", "도메인", "프로그램ID", "API명", "Method", "Endpoint", "", "", "", "권한", "비고")
	for i, a := range s.APIs {
		as.SetRow(i+2, fmt.Sprint(i+1), "chat", a.Program, "api", a.Method, a.Path, "", "", "", a.Role, a.Remarks)
	}

	db := tabular.NewBook()
	db.AddSheet("ERD").SetRow(1, "테이블 목록")
	for _, t := range s.Tables {
		db.AddSheet(t).SetRow(1, "컬럼", "타입")
	}

	return map[string]*tabular.Book{
		RequirementsFile: req,
		FeaturesFile:     feat,
		APIFile:          api,
		DBFile:           db,
	}
}

// Opener serves the rendered sources from memory under Paths("").
func (s Sources) Opener() catalog.Opener {
	books := s.Books()
	return func(_ context.Context, path string) (tabular.Workbook, error) {
		b, ok := books[filepath.Base(path)]
		if !ok {
			return nil, errors.NewSourceMissingError("fixture", path, errors.ErrNotFound)
		}
		return b, nil
	}
}

// Catalog loads the sources from memory.
func (s Sources) Catalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	c, err := catalog.NewLoader(Paths(""), catalog.WithOpener(s.Opener())).Load(context.Background())
	require.NoError(t, err)
	return c
}

// Write saves the sources as xlsx files in dir and returns their paths.
func (s Sources) Write(t testing.TB, dir string) catalog.Sources {
	t.Helper()
	for name, b := range s.Books() {
		require.NoError(t, xlsx.Save(filepath.Join(dir, name), b))
	}
	return Paths(dir)
}

// Screen describes one screen sheet.
type Screen struct {
	Sheet   string
	ID      string
	Program string
	API     string
	Role    string
	Phase   string
	// Refs are written one per cell in the input section.
	Refs []string
	// Bare omits the required sections and the constraints table.
	Bare bool
}

// AddScreen writes a screen sheet into b.
func AddScreen(b *tabular.Book, sc Screen) *tabular.Table {
	t := b.AddSheet(sc.Sheet)
	t.SetRow(1, "화면 설계서")
	t.SetRow(4, "화면 ID", sc.ID)
	t.SetRow(5, "화면명", "상담 화면")
	t.SetRow(6, "프로그램 ID", sc.Program)
	t.SetRow(7, "API", sc.API)
	t.SetRow(8, "권한", sc.Role)
	t.SetRow(9, "개발일(Phase)", sc.Phase)

	row := 12
	if !sc.Bare {
		t.SetRow(row, "3. 입력/조회 필드 상세")
		t.SetRow(row+1, "필드명", "컴포넌트", "필수", "유효성 규칙", "에러 코드")
		row += 2
	}
	for i := 0; i < len(sc.Refs); i += 5 {
		end := min(i+5, len(sc.Refs))
		t.SetRow(row, sc.Refs[i:end]...)
		row++
	}
	if sc.Bare {
		return t
	}
	row++
	t.SetRow(row, "4. 버튼 동작 상세")
	t.SetRow(row+1, "버튼명", "이벤트", "동작", "성공 시", "실패 시")
	t.SetRow(row+2, "전송", "onClick", "메시지 전송", "응답 표시", "오류 표시")
	row += 4
	t.SetRow(row, "8. 예외사항 체크")
	t.SetRow(row+1, "No", "예외 상황", "에러 코드", "처리", "화면 표시")
	row += 3
	t.SetRow(row, "9. 단위테스트 시나리오")
	t.SetRow(row+1, "TC No", "테스트 항목", "테스트 데이터", "예상 결과", "Pass/Fail")
	row += 3
	t.SetRow(row, "10. 프로젝트 공통 제약 섹션")
	t.SetRow(row+1, "항목", "UI에서의 표현", "관련 ReqID", "관련 API", "관련 DB/Telemetry")
	return t
}

// ErrorCode is the error code the clean workbook catalogs and references.
const ErrorCode = "AI-001-400-INVALID"

// DefaultScreen returns a screen that references every identifier of s.
func (s Sources) DefaultScreen() Screen {
	refs := []string{ErrorCode, "SSE event: token"}
	refs = append(refs, s.Requirements...)
	refs = append(refs, s.Features...)
	refs = append(refs, s.Tables...)
	for _, a := range s.APIs {
		refs = append(refs, a.Method+" "+a.Path)
	}
	return Screen{
		Sheet:   "05_AGT003_상담",
		ID:      "AGT-003",
		Program: s.APIs[0].Program,
		API:     s.APIs[0].Method + " " + s.APIs[0].Path,
		Role:    "AGENT",
		Phase:   "PHASE1",
		Refs:    refs,
	}
}

// Workbook builds a workbook holding every required sheet and the given
// screens. The table of contents lists every sheet and the trace matrix
// fully links every requirement of s.
func (s Sources) Workbook(screens ...Screen) *tabular.Book {
	b := tabular.NewBook()
	b.AddSheet("00_통합목차")

	errs := b.AddSheet("01_에러메시지코드")
	errs.SetRow(1, "에러코드", "메시지", "HTTP")
	errs.SetRow(2, ErrorCode, "입력값 오류", "400")

	codes := b.AddSheet("02_추가종합코드")
	codes.SetRow(1, "그룹", "코드", "설명")
	row := 2
	for _, role := range grammar.KnownRoles.Sorted() {
		codes.SetRow(row, "ROLE", role, "권한")
		row++
	}
	for _, ev := range grammar.DefaultEventTypes.Sorted() {
		codes.SetRow(row, "SSE_EVENT_TYPE", ev, "이벤트")
		row++
	}

	for _, sc := range screens {
		AddScreen(b, sc)
	}

	b.AddSheet("38_권한 별 UI").SetRow(1, "권한 별 UI")
	b.AddSheet("90_불일치목록").SetRow(1, "ID", "유형", "출처", "내용", "조치", "시트", "후속")

	trace := b.AddSheet("91_추적성매트릭스")
	trace.SetRow(1, "추적성 매트릭스")
	trace.SetRow(3, "ReqID", "Screen", "API", "DB", "Telemetry")
	ids := grammar.NewSet(s.Requirements...).Union(grammar.NewSet(s.Features...))
	for i, id := range ids.Sorted() {
		trace.SetRow(i+4, id, "AGT-003", "POST /v1/chat/sessions", "TB_MESSAGE", "latency_ms")
	}

	b.AddSheet("93_검증결과").SetRow(1, "93_검증결과")

	WriteTOC(b)
	return b
}

// CleanWorkbook is Workbook with the default screen.
func (s Sources) CleanWorkbook() *tabular.Book {
	return s.Workbook(s.DefaultScreen())
}

// WriteTOC rewrites the first sheet as a table of contents listing every
// other sheet.
func WriteTOC(b *tabular.Book) {
	names := b.SheetNames()
	toc := b.Table(names[0])
	toc.SetRow(1, "UIUX 설계 문서 구성")
	toc.SetRow(3, "No", "시트명", "Phase", "설명")
	for i, name := range names[1:] {
		toc.SetRow(i+4, fmt.Sprintf("%02d", i+1), name, "전체", "")
	}
}

// Without returns a copy of b lacking the named sheets.
func Without(b *tabular.Book, names ...string) *tabular.Book {
	drop := grammar.NewSet()
	for _, n := range names {
		drop.Add(tabular.NormalizeName(n))
	}
	out := tabular.NewBook()
	for _, name := range b.SheetNames() {
		if drop.Has(name) {
			continue
		}
		from := b.Table(name)
		to := out.AddSheet(name)
		for _, c := range from.Coords() {
			to.Set(c.Row, c.Col, from.Raw(c.Row, c.Col))
		}
	}
	return out
}
