package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/specgate/pkg/errors"
	"github.com/agentstation/specgate/pkg/grammar"
	"github.com/agentstation/specgate/pkg/tabular"
	"github.com/agentstation/specgate/pkg/tabular/xlsx"
	"github.com/agentstation/specgate/pkg/workbook"
)

// memSources serves in-memory books by path.
type memSources map[string]*tabular.Book

func (m memSources) open(_ context.Context, path string) (tabular.Workbook, error) {
	b, ok := m[path]
	if !ok {
		return nil, errors.NewSourceMissingError("test", path, nil)
	}
	return b, nil
}

func requirementsBook(ids ...string) *tabular.Book {
	b := tabular.NewBook()
	s := b.AddSheet("requirements")
	s.SetRow(1, "ReqID", "Title")
	for i, id := range ids {
		s.SetRow(i+2, id, "title")
	}
	return b
}

func featuresBook(ids ...string) *tabular.Book {
	b := tabular.NewBook()
	s := b.AddSheet("features")
	s.SetRow(1, "No", "Feature", "Desc", "Owner", "Phase", "요구사항ID")
	for i, id := range ids {
		s.SetRow(i+2, "1", "f", "d", "o", "PHASE1", id)
	}
	return b
}

func apiBook() *tabular.Book {
	b := tabular.NewBook()
	b.AddSheet("표지")
	s := b.AddSheet(APISheetName)
	s.SetRow(1, "No", "Domain", "Program ID", "Name", "Method", "Endpoint", "", "", "", "Role", "비고")
	s.SetRow(2, "1", "chat", "API-MESSAGE-POST", "send", "post", "/v1/sessions/{session_id}/messages", "", "", "", "AGENT/CUSTOMER", "ReqID: AI-001, AI-002")
	s.SetRow(3, "2", "chat", "API-STREAM-SSE", "stream", "GET", "/v1/sessions/{session_id}/stream", "", "", "", "AGENT", "")
	s.SetRow(4, "3", "draft", "", "incomplete", "GET", "/v1/drafts", "", "", "", "", "")
	return b
}

func dbBook(tables ...string) *tabular.Book {
	b := tabular.NewBook()
	b.AddSheet("ERD")
	for _, tbl := range tables {
		b.AddSheet(tbl).SetRow(1, "column", "type")
	}
	return b
}

func standardSources() (Sources, memSources) {
	src := Sources{Requirements: "req.csv", Features: "feat.csv", API: "api.xlsx", DB: "db.xlsx"}
	return src, memSources{
		"req.csv":  requirementsBook("AI-001", "AI-002", "AI-002", "bad id", "RAG-001"),
		"feat.csv": featuresBook("AI-001", "SEC-001~002"),
		"api.xlsx": apiBook(),
		"db.xlsx":  dbBook("TB_MESSAGE", "TB_USER"),
	}
}

func TestLoad(t *testing.T) {
	src, mem := standardSources()
	c, err := NewLoader(src, WithOpener(mem.open)).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"AI-001", "AI-002", "RAG-001"}, c.Requirements.Sorted())
	assert.Equal(t, []string{"AI-001", "SEC-001", "SEC-002"}, c.Features.Sorted())
	assert.Equal(t, []string{"AI-001", "AI-002", "RAG-001", "SEC-001", "SEC-002"}, c.Set(grammar.KindRequirement).Sorted())
	assert.Equal(t, []string{"/v1/sessions/{session_id}/messages", "/v1/sessions/{session_id}/stream"}, c.Set(grammar.KindEndpoint).Sorted())
	assert.Equal(t, []string{"TB_MESSAGE", "TB_USER"}, c.Set(grammar.KindTable).Sorted())
	assert.Equal(t, []string{"API-MESSAGE-POST", "API-STREAM-SSE"}, c.Programs.Sorted())
	assert.Equal(t, []string{"AGENT", "CUSTOMER"}, c.APIRoles.Sorted())
	assert.Equal(t, []string{"AI-001", "AI-002"}, c.RemarkRefs.Sorted())
	assert.Equal(t, Diagnostics{Malformed: []string{"bad id"}, Duplicates: []string{"AI-002"}}, c.Registry)

	require.Len(t, c.APIEntries, 2)
	assert.Equal(t, "POST", c.APIEntries[0].Method)
	assert.Equal(t, 2, c.APIEntries[0].Row)
}

func TestLoadIsDeterministic(t *testing.T) {
	src, mem := standardSources()
	loader := NewLoader(src, WithOpener(mem.open))

	first, err := loader.Load(context.Background())
	require.NoError(t, err)
	second, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.False(t, first.Equal(nil))
}

func TestLoadFatalConditions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(Sources, memSources) Sources
		check  func(error) bool
	}{
		{
			name: "missing requirements",
			mutate: func(s Sources, m memSources) Sources {
				delete(m, "req.csv")
				return s
			},
			check: errors.IsSourceMissing,
		},
		{
			name: "unconfigured path",
			mutate: func(s Sources, _ memSources) Sources {
				s.DB = ""
				return s
			},
			check: errors.IsSourceMissing,
		},
		{
			name: "empty requirements",
			mutate: func(s Sources, m memSources) Sources {
				m["req.csv"] = tabular.NewBook()
				return s
			},
			check: errors.IsSchemaInvalid,
		},
		{
			name: "feature registry without requirement column",
			mutate: func(s Sources, m memSources) Sources {
				b := tabular.NewBook()
				b.AddSheet("features").SetRow(1, "No", "Feature")
				m["feat.csv"] = b
				return s
			},
			check: errors.IsSchemaInvalid,
		},
		{
			name: "api catalog with one unnamed sheet",
			mutate: func(s Sources, m memSources) Sources {
				b := tabular.NewBook()
				b.AddSheet("only").SetRow(1, "a", "b", "c", "d", "e", "f")
				m["api.xlsx"] = b
				return s
			},
			check: errors.IsSchemaInvalid,
		},
		{
			name: "api header too short",
			mutate: func(s Sources, m memSources) Sources {
				b := tabular.NewBook()
				b.AddSheet(APISheetName).SetRow(1, "a", "b")
				m["api.xlsx"] = b
				return s
			},
			check: errors.IsSchemaInvalid,
		},
		{
			name: "db catalog without tables",
			mutate: func(s Sources, m memSources) Sources {
				m["db.xlsx"] = dbBook()
				return s
			},
			check: errors.IsSchemaInvalid,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, mem := standardSources()
			src = tt.mutate(src, mem)
			_, err := NewLoader(src, WithOpener(mem.open)).Load(context.Background())
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())
		})
	}
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	req := filepath.Join(dir, "req.csv")
	feat := filepath.Join(dir, "feat.csv")
	api := filepath.Join(dir, "api.xlsx")
	db := filepath.Join(dir, "db.xlsx")

	require.NoError(t, os.WriteFile(req, []byte("\xEF\xBB\xBFReqID,Title\nAI-001,a\nAI-002,b\n"), 0o644))
	require.NoError(t, os.WriteFile(feat, []byte("a,b,c,d,e,요구사항ID\n1,2,3,4,5,AI-001\n"), 0o644))
	require.NoError(t, xlsx.Save(api, apiBook()))
	require.NoError(t, xlsx.Save(db, dbBook("TB_MESSAGE")))

	c, err := NewLoader(Sources{Requirements: req, Features: feat, API: api, DB: db}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AI-001", "AI-002"}, c.Set(grammar.KindRequirement).Sorted())
	assert.Equal(t, []string{"TB_MESSAGE"}, c.Set(grammar.KindTable).Sorted())

	_, err = NewLoader(Sources{Requirements: filepath.Join(dir, "missing.csv"), Features: feat, API: api, DB: db}).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsSourceMissing(err))
	assert.Contains(t, err.Error(), DocRequirements)
}

func TestWithWorkbook(t *testing.T) {
	book := tabular.NewBook()
	errSheet := book.AddSheet("01_에러메시지코드")
	errSheet.SetRow(1, "코드", "메시지", "HTTP")
	errSheet.SetRow(2, "AI-009-422-SCHEMA", "schema", "422")
	errSheet.SetRow(3, "SYS-002-403", "forbidden", "403")
	errSheet.Set(3, 4, "AI-001-999-IGNORED")
	codeSheet := book.AddSheet("02_추가종합코드")
	codeSheet.SetRow(1, "그룹", "코드")
	codeSheet.SetRow(2, "ROLE", "agent")
	codeSheet.SetRow(3, "role", "ADMIN")
	codeSheet.SetRow(4, "SSE_EVENT_TYPE", "Token")
	codeSheet.SetRow(5, "SSE_EVENT_TYPE", "done")
	book.AddSheet("05_AGT003_상담")
	book.AddSheet("06_ADM001_관리")

	sheets, _ := workbook.DefaultLayout().Resolve(book)
	base := New()
	c := base.WithWorkbook(book, sheets)

	assert.Equal(t, []string{"AI-009-422-SCHEMA", "SYS-002-403"}, c.Set(grammar.KindErrorCode).Sorted())
	assert.Equal(t, []string{"ADMIN", "AGENT"}, c.Set(grammar.KindRole).Sorted())
	assert.Equal(t, []string{"done", "token"}, c.Set(grammar.KindEventType).Sorted())
	assert.Equal(t, []string{"ADM-001", "AGT-003"}, c.Set(grammar.KindScreen).Sorted())
	assert.False(t, c.RolesDefaulted)
	assert.False(t, c.EventsDefaulted)

	assert.Equal(t, 0, base.Count(grammar.KindErrorCode), "WithWorkbook must not modify its receiver")
}

func TestWithWorkbookDefaults(t *testing.T) {
	book := tabular.NewBook()
	c := New().WithWorkbook(book, workbook.SheetMap{})

	assert.True(t, c.RolesDefaulted)
	assert.True(t, c.EventsDefaulted)
	assert.True(t, c.Set(grammar.KindRole).Equal(grammar.KnownRoles))
	assert.True(t, c.Set(grammar.KindEventType).Equal(grammar.DefaultEventTypes))
	assert.Equal(t, 0, c.Count(grammar.KindErrorCode))
}
