package tabular

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableBounds(t *testing.T) {
	tbl := NewTable("05_AGT003_상담")
	tbl.Set(3, 2, "a")
	tbl.Set(7, 5, "b")
	assert.Equal(t, 7, tbl.MaxRow())
	assert.Equal(t, 5, tbl.MaxCol())

	tbl.Set(7, 5, "")
	assert.Equal(t, 3, tbl.MaxRow())
	assert.Equal(t, 2, tbl.MaxCol())

	tbl.Set(0, 1, "ignored")
	assert.Equal(t, "", tbl.Cell(0, 1))
}

func TestCellTrims(t *testing.T) {
	tbl := NewTable("s")
	tbl.Set(1, 1, "  AGT-003 \n")
	assert.Equal(t, "AGT-003", tbl.Cell(1, 1))
	assert.Equal(t, "  AGT-003 \n", tbl.Raw(1, 1))
}

func TestBookNormalizesNames(t *testing.T) {
	book := NewBook()
	decomposed := "05_AGT003_\u1109\u1161\u11bc\u1103\u1161\u11b7"
	book.AddSheet(decomposed)

	_, ok := book.Sheet("05_AGT003_상담")
	assert.True(t, ok)
	assert.Equal(t, []string{"05_AGT003_상담"}, book.SheetNames())
}

func TestCloneIsIndependent(t *testing.T) {
	book := NewBook()
	book.AddSheet("a").Set(1, 1, "x")

	clone := book.Clone()
	clone.Table("a").Set(1, 1, "y")
	clone.AddSheet("b")

	assert.Equal(t, "x", book.Table("a").Cell(1, 1))
	assert.Equal(t, []string{"a"}, book.SheetNames())
}

func TestDiffAndApply(t *testing.T) {
	before := NewBook()
	a := before.AddSheet("a")
	a.SetRow(1, "keep", "change", "clear")

	after := before.Clone()
	after.Table("a").Set(1, 2, "changed")
	after.Table("a").Set(1, 3, "")
	after.AddSheet("b").Set(2, 1, "new")

	ops := Diff(before, after)
	assert.Equal(t, []Op{
		{Kind: OpAddSheet, Sheet: "b"},
		{Kind: OpSetCell, Sheet: "a", Row: 1, Col: 2, Value: "changed"},
		{Kind: OpSetCell, Sheet: "a", Row: 1, Col: 3, Value: ""},
		{Kind: OpSetCell, Sheet: "b", Row: 2, Col: 1, Value: "new"},
	}, ops)

	applied, err := Apply(before, ops)
	require.NoError(t, err)
	assert.Empty(t, Diff(applied, after))
	assert.Equal(t, "change", before.Table("a").Cell(1, 2), "Apply must not modify its input")

	assert.Empty(t, Diff(after, after.Clone()))

	sheets, cells := Summary(ops)
	assert.Equal(t, 1, sheets)
	assert.Equal(t, 3, cells)
}

func TestApplyRejectsBadOps(t *testing.T) {
	book := NewBook()
	book.AddSheet("a")

	_, err := Apply(book, []Op{{Kind: OpSetCell, Sheet: "missing", Row: 1, Col: 1, Value: "x"}})
	assert.Error(t, err)

	_, err = Apply(book, []Op{{Kind: OpSetCell, Sheet: "a", Row: 0, Col: 1}})
	assert.Error(t, err)

	_, err = Apply(book, []Op{{Kind: "rename", Sheet: "a"}})
	assert.Error(t, err)
}

func TestFieldRead(t *testing.T) {
	f := Field{Name: "program", Label: "프로그램", Row: 6, LabelCol: 1, ValueCol: 2, SpillTo: 6}

	tests := []struct {
		name   string
		row    []string
		want   string
		origin Origin
	}{
		{"value cell", []string{"프로그램 ID", "API-MESSAGE-POST"}, "API-MESSAGE-POST", OriginValue},
		{"inline", []string{"프로그램 ID: API-STREAM-SSE"}, "API-STREAM-SSE", OriginInline},
		{"inline without value", []string{"프로그램 ID:", "", "API-X"}, "API-X", OriginSpill},
		{"spill", []string{"프로그램 ID", "", "API-A", "", "API-B"}, "API-A | API-B", OriginSpill},
		{"label only", []string{"프로그램 ID"}, "", OriginNone},
		{"inline for another label", []string{"권한: AGENT"}, "", OriginNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := NewTable("s")
			tbl.SetRow(6, tt.row...)
			got := f.Read(tbl)
			assert.Equal(t, tt.want, got.Text)
			assert.Equal(t, tt.origin, got.Origin)
		})
	}
}

func TestFieldLabelState(t *testing.T) {
	f := Field{Name: "role", Label: "권한", Row: 8, LabelCol: 1, ValueCol: 2}
	tbl := NewTable("s")

	_, empty, matches := f.LabelState(tbl)
	assert.True(t, empty)
	assert.False(t, matches)

	tbl.Set(8, 1, "권한")
	_, empty, matches = f.LabelState(tbl)
	assert.False(t, empty)
	assert.True(t, matches)

	tbl.Set(8, 1, "비고")
	label, empty, matches := f.LabelState(tbl)
	assert.Equal(t, "비고", label)
	assert.False(t, empty)
	assert.False(t, matches)
}

func TestSchemaValidate(t *testing.T) {
	ok := Schema{
		{Name: "a", Label: "A", Row: 1, LabelCol: 1, ValueCol: 2},
		{Name: "b", Label: "B", Row: 2, LabelCol: 1, ValueCol: 2},
	}
	require.NoError(t, ok.Validate())
	f, found := ok.Field("b")
	assert.True(t, found)
	assert.Equal(t, 2, f.Row)

	tests := []struct {
		name   string
		schema Schema
	}{
		{"duplicate row", Schema{ok[0], {Name: "c", Label: "C", Row: 1, LabelCol: 1, ValueCol: 2}}},
		{"no name", Schema{{Label: "A", Row: 1, LabelCol: 1, ValueCol: 2}}},
		{"no label", Schema{{Name: "a", Row: 1, LabelCol: 1, ValueCol: 2}}},
		{"zero row", Schema{{Name: "a", Label: "A", LabelCol: 1, ValueCol: 2}}},
		{"same column", Schema{{Name: "a", Label: "A", Row: 1, LabelCol: 2, ValueCol: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.schema.Validate())
		})
	}
}

func TestSheetHelpers(t *testing.T) {
	book := NewBook()
	book.AddSheet("00_통합목차")
	book.AddSheet("01_에러메시지코드")
	book.AddSheet("TB_USER")
	book.AddSheet("TB_MESSAGE")

	name, ok := FirstWithPrefix(book, "01_")
	assert.True(t, ok)
	assert.Equal(t, "01_에러메시지코드", name)
	_, ok = FirstWithPrefix(book, "93_")
	assert.False(t, ok)
	assert.Equal(t, []string{"TB_USER", "TB_MESSAGE"}, WithPrefix(book, "TB_"))

	tbl := book.Table("00_통합목차")
	assert.Equal(t, 0, LastUsedRow(tbl, 8, 2000))
	tbl.SetRow(2, "a", "", "c")
	tbl.Set(9, 10, "outside maxCol")
	assert.Equal(t, 2, LastUsedRow(tbl, 8, 2000))
	assert.Equal(t, "a | c", RowText(tbl, 2, 1, 6))

	row, found := FindInColumn(tbl, 1, 10, func(s string) bool { return strings.HasPrefix(s, "a") })
	assert.True(t, found)
	assert.Equal(t, 2, row)

	assert.Equal(t, map[int]string{2: "a"}, Column(tbl, 1, 1, 10))
}

func TestReadCSV(t *testing.T) {
	in := "\xEF\xBB\xBFReqID,Name\nAI-001,\"quoted, name\"\nAI-002\n"
	book, err := ReadCSV(strings.NewReader(in), "requirements")
	require.NoError(t, err)

	sheet, ok := book.Sheet("requirements")
	require.True(t, ok)
	assert.Equal(t, "ReqID", sheet.Cell(1, 1))
	assert.Equal(t, "quoted, name", sheet.Cell(2, 2))
	assert.Equal(t, "AI-002", sheet.Cell(3, 1))
	assert.Equal(t, 3, sheet.MaxRow())
}
