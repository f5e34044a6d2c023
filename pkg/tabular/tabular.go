// Package tabular is the document model the gate works on: workbooks of
// named sheets addressed by 1-based (row, column) coordinates, declared
// field accessors for fixed layouts, and cell-level diffs that turn an
// edited copy back into an ordered list of operations.
package tabular

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Sheet is a read-only grid of cells.
type Sheet interface {
	// Name returns the sheet name.
	Name() string
	// Cell returns the trimmed text at row, col (1-based). Missing cells are "".
	Cell(row, col int) string
	// MaxRow returns the last row holding a non-empty cell.
	MaxRow() int
	// MaxCol returns the last column holding a non-empty cell.
	MaxCol() int
}

// Workbook is an ordered collection of sheets.
type Workbook interface {
	// SheetNames returns sheet names in workbook order.
	SheetNames() []string
	// Sheet looks up a sheet by name.
	Sheet(name string) (Sheet, bool)
}

// Coord addresses one cell.
type Coord struct {
	Row int
	Col int
}

// Table is the in-memory Sheet implementation.
type Table struct {
	name   string
	cells  map[Coord]string
	maxRow int
	maxCol int
}

// NewTable returns an empty table.
func NewTable(name string) *Table {
	return &Table{name: NormalizeName(name), cells: make(map[Coord]string)}
}

// Name returns the sheet name.
func (t *Table) Name() string { return t.name }

// Cell returns the trimmed text at row, col.
func (t *Table) Cell(row, col int) string {
	return strings.TrimSpace(t.cells[Coord{row, col}])
}

// Raw returns the cell text exactly as stored.
func (t *Table) Raw(row, col int) string {
	return t.cells[Coord{row, col}]
}

// MaxRow returns the last row holding a non-empty cell.
func (t *Table) MaxRow() int { return t.maxRow }

// MaxCol returns the last column holding a non-empty cell.
func (t *Table) MaxCol() int { return t.maxCol }

// Set stores value at row, col. An empty value clears the cell.
func (t *Table) Set(row, col int, value string) {
	if row < 1 || col < 1 {
		return
	}
	c := Coord{row, col}
	if value == "" {
		if _, ok := t.cells[c]; !ok {
			return
		}
		delete(t.cells, c)
		if row == t.maxRow || col == t.maxCol {
			t.recomputeBounds()
		}
		return
	}
	t.cells[c] = value
	t.maxRow = max(t.maxRow, row)
	t.maxCol = max(t.maxCol, col)
}

// SetRow stores values left to right starting at column 1.
func (t *Table) SetRow(row int, values ...string) {
	for i, v := range values {
		t.Set(row, i+1, v)
	}
}

// Coords returns every non-empty coordinate in row-major order.
func (t *Table) Coords() []Coord {
	out := make([]Coord, 0, len(t.cells))
	for c := range t.cells {
		out = append(out, c)
	}
	sortCoords(out)
	return out
}

func (t *Table) recomputeBounds() {
	t.maxRow, t.maxCol = 0, 0
	for c := range t.cells {
		t.maxRow = max(t.maxRow, c.Row)
		t.maxCol = max(t.maxCol, c.Col)
	}
}

func (t *Table) clone() *Table {
	out := &Table{name: t.name, cells: make(map[Coord]string, len(t.cells)), maxRow: t.maxRow, maxCol: t.maxCol}
	for c, v := range t.cells {
		out.cells[c] = v
	}
	return out
}

// Book is the in-memory Workbook implementation.
type Book struct {
	order  []string
	tables map[string]*Table
}

// NewBook returns an empty workbook.
func NewBook() *Book {
	return &Book{tables: make(map[string]*Table)}
}

// SheetNames returns sheet names in workbook order.
func (b *Book) SheetNames() []string {
	return append([]string(nil), b.order...)
}

// Sheet looks up a sheet by name.
func (b *Book) Sheet(name string) (Sheet, bool) {
	t, ok := b.tables[NormalizeName(name)]
	if !ok {
		return nil, false
	}
	return t, true
}

// Table returns the named table, or nil.
func (b *Book) Table(name string) *Table {
	return b.tables[NormalizeName(name)]
}

// AddSheet appends an empty sheet, or returns the existing one.
func (b *Book) AddSheet(name string) *Table {
	name = NormalizeName(name)
	if t, ok := b.tables[name]; ok {
		return t
	}
	t := NewTable(name)
	b.tables[name] = t
	b.order = append(b.order, name)
	return t
}

// Clone returns a deep copy that can be edited independently.
func (b *Book) Clone() *Book {
	out := &Book{order: append([]string(nil), b.order...), tables: make(map[string]*Table, len(b.tables))}
	for name, t := range b.tables {
		out.tables[name] = t.clone()
	}
	return out
}

// NormalizeName returns the NFC form of a sheet name. Workbooks written on
// different platforms disagree on Hangul composition; lookups must not.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func sortCoords(cs []Coord) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Row != cs[j].Row {
			return cs[i].Row < cs[j].Row
		}
		return cs[i].Col < cs[j].Col
	})
}
