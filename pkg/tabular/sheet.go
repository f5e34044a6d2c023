package tabular

import "strings"

// FirstWithPrefix returns the first sheet, in workbook order, whose name
// starts with prefix.
func FirstWithPrefix(wb Workbook, prefix string) (string, bool) {
	for _, name := range wb.SheetNames() {
		if strings.HasPrefix(name, prefix) {
			return name, true
		}
	}
	return "", false
}

// WithPrefix returns every sheet whose name starts with prefix.
func WithPrefix(wb Workbook, prefix string) []string {
	var out []string
	for _, name := range wb.SheetNames() {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out
}

// LastUsedRow returns the last row, up to limit, with a non-empty cell in
// columns 1..maxCol. It returns 0 for an empty sheet.
func LastUsedRow(s Sheet, maxCol, limit int) int {
	last := 0
	for row := 1; row <= min(s.MaxRow(), limit); row++ {
		for col := 1; col <= maxCol; col++ {
			if s.Cell(row, col) != "" {
				last = row
				break
			}
		}
	}
	return last
}

// RowText joins the non-empty cells of row between columns from and to
// with " | ".
func RowText(s Sheet, row, from, to int) string {
	var vals []string
	for col := from; col <= to; col++ {
		if v := s.Cell(row, col); v != "" {
			vals = append(vals, v)
		}
	}
	return strings.Join(vals, " | ")
}

// FindInColumn returns the first row in 1..limit whose cell in col
// satisfies match.
func FindInColumn(s Sheet, col, limit int, match func(string) bool) (int, bool) {
	for row := 1; row <= min(s.MaxRow(), limit); row++ {
		if v := s.Cell(row, col); v != "" && match(v) {
			return row, true
		}
	}
	return 0, false
}

// Column returns the non-empty cells of col between rows from and to,
// keyed by row.
func Column(s Sheet, col, from, to int) map[int]string {
	out := make(map[int]string)
	for row := from; row <= min(s.MaxRow(), to); row++ {
		if v := s.Cell(row, col); v != "" {
			out[row] = v
		}
	}
	return out
}
