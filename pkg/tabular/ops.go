package tabular

import "fmt"

// OpKind names a document edit.
type OpKind string

// Edit kinds.
const (
	OpAddSheet OpKind = "add_sheet"
	OpSetCell  OpKind = "set_cell"
)

// Op is one edit. A set_cell with an empty value clears the cell.
type Op struct {
	Kind  OpKind `json:"kind" yaml:"kind"`
	Sheet string `json:"sheet" yaml:"sheet"`
	Row   int    `json:"row,omitempty" yaml:"row,omitempty"`
	Col   int    `json:"col,omitempty" yaml:"col,omitempty"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// String implements fmt.Stringer.
func (o Op) String() string {
	if o.Kind == OpAddSheet {
		return fmt.Sprintf("add sheet %s", o.Sheet)
	}
	return fmt.Sprintf("set %s!R%dC%d = %q", o.Sheet, o.Row, o.Col, o.Value)
}

// Diff returns the edits that turn before into after: added sheets first,
// in after's order, then cell changes sheet by sheet in row-major order.
// Identical books produce no edits. Sheets removed from after are ignored.
func Diff(before, after *Book) []Op {
	var ops []Op
	for _, name := range after.order {
		if _, ok := before.tables[name]; !ok {
			ops = append(ops, Op{Kind: OpAddSheet, Sheet: name})
		}
	}
	for _, name := range after.order {
		next := after.tables[name]
		prev, ok := before.tables[name]
		if !ok {
			prev = NewTable(name)
		}
		seen := make(map[Coord]struct{}, len(next.cells)+len(prev.cells))
		var coords []Coord
		for c := range next.cells {
			seen[c] = struct{}{}
			coords = append(coords, c)
		}
		for c := range prev.cells {
			if _, dup := seen[c]; !dup {
				coords = append(coords, c)
			}
		}
		sortCoords(coords)
		for _, c := range coords {
			if prev.cells[c] != next.cells[c] {
				ops = append(ops, Op{Kind: OpSetCell, Sheet: name, Row: c.Row, Col: c.Col, Value: next.cells[c]})
			}
		}
	}
	return ops
}

// Apply returns a copy of b with ops applied. b is not modified. The
// batch is applied as a whole: an invalid op leaves no partial result.
func Apply(b *Book, ops []Op) (*Book, error) {
	out := b.Clone()
	for i, op := range ops {
		switch op.Kind {
		case OpAddSheet:
			out.AddSheet(op.Sheet)
		case OpSetCell:
			t := out.Table(op.Sheet)
			if t == nil {
				return nil, fmt.Errorf("op %d: sheet %q does not exist", i, op.Sheet)
			}
			if op.Row < 1 || op.Col < 1 {
				return nil, fmt.Errorf("op %d: invalid coordinate R%dC%d", i, op.Row, op.Col)
			}
			t.Set(op.Row, op.Col, op.Value)
		default:
			return nil, fmt.Errorf("op %d: unknown kind %q", i, op.Kind)
		}
	}
	return out, nil
}

// Summary counts ops by kind.
func Summary(ops []Op) (sheets, cells int) {
	for _, op := range ops {
		if op.Kind == OpAddSheet {
			sheets++
		} else {
			cells++
		}
	}
	return sheets, cells
}
