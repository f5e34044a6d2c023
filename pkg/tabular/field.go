package tabular

import (
	"fmt"
	"strings"
)

// Origin tells where a field value was found.
type Origin int

// Value origins, in lookup order.
const (
	OriginNone   Origin = iota // nothing found
	OriginValue                // the value cell
	OriginInline               // "label: value" inside the label cell
	OriginSpill                // cells to the right of the value cell
)

// Field declares a labelled value at a fixed row: the label sits in
// LabelCol and the value normally in ValueCol.
type Field struct {
	Name     string
	Label    string // text the label cell is expected to contain
	Row      int
	LabelCol int
	ValueCol int
	SpillTo  int // last column joined when neither the value cell nor an inline value exist
}

// Value is a resolved field.
type Value struct {
	Text   string
	Origin Origin
}

// Read resolves the field on s. The value cell wins; an inline
// "label: value" in the label cell is next; remaining row cells last.
func (f Field) Read(s Sheet) Value {
	if v := s.Cell(f.Row, f.ValueCol); v != "" {
		return Value{Text: v, Origin: OriginValue}
	}
	label := s.Cell(f.Row, f.LabelCol)
	if strings.Contains(label, f.Label) {
		if _, right, ok := strings.Cut(label, ":"); ok {
			if right = strings.TrimSpace(right); right != "" {
				return Value{Text: right, Origin: OriginInline}
			}
		}
	}
	if f.SpillTo > f.ValueCol {
		if v := RowText(s, f.Row, f.ValueCol+1, f.SpillTo); v != "" {
			return Value{Text: v, Origin: OriginSpill}
		}
	}
	return Value{}
}

// LabelState reports whether the label cell is empty, names this field, or
// holds something else (the fixed position no longer holds).
func (f Field) LabelState(s Sheet) (label string, empty, matches bool) {
	label = s.Cell(f.Row, f.LabelCol)
	return label, label == "", strings.Contains(label, f.Label)
}

// Validate checks the declaration itself.
func (f Field) Validate() error {
	switch {
	case f.Name == "":
		return fmt.Errorf("field at row %d has no name", f.Row)
	case f.Label == "":
		return fmt.Errorf("field %s has no label", f.Name)
	case f.Row < 1 || f.LabelCol < 1 || f.ValueCol < 1:
		return fmt.Errorf("field %s has a non-positive coordinate", f.Name)
	case f.LabelCol == f.ValueCol:
		return fmt.Errorf("field %s reads its label and value from the same column", f.Name)
	}
	return nil
}

// Schema is a set of fields sharing one sheet layout.
type Schema []Field

// Validate checks every field and rejects two fields on the same row.
func (s Schema) Validate() error {
	rows := make(map[int]string, len(s))
	for _, f := range s {
		if err := f.Validate(); err != nil {
			return err
		}
		if other, dup := rows[f.Row]; dup {
			return fmt.Errorf("fields %s and %s share row %d", other, f.Name, f.Row)
		}
		rows[f.Row] = f.Name
	}
	return nil
}

// Field returns the field called name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
