// Package xlsx loads Office Open XML workbooks into tabular books and
// commits tabular edits back to disk with excelize.
package xlsx

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/agentstation/specgate/internal/utils/fsutil"
	"github.com/agentstation/specgate/pkg/errors"
	"github.com/agentstation/specgate/pkg/logging"
	"github.com/agentstation/specgate/pkg/tabular"
)

// Load reads every sheet of the workbook at path.
func Load(ctx context.Context, path string) (*tabular.Book, error) {
	book, _, _, err := load(ctx, path)
	return book, err
}

func load(ctx context.Context, path string) (*tabular.Book, map[string]string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, "", errors.NewSourceMissingError("workbook", path, err)
		}
		return nil, nil, "", errors.WrapIO("read", path, err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, "", errors.NewUnreadableError(path, "", err)
	}
	defer f.Close() //nolint:errcheck // in-memory reader

	book := tabular.NewBook()
	names := make(map[string]string)
	for _, original := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, nil, "", err
		}
		rows, err := f.GetRows(original)
		if err != nil {
			return nil, nil, "", errors.NewUnreadableError(path, original, err)
		}
		table := book.AddSheet(original)
		names[table.Name()] = original
		for r, row := range rows {
			for c, value := range row {
				table.Set(r+1, c+1, value)
			}
		}
	}

	logging.FromContext(ctx).Debug().
		Str("document", path).
		Int("sheets", len(names)).
		Msg("Loaded workbook")

	return book, names, digest(data), nil
}

// Store is a workbook on disk that is loaded as a snapshot and changed only
// through Commit. Commit refuses to write when the file changed since the
// last Load.
type Store struct {
	path  string
	hash  string
	names map[string]string // normalized -> name in file
}

// NewStore returns a store for the workbook at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the workbook path.
func (s *Store) Path() string { return s.path }

// Load reads a fresh snapshot of the workbook.
func (s *Store) Load(ctx context.Context) (*tabular.Book, error) {
	book, names, hash, err := load(ctx, s.path)
	if err != nil {
		return nil, err
	}
	s.names, s.hash = names, hash
	return book, nil
}

// Commit applies ops to the workbook file in one write. The file is
// replaced by rename, so readers never see a partially written workbook.
func (s *Store) Commit(ctx context.Context, ops []tabular.Op) error {
	if len(ops) == 0 {
		return nil
	}
	if s.hash == "" {
		return errors.NewValidationError("store", s.path, "commit before load")
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return errors.WrapIO("read", s.path, err)
	}
	if current := digest(data); current != s.hash {
		return errors.NewConflictError(s.path, s.hash, current)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return errors.NewUnreadableError(s.path, "", err)
	}
	defer f.Close() //nolint:errcheck // in-memory reader

	for _, op := range ops {
		if err := s.apply(f, op); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return errors.WrapIO("encode", s.path, err)
	}
	if err := fsutil.WriteAtomic(s.path, buf.Bytes()); err != nil {
		return err
	}
	s.hash = digest(buf.Bytes())

	sheets, cells := tabular.Summary(ops)
	logging.FromContext(ctx).Info().
		Str("document", s.path).
		Int("sheets_added", sheets).
		Int("cells_written", cells).
		Msg("Committed workbook edits")
	return nil
}

func (s *Store) apply(f *excelize.File, op tabular.Op) error {
	switch op.Kind {
	case tabular.OpAddSheet:
		if _, err := f.NewSheet(op.Sheet); err != nil {
			return errors.NewRepairError(op.Sheet, 0, 0, "cannot add sheet: "+err.Error())
		}
		s.names[op.Sheet] = op.Sheet
		return nil
	case tabular.OpSetCell:
		sheet, ok := s.names[op.Sheet]
		if !ok {
			return errors.NewRepairError(op.Sheet, op.Row, op.Col, "sheet not in workbook")
		}
		cell, err := excelize.CoordinatesToCellName(op.Col, op.Row)
		if err != nil {
			return errors.NewRepairError(op.Sheet, op.Row, op.Col, err.Error())
		}
		if err := f.SetCellStr(sheet, cell, op.Value); err != nil {
			return errors.NewRepairError(op.Sheet, op.Row, op.Col, err.Error())
		}
		return nil
	default:
		return errors.NewValidationError("op.kind", op.Kind, "unknown edit kind")
	}
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Save writes book to a new workbook file at path, replacing any file
// already there.
func Save(path string, book *tabular.Book) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory file

	for i, name := range book.SheetNames() {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return errors.WrapIO("create", path, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return errors.WrapIO("create", path, err)
		}
		table := book.Table(name)
		for _, c := range table.Coords() {
			cell, err := excelize.CoordinatesToCellName(c.Col, c.Row)
			if err != nil {
				return errors.WrapIO("create", path, err)
			}
			if err := f.SetCellStr(name, cell, table.Raw(c.Row, c.Col)); err != nil {
				return errors.WrapIO("create", path, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return errors.WrapIO("encode", path, err)
	}
	return fsutil.WriteAtomic(path, buf.Bytes())
}
