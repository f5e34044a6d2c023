package catalog

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/specgate/pkg/errors"
	"github.com/agentstation/specgate/pkg/grammar"
	"github.com/agentstation/specgate/pkg/logging"
	"github.com/agentstation/specgate/pkg/tabular"
	"github.com/agentstation/specgate/pkg/tabular/xlsx"
)

// Logical document names used in errors and logs.
const (
	DocRequirements = "requirements registry"
	DocFeatures     = "feature registry"
	DocAPI          = "api catalog"
	DocDB           = "db catalog"
)

// APISheetName is the preferred sheet of the API catalog. When absent the
// second sheet is used.
const APISheetName = "전체API목록"

// API catalog columns (1-based).
const (
	apiColProgram = 3
	apiColMethod  = 5
	apiColPath    = 6
	apiColRole    = 10
	apiColRemarks = 11
)

// featureColumn is the fallback requirement-ID column of the feature registry.
const featureColumn = 6

var requirementHeaders = []string{"reqid", "req id", "요구사항id", "요구사항 id"}

// Sources are the paths of the four source documents.
type Sources struct {
	Requirements string `json:"requirements" yaml:"requirements"`
	Features     string `json:"features" yaml:"features"`
	API          string `json:"api" yaml:"api"`
	DB           string `json:"db" yaml:"db"`
}

// Opener reads a source document.
type Opener func(ctx context.Context, path string) (tabular.Workbook, error)

// Loader builds catalogs from the source documents.
type Loader struct {
	sources Sources
	open    Opener
}

// Option configures a Loader.
type Option func(*Loader)

// WithOpener replaces the file-based opener.
func WithOpener(open Opener) Option {
	return func(l *Loader) {
		l.open = open
	}
}

// NewLoader returns a loader for sources.
func NewLoader(sources Sources, opts ...Option) *Loader {
	l := &Loader{sources: sources, open: OpenFile}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// OpenFile opens a CSV or xlsx document by extension.
func OpenFile(ctx context.Context, path string) (tabular.Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return tabular.ReadCSVFile(path)
	}
	return xlsx.Load(ctx, path)
}

// Load reads all four sources and returns a fresh catalog. Any missing or
// malformed source aborts the load.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	ctx = logging.WithPhase(ctx, "load")
	c := New()

	steps := []struct {
		doc  string
		path string
		read func(*Catalog, tabular.Workbook) error
	}{
		{DocRequirements, l.sources.Requirements, readRequirements},
		{DocFeatures, l.sources.Features, readFeatures},
		{DocAPI, l.sources.API, readAPI},
		{DocDB, l.sources.DB, readDB},
	}
	for _, step := range steps {
		wb, err := l.openSource(ctx, step.doc, step.path)
		if err != nil {
			return nil, err
		}
		if err := step.read(c, wb); err != nil {
			return nil, err
		}
	}

	c.sets[grammar.KindRequirement] = c.Requirements.Union(c.Features)

	logging.FromContext(ctx).Info().
		Int("requirements", c.Count(grammar.KindRequirement)).
		Int("endpoints", c.Count(grammar.KindEndpoint)).
		Int("tables", c.Count(grammar.KindTable)).
		Int("programs", c.Programs.Len()).
		Msg("Loaded reference catalog")
	return c, nil
}

func (l *Loader) openSource(ctx context.Context, doc, path string) (tabular.Workbook, error) {
	if path == "" {
		return nil, errors.NewSourceMissingError(doc, "", errors.New("no path configured"))
	}
	if l.open == nil {
		return nil, errors.NewConfigError("catalog", "no opener configured", nil)
	}
	wb, err := l.open(ctx, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.IsSourceMissing(err) {
			return nil, errors.NewSourceMissingError(doc, path, err)
		}
		return nil, err
	}
	logging.FromContext(ctx).Debug().Str("document", doc).Str("path", path).Msg("Opened source")
	return wb, nil
}

func firstSheet(wb tabular.Workbook) (tabular.Sheet, bool) {
	names := wb.SheetNames()
	if len(names) == 0 {
		return nil, false
	}
	return wb.Sheet(names[0])
}

// headerColumn finds the first header cell in row 1 matching one of names,
// compared case-insensitively without surrounding spaces.
func headerColumn(s tabular.Sheet, names []string) (int, bool) {
	for col := 1; col <= s.MaxCol(); col++ {
		h := strings.ToLower(strings.TrimSpace(s.Cell(1, col)))
		for _, n := range names {
			if h == n {
				return col, true
			}
		}
	}
	return 0, false
}

func readRequirements(c *Catalog, wb tabular.Workbook) error {
	s, ok := firstSheet(wb)
	if !ok || s.MaxRow() == 0 {
		return errors.NewSchemaError(DocRequirements, "", "a header row", "document is empty")
	}
	col, ok := headerColumn(s, requirementHeaders)
	if !ok {
		col = 1
	}

	seen := grammar.NewSet()
	dups := grammar.NewSet()
	var malformed []string
	for row := 2; row <= s.MaxRow(); row++ {
		id := s.Cell(row, col)
		switch {
		case id == "":
			continue
		case !grammar.Match(grammar.KindRequirement, id):
			malformed = append(malformed, id)
		case seen.Has(id):
			dups.Add(id)
		default:
			seen.Add(id)
		}
	}
	c.Requirements = seen
	c.Registry = Diagnostics{Malformed: grammar.SortedUnique(malformed), Duplicates: dups.Sorted()}
	return nil
}

func readFeatures(c *Catalog, wb tabular.Workbook) error {
	s, ok := firstSheet(wb)
	if !ok || s.MaxRow() == 0 {
		return errors.NewSchemaError(DocFeatures, "", "a header row", "document is empty")
	}
	col, ok := headerColumn(s, requirementHeaders)
	if !ok {
		if s.MaxCol() < featureColumn {
			return errors.NewSchemaError(DocFeatures, s.Name(), "a ReqID header or at least 6 columns", "requirement column not found")
		}
		col = featureColumn
	}
	for row := 2; row <= s.MaxRow(); row++ {
		c.Features.Add(grammar.RequirementIDs(grammar.ExpandRanges(s.Cell(row, col)))...)
	}
	return nil
}

func readAPI(c *Catalog, wb tabular.Workbook) error {
	s, ok := wb.Sheet(APISheetName)
	if !ok {
		names := wb.SheetNames()
		if len(names) < 2 {
			return errors.NewSchemaError(DocAPI, "", "a "+APISheetName+" sheet or a second sheet", "api list sheet not found")
		}
		s, _ = wb.Sheet(names[1])
	}
	if s.MaxCol() < apiColPath {
		return errors.NewSchemaError(DocAPI, s.Name(), "at least 6 columns", "header row too short")
	}

	endpoints := c.sets[grammar.KindEndpoint]
	for row := 2; row <= s.MaxRow(); row++ {
		e := APIEntry{
			Row:       row,
			ProgramID: s.Cell(row, apiColProgram),
			Method:    strings.ToUpper(s.Cell(row, apiColMethod)),
			Path:      s.Cell(row, apiColPath),
			Role:      s.Cell(row, apiColRole),
			Remarks:   s.Cell(row, apiColRemarks),
		}
		if e.ProgramID == "" || e.Method == "" || e.Path == "" {
			continue
		}
		c.APIEntries = append(c.APIEntries, e)
		c.Programs.Add(e.ProgramID)
		if found := grammar.Endpoints(e.Path); len(found) > 0 {
			endpoints.Add(found...)
		} else {
			endpoints.Add(e.Path)
		}
		for _, role := range splitRoles(e.Role) {
			c.APIRoles.Add(role)
		}
		c.RemarkRefs.Add(grammar.RequirementIDs(grammar.ExpandRanges(e.Remarks))...)
	}
	return nil
}

func splitRoles(text string) []string {
	var out []string
	for _, tok := range strings.FieldsFunc(strings.ToUpper(text), func(r rune) bool {
		return r == '/' || r == ',' || r == '|' || r == ' ' || r == '\n'
	}) {
		if grammar.Match(grammar.KindRole, tok) {
			out = append(out, tok)
		}
	}
	return out
}

func readDB(c *Catalog, wb tabular.Workbook) error {
	tables := c.sets[grammar.KindTable]
	for _, name := range tabular.WithPrefix(wb, grammar.TablePrefix) {
		if grammar.Match(grammar.KindTable, name) {
			tables.Add(name)
		}
	}
	if tables.Len() == 0 {
		return errors.NewSchemaError(DocDB, "", "one sheet per table named "+grammar.TablePrefix+"*", "no table sheets found")
	}
	return nil
}
