// Package discovery locates the workbook and the source documents inside a
// document container. Locations are doublestar globs relative to the
// container root; a literal path is a glob with no wildcards.
package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/agentstation/specgate/pkg/catalog"
	"github.com/agentstation/specgate/pkg/errors"
)

// lockPrefix marks the lock files office suites leave next to open workbooks.
const lockPrefix = "~$"

// Patterns are the configured locations of the gate's documents.
type Patterns struct {
	Workbook string
	Sources  SourcePatterns
}

// SourcePatterns locate the four source documents.
type SourcePatterns struct {
	Requirements string `mapstructure:"requirements" json:"requirements" yaml:"requirements"`
	Features     string `mapstructure:"features" json:"features" yaml:"features"`
	API          string `mapstructure:"api" json:"api" yaml:"api"`
	DB           string `mapstructure:"db" json:"db" yaml:"db"`
}

// Documents are the resolved paths.
type Documents struct {
	Root     string          `json:"root" yaml:"root"`
	Workbook string          `json:"workbook" yaml:"workbook"`
	Sources  catalog.Sources `json:"sources" yaml:"sources"`
}

// Paths lists every resolved file, workbook first.
func (d Documents) Paths() []string {
	return []string{d.Workbook, d.Sources.Requirements, d.Sources.Features, d.Sources.API, d.Sources.DB}
}

// Resolve resolves every pattern under root.
func Resolve(root string, p Patterns) (Documents, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Documents{}, errors.WrapIO("resolve", root, err)
	}
	d := Documents{Root: abs}

	targets := []struct {
		doc     string
		pattern string
		dst     *string
	}{
		{"workbook", p.Workbook, &d.Workbook},
		{catalog.DocRequirements, p.Sources.Requirements, &d.Sources.Requirements},
		{catalog.DocFeatures, p.Sources.Features, &d.Sources.Features},
		{catalog.DocAPI, p.Sources.API, &d.Sources.API},
		{catalog.DocDB, p.Sources.DB, &d.Sources.DB},
	}
	for _, t := range targets {
		path, err := Find(abs, t.doc, t.pattern)
		if err != nil {
			return Documents{}, err
		}
		*t.dst = path
	}
	return d, nil
}

// Find returns the first match of pattern under root in lexical order.
// Office lock files and directories never match. No match is a
// SourceMissingError naming doc.
func Find(root, doc, pattern string) (string, error) {
	matches, err := Glob(root, pattern)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", errors.NewSourceMissingError(doc, filepath.Join(root, pattern), os.ErrNotExist)
	}
	return matches[0], nil
}

// Glob returns every regular file matching pattern, sorted. Relative
// patterns are anchored at root.
func Glob(root, pattern string) ([]string, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, errors.NewValidationError("pattern", pattern, "must not be empty")
	}
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(root, pattern)
	}
	if !doublestar.ValidatePathPattern(pattern) {
		return nil, errors.NewValidationError("pattern", pattern, "invalid glob")
	}

	found, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.WrapIO("glob", pattern, err)
	}
	matches := found[:0]
	for _, m := range found {
		if strings.HasPrefix(filepath.Base(m), lockPrefix) {
			continue
		}
		matches = append(matches, m)
	}
	sort.Strings(matches)
	return matches, nil
}
