package output

import (
	"io"
	"strconv"

	"github.com/agentstation/specgate/internal/discovery"
	"github.com/agentstation/specgate/pkg/catalog"
	"github.com/agentstation/specgate/pkg/grammar"
	"github.com/agentstation/specgate/pkg/report"
)

// KindSummary is one row of the catalog listing.
type KindSummary struct {
	Kind     string   `json:"kind" yaml:"kind"`
	Count    int      `json:"count" yaml:"count"`
	Examples []string `json:"examples" yaml:"examples"`
}

// CatalogSummary is the machine-readable catalog listing.
type CatalogSummary struct {
	Documents discovery.Documents `json:"documents" yaml:"documents"`
	Kinds     []KindSummary       `json:"kinds" yaml:"kinds"`
	Registry  catalog.Diagnostics `json:"registry" yaml:"registry"`
}

// SummarizeCatalog lists every identifier kind with up to limit examples.
func SummarizeCatalog(docs discovery.Documents, cat *catalog.Catalog, limit int) CatalogSummary {
	s := CatalogSummary{Documents: docs, Registry: cat.Registry}
	for _, k := range grammar.Kinds {
		ids := cat.Set(k).Sorted()
		if len(ids) > limit {
			ids = ids[:limit]
		}
		s.Kinds = append(s.Kinds, KindSummary{Kind: string(k), Count: cat.Count(k), Examples: ids})
	}
	return s
}

// CatalogTable renders the listing as a table.
func CatalogTable(s CatalogSummary, limit int) Data {
	d := Data{
		Headers:         []string{"Kind", "Count", "Examples"},
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignLeft},
	}
	for _, k := range s.Kinds {
		d.Rows = append(d.Rows, []string{k.Kind, strconv.Itoa(k.Count), report.Examples(k.Examples, limit)})
	}
	d.Rows = append(d.Rows,
		[]string{"malformed registry rows", strconv.Itoa(len(s.Registry.Malformed)), report.Examples(s.Registry.Malformed, limit)},
		[]string{"duplicate registry IDs", strconv.Itoa(len(s.Registry.Duplicates)), report.Examples(s.Registry.Duplicates, limit)},
	)
	return d
}

// FormatCatalog writes the listing in format.
func FormatCatalog(w io.Writer, s CatalogSummary, format Format, limit int) error {
	var data any = s
	if format == FormatTable || format == "" {
		data = CatalogTable(s, limit)
	}
	return NewFormatter(format).Format(w, data)
}
