// Package catalog builds the reference catalog: the canonical identifier
// sets every cross-document check resolves against. Catalogs are built
// from scratch on every pass and are read-only once built.
package catalog

import (
	"reflect"

	"github.com/agentstation/specgate/pkg/grammar"
)

// APIEntry is one row of the API catalog.
type APIEntry struct {
	Row       int    `json:"row" yaml:"row"`
	ProgramID string `json:"program_id" yaml:"program_id"`
	Method    string `json:"method" yaml:"method"`
	Path      string `json:"path" yaml:"path"`
	Role      string `json:"role,omitempty" yaml:"role,omitempty"`
	Remarks   string `json:"remarks,omitempty" yaml:"remarks,omitempty"`
}

// Diagnostics lists registry rows that did not yield a clean identifier.
type Diagnostics struct {
	Malformed  []string `json:"malformed" yaml:"malformed"`
	Duplicates []string `json:"duplicates" yaml:"duplicates"`
}

// Catalog holds the canonical identifier set per kind plus the source
// detail the supplemental checks need.
type Catalog struct {
	sets map[grammar.Kind]grammar.Set

	// Requirements holds the requirements registry alone.
	Requirements grammar.Set `json:"requirements" yaml:"requirements"`
	// Features holds requirement IDs named by the feature registry.
	Features grammar.Set `json:"features" yaml:"features"`
	// Programs holds API program IDs.
	Programs grammar.Set `json:"programs" yaml:"programs"`
	// APIRoles holds role tokens from the API catalog's role column.
	APIRoles grammar.Set `json:"api_roles" yaml:"api_roles"`
	// RemarkRefs holds requirement IDs embedded in API remarks.
	RemarkRefs grammar.Set `json:"remark_refs" yaml:"remark_refs"`
	// APIEntries holds every usable API catalog row.
	APIEntries []APIEntry `json:"api_entries" yaml:"api_entries"`
	// Registry reports malformed and duplicate registry rows.
	Registry Diagnostics `json:"registry" yaml:"registry"`

	// RolesDefaulted is set when the workbook has no canonical role list.
	RolesDefaulted bool `json:"roles_defaulted" yaml:"roles_defaulted"`
	// EventsDefaulted is set when the workbook has no canonical event list.
	EventsDefaulted bool `json:"events_defaulted" yaml:"events_defaulted"`
}

// New returns an empty catalog.
func New() *Catalog {
	c := &Catalog{
		sets:         make(map[grammar.Kind]grammar.Set, len(grammar.Kinds)),
		Requirements: grammar.NewSet(),
		Features:     grammar.NewSet(),
		Programs:     grammar.NewSet(),
		APIRoles:     grammar.NewSet(),
		RemarkRefs:   grammar.NewSet(),
	}
	for _, k := range grammar.Kinds {
		c.sets[k] = grammar.NewSet()
	}
	return c
}

// Set returns the canonical set for kind. Callers must not modify it.
func (c *Catalog) Set(kind grammar.Kind) grammar.Set {
	return c.sets[kind]
}

// Has reports whether id is canonical for kind.
func (c *Catalog) Has(kind grammar.Kind, id string) bool {
	return c.sets[kind].Has(id)
}

// Count returns the size of the canonical set for kind.
func (c *Catalog) Count(kind grammar.Kind) int {
	return c.sets[kind].Len()
}

// Sets returns every canonical set keyed by kind, for reporting.
func (c *Catalog) Sets() map[grammar.Kind]grammar.Set {
	out := make(map[grammar.Kind]grammar.Set, len(c.sets))
	for k, s := range c.sets {
		out[k] = s
	}
	return out
}

// Equal reports whether two catalogs hold the same content.
func (c *Catalog) Equal(other *Catalog) bool {
	if other == nil {
		return false
	}
	for _, k := range grammar.Kinds {
		if !c.sets[k].Equal(other.sets[k]) {
			return false
		}
	}
	return c.Requirements.Equal(other.Requirements) &&
		c.Features.Equal(other.Features) &&
		c.Programs.Equal(other.Programs) &&
		c.APIRoles.Equal(other.APIRoles) &&
		c.RemarkRefs.Equal(other.RemarkRefs) &&
		reflect.DeepEqual(c.APIEntries, other.APIEntries) &&
		reflect.DeepEqual(c.Registry, other.Registry) &&
		c.RolesDefaulted == other.RolesDefaulted &&
		c.EventsDefaulted == other.EventsDefaulted
}

func (c *Catalog) clone() *Catalog {
	out := *c
	out.sets = make(map[grammar.Kind]grammar.Set, len(c.sets))
	for k, s := range c.sets {
		out.sets[k] = s.Clone()
	}
	out.APIEntries = append([]APIEntry(nil), c.APIEntries...)
	return &out
}
