package checker

import (
	"fmt"
	"strings"

	"github.com/agentstation/specgate/pkg/catalog"
	"github.com/agentstation/specgate/pkg/grammar"
	"github.com/agentstation/specgate/pkg/workbook"
)

func registry(e *env) []Violation {
	var out []Violation
	for _, id := range e.cat.Registry.Malformed {
		out = append(out, Violation{
			Code:     CodeRegistryInvalid,
			Item:     "malformed: " + id,
			Message:  fmt.Sprintf("registry entry %q is not a requirement ID", id),
			Location: Location{Document: catalog.DocRequirements},
		})
	}
	for _, id := range e.cat.Registry.Duplicates {
		out = append(out, Violation{
			Code:     CodeRegistryInvalid,
			Item:     "duplicate: " + id,
			Message:  fmt.Sprintf("requirement %s is registered more than once", id),
			Location: Location{Document: catalog.DocRequirements},
		})
	}
	return out
}

func subset(ids, of grammar.Set, doc, what string) []Violation {
	var out []Violation
	for _, id := range ids.Minus(of).Sorted() {
		out = append(out, Violation{
			Code:     CodeSourceReference,
			Item:     id,
			Message:  fmt.Sprintf("%s %s is not defined", what, id),
			Location: Location{Document: doc},
		})
	}
	return out
}

func featureRefs(e *env) []Violation {
	return subset(e.cat.Features, e.cat.Requirements, catalog.DocFeatures, "requirement")
}

func remarkRefs(e *env) []Violation {
	return subset(e.cat.RemarkRefs, e.cat.Requirements, catalog.DocAPI, "requirement")
}

func apiRoles(e *env) []Violation {
	return subset(e.cat.APIRoles, e.cat.Set(grammar.KindRole), catalog.DocAPI, "role")
}

func traceRefs(e *env) []Violation {
	sh, ok := e.sheet(workbook.SheetTrace)
	if !ok {
		return nil
	}
	known := e.cat.Set(grammar.KindRequirement)
	var out []Violation
	for id, tr := range readTrace(sh) {
		if known.Has(id) {
			continue
		}
		out = append(out, Violation{
			Code:     CodeSourceReference,
			Item:     id,
			Message:  fmt.Sprintf("trace matrix lists %s which no registry defines", id),
			Location: Location{Document: DocWorkbook, Sheet: sh.Name(), Row: tr.row},
		})
	}
	return out
}

func accessLevels(e *env) []Violation {
	var out []Violation
	for _, entry := range e.cat.APIEntries {
		for _, level := range grammar.AccessLevelsIn(entry.Remarks) {
			if grammar.AccessLevels.Has(level) {
				continue
			}
			out = append(out, Violation{
				Code:     CodeAccessLevel,
				Item:     fmt.Sprintf("%s %s: %s", entry.Method, entry.Path, level),
				Message:  fmt.Sprintf("access_level=%s is not one of %s", level, strings.Join(grammar.AccessLevels.Sorted(), ", ")),
				Location: Location{Document: catalog.DocAPI, Row: entry.Row},
			})
		}
	}
	return out
}

func programRefs(e *env) []Violation {
	var out []Violation
	for _, r := range e.records {
		var unknown []string
		for _, id := range r.ProgramIDs {
			if !e.cat.Programs.Has(id) {
				unknown = append(unknown, id)
			}
		}
		if len(unknown) == 0 {
			continue
		}
		out = append(out, Violation{
			Code:     CodeSourceReference,
			Item:     fmt.Sprintf("%s: %s", r.Sheet, strings.Join(unknown, ", ")),
			Message:  fmt.Sprintf("program IDs not in the api catalog: %s", strings.Join(unknown, ", ")),
			Location: atSheet(r.Sheet),
		})
	}
	return out
}

func terminology(e *env) []Violation {
	var out []Violation
	for _, r := range e.records {
		terms := r.Terms.Sorted()
		if len(terms) == 0 {
			continue
		}
		out = append(out, Violation{
			Code:     CodeDeprecatedTerm,
			Item:     fmt.Sprintf("%s: %s", r.Sheet, strings.Join(terms, ", ")),
			Message:  fmt.Sprintf("deprecated terms in use: %s", strings.Join(terms, ", ")),
			Location: atSheet(r.Sheet),
		})
	}
	return out
}

func placeholders(e *env) []Violation {
	var out []Violation
	for _, r := range e.records {
		if r.Placeholders == 0 {
			continue
		}
		out = append(out, Violation{
			Code:     CodePlaceholder,
			Item:     fmt.Sprintf("%s: %d", r.Sheet, r.Placeholders),
			Message:  fmt.Sprintf("%d cells still hold placeholder content", r.Placeholders),
			Location: atSheet(r.Sheet),
		})
	}
	return out
}

func scanBounds(e *env) []Violation {
	var out []Violation
	for _, r := range e.records {
		if !r.Truncated {
			continue
		}
		out = append(out, Violation{
			Code:     CodeScanTruncated,
			Item:     r.Sheet,
			Message:  "content lies outside the scan region and was not checked",
			Location: atSheet(r.Sheet),
		})
	}
	return out
}
