// Package workbook describes the fixed sheet set of the UI/UX workbook:
// which sheets must exist, the prefixes that identify them and the names
// given to sheets that have to be created.
package workbook

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agentstation/specgate/pkg/tabular"
)

// Keys of the required sheets.
const (
	SheetTOC        = "toc"
	SheetErrors     = "error"
	SheetCodes      = "code"
	SheetRBAC       = "rbac"
	SheetLedger     = "inconsistency"
	SheetTrace      = "trace"
	SheetValidation = "validation"
)

// RequiredSheet is one sheet the workbook must contain.
type RequiredSheet struct {
	Key         string `mapstructure:"key" yaml:"key"`
	Prefix      string `mapstructure:"prefix" yaml:"prefix"`
	DefaultName string `mapstructure:"default_name" yaml:"default_name"`
}

// Layout is the required sheet set, in creation order.
type Layout struct {
	Sheets []RequiredSheet `mapstructure:"sheets" yaml:"sheets"`
}

// DefaultLayout returns the standard UI/UX workbook layout.
func DefaultLayout() Layout {
	return Layout{Sheets: []RequiredSheet{
		{Key: SheetTOC, Prefix: "00_", DefaultName: "00_통합목차"},
		{Key: SheetErrors, Prefix: "01_", DefaultName: "01_에러메시지코드"},
		{Key: SheetCodes, Prefix: "02_", DefaultName: "02_추가종합코드"},
		{Key: SheetRBAC, Prefix: "38_", DefaultName: "38_권한 별 UI"},
		{Key: SheetLedger, Prefix: "90_", DefaultName: "90_불일치목록"},
		{Key: SheetTrace, Prefix: "91_", DefaultName: "91_추적성매트릭스"},
		{Key: SheetValidation, Prefix: "93_", DefaultName: "93_검증결과"},
	}}
}

// Validate rejects layouts with empty, duplicate or mismatched entries.
func (l Layout) Validate() error {
	keys := make(map[string]bool)
	for _, s := range l.Sheets {
		switch {
		case s.Key == "" || s.Prefix == "" || s.DefaultName == "":
			return fmt.Errorf("required sheet %q is incomplete", s.Key)
		case keys[s.Key]:
			return fmt.Errorf("required sheet %q declared twice", s.Key)
		case !strings.HasPrefix(s.DefaultName, s.Prefix):
			return fmt.Errorf("default name %q does not start with prefix %q", s.DefaultName, s.Prefix)
		}
		keys[s.Key] = true
	}
	return nil
}

// Sheet returns the declaration for key.
func (l Layout) Sheet(key string) (RequiredSheet, bool) {
	for _, s := range l.Sheets {
		if s.Key == key {
			return s, true
		}
	}
	return RequiredSheet{}, false
}

// SheetMap maps required-sheet keys to the sheet names found in a workbook.
type SheetMap map[string]string

// Keys returns the mapped keys in sorted order.
func (m SheetMap) Keys() []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Resolve finds each required sheet by prefix. Missing sheets are returned
// by default name, in layout order.
func (l Layout) Resolve(wb tabular.Workbook) (SheetMap, []string) {
	found := make(SheetMap, len(l.Sheets))
	var missing []string
	for _, s := range l.Sheets {
		if name, ok := tabular.FirstWithPrefix(wb, s.Prefix); ok {
			found[s.Key] = name
			continue
		}
		missing = append(missing, s.DefaultName)
	}
	return found, missing
}
