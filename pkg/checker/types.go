package checker

import (
	"fmt"

	"github.com/agentstation/specgate/pkg/screen"
	"github.com/agentstation/specgate/pkg/workbook"
)

// Class groups rules for gating policy.
type Class string

// Rule classes.
const (
	ClassStructural    Class = "structural"
	ClassIdentity      Class = "identity"
	ClassReferential   Class = "referential"
	ClassCompleteness  Class = "completeness"
	ClassCoverage      Class = "coverage"
	ClassConsistency   Class = "consistency"
	ClassInformational Class = "informational"
)

// Classes lists every class in report order.
var Classes = []Class{
	ClassStructural, ClassIdentity, ClassReferential, ClassCompleteness,
	ClassCoverage, ClassConsistency, ClassInformational,
}

// Code identifies the kind of a violation.
type Code string

// Violation codes.
const (
	CodeMissingSheet        Code = "missing-sheet"
	CodeScreenIDMismatch    Code = "screen-id-mismatch"
	CodeMandatoryField      Code = "mandatory-field-missing"
	CodeMissingSection      Code = "missing-section"
	CodeMissingConstraints  Code = "missing-constraints"
	CodeUnknownErrorCode    Code = "unknown-error-code"
	CodeUnknownRole         Code = "unknown-role"
	CodeUnknownEventType    Code = "unknown-event-type"
	CodeUnknownRequirement  Code = "unknown-requirement"
	CodeIncompleteTrace     Code = "incomplete-trace-link"
	CodeTOCMissing          Code = "toc-missing"
	CodeTOCExtra            Code = "toc-extra"
	CodeUnmappedEndpoint    Code = "unmapped-endpoint"
	CodeUnmappedTable       Code = "unmapped-table"
	CodeUnmappedRequirement Code = "unmapped-requirement"
	CodeRegistryInvalid     Code = "registry-invalid"
	CodeSourceReference     Code = "source-reference-unknown"
	CodeAccessLevel         Code = "invalid-access-level"
	CodeDeprecatedTerm      Code = "deprecated-term"
	CodePlaceholder         Code = "placeholder-pending"
	CodeScanTruncated       Code = "scan-truncated"
)

// Status is a check outcome.
type Status string

// Check outcomes.
const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// Location attributes a violation to a sheet row, a sheet, or a whole
// source document.
type Location struct {
	Document string `json:"document" yaml:"document"`
	Sheet    string `json:"sheet,omitempty" yaml:"sheet,omitempty"`
	Row      int    `json:"row,omitempty" yaml:"row,omitempty"`
}

// String renders the location for console output.
func (l Location) String() string {
	switch {
	case l.Sheet != "" && l.Row > 0:
		return fmt.Sprintf("%s!%d", l.Sheet, l.Row)
	case l.Sheet != "":
		return l.Sheet
	}
	return l.Document
}

// Violation is one itemized finding.
type Violation struct {
	Rule     string   `json:"rule" yaml:"rule"`
	Code     Code     `json:"code" yaml:"code"`
	Class    Class    `json:"class" yaml:"class"`
	Item     string   `json:"item" yaml:"item"`
	Message  string   `json:"message" yaml:"message"`
	Location Location `json:"location" yaml:"location"`
}

// Check is the aggregate outcome of one rule.
type Check struct {
	Rule         string   `json:"rule" yaml:"rule"`
	Section      string   `json:"section" yaml:"section"`
	Item         string   `json:"item" yaml:"item"`
	Class        Class    `json:"class" yaml:"class"`
	Status       Status   `json:"status" yaml:"status"`
	MissingCount int      `json:"missing_count" yaml:"missing_count"`
	Note         string   `json:"note" yaml:"note"`
	Hard         bool     `json:"hard" yaml:"hard"`
	Items        []string `json:"items" yaml:"items"`
}

// Failed reports whether the check failed.
func (c Check) Failed() bool { return c.Status == StatusFail }

// Report is the outcome of one checker pass.
type Report struct {
	PassCount     int               `json:"pass_count" yaml:"pass_count"`
	FailCount     int               `json:"fail_count" yaml:"fail_count"`
	HardFailCount int               `json:"hard_fail_count" yaml:"hard_fail_count"`
	Checks        []Check           `json:"checks" yaml:"checks"`
	SheetMap      workbook.SheetMap `json:"sheet_map" yaml:"sheet_map"`
	MissingSheets []string          `json:"missing_sheets" yaml:"missing_sheets"`
	ScreenSheets  []string          `json:"screen_sheets" yaml:"screen_sheets"`
	Screens       []screen.Record   `json:"screens" yaml:"screens"`
	Violations    []Violation       `json:"violations" yaml:"violations"`
}

// Check returns the check produced by rule.
func (r *Report) Check(rule string) (Check, bool) {
	for _, c := range r.Checks {
		if c.Rule == rule {
			return c, true
		}
	}
	return Check{}, false
}

// ViolationsOf returns the violations carrying code.
func (r *Report) ViolationsOf(code Code) []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Code == code {
			out = append(out, v)
		}
	}
	return out
}

// Failed returns the failing checks.
func (r *Report) Failed() []Check {
	var out []Check
	for _, c := range r.Checks {
		if c.Failed() {
			out = append(out, c)
		}
	}
	return out
}

// Tally recounts pass, fail and hard-fail totals from the checks.
func (r *Report) Tally() {
	r.PassCount, r.FailCount, r.HardFailCount = 0, 0, 0
	for _, c := range r.Checks {
		if !c.Failed() {
			r.PassCount++
			continue
		}
		r.FailCount++
		if c.Hard {
			r.HardFailCount++
		}
	}
}
