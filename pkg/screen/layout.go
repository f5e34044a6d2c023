package screen

import (
	"strings"

	"github.com/agentstation/specgate/pkg/constants"
	"github.com/agentstation/specgate/pkg/errors"
	"github.com/agentstation/specgate/pkg/tabular"
)

// Field names of the screen metadata block.
const (
	FieldScreenID = "screen_id"
	FieldProgram  = "program_id"
	FieldAPI      = "api"
	FieldRole     = "role"
	FieldPhase    = "phase"
)

// MandatoryFields are the fields every screen must fill, in report order.
var MandatoryFields = []string{FieldProgram, FieldAPI, FieldRole, FieldPhase}

// Section is a required free-form section of a screen sheet, with the
// skeleton written when it is missing.
type Section struct {
	Key         string
	Prefix      string
	Title       string
	Headers     []string
	Placeholder []string
}

// Section keys.
const (
	SectionInput     = "input"
	SectionButton    = "button"
	SectionException = "exception"
	SectionTest      = "test"
)

// Sections lists the required sections in sheet order.
var Sections = []Section{
	{
		Key: SectionInput, Prefix: "3.", Title: "3. 입력/조회 필드 상세",
		Headers:     []string{"필드명", "컴포넌트", "필수", "유효성 규칙", "에러 코드"},
		Placeholder: []string{"TBD", "TBD", "TBD", "TBD (근거 부족: 요구사항/화면 시트 미기재)", "TBD"},
	},
	{
		Key: SectionButton, Prefix: "4.", Title: "4. 버튼 동작 상세",
		Headers:     []string{"버튼명", "이벤트", "동작", "성공 시", "실패 시"},
		Placeholder: []string{"TBD", "onClick", "TBD", "TBD", "TBD"},
	},
	{
		Key: SectionException, Prefix: "8.", Title: "8. 예외사항 체크",
		Headers:     []string{"No", "예외 상황", "에러 코드", "처리", "화면 표시"},
		Placeholder: []string{"1", "TBD", "TBD", "TBD", "TBD"},
	},
	{
		Key: SectionTest, Prefix: "9.", Title: "9. 단위테스트 시나리오",
		Headers:     []string{"TC No", "테스트 항목", "테스트 데이터", "예상 결과", "Pass/Fail"},
		Placeholder: []string{"TC-TBD", "TBD", "TBD", "TBD", "TBD"},
	},
}

// ConstraintTitles mark a constraints table when found in column 1.
var ConstraintTitles = []string{"필수 제약", "공통 제약"}

// Layout is the fixed position contract of a screen sheet.
type Layout struct {
	Fields           tabular.Schema
	SectionWindow    int
	ConstraintWindow int
}

// DefaultLayout returns the screen sheet contract: metadata labels in
// column 1 of rows 4 and 6-9, values in column 2.
func DefaultLayout() Layout {
	field := func(name, label string, row int) tabular.Field {
		return tabular.Field{Name: name, Label: label, Row: row, LabelCol: 1, ValueCol: 2, SpillTo: 6}
	}
	return Layout{
		Fields: tabular.Schema{
			field(FieldScreenID, "화면", 4),
			field(FieldProgram, "프로그램", 6),
			field(FieldAPI, "API", 7),
			field(FieldRole, "권한", 8),
			field(FieldPhase, "개발", 9),
		},
		SectionWindow:    constants.SectionWindow,
		ConstraintWindow: constants.ConstraintWindow,
	}
}

// Validate checks the field declarations and that every metadata field
// the collector reads is declared.
func (l Layout) Validate() error {
	if err := l.Fields.Validate(); err != nil {
		return err
	}
	for _, name := range append([]string{FieldScreenID}, MandatoryFields...) {
		if _, ok := l.Fields.Field(name); !ok {
			return errors.NewValidationError("screen.fields", name, "field not declared")
		}
	}
	return nil
}

// MustField returns the declared field called name. It panics on an
// undeclared name; Validate guarantees the standard names exist.
func (l Layout) MustField(name string) tabular.Field {
	f, ok := l.Fields.Field(name)
	if !ok {
		panic("screen: undeclared field " + name)
	}
	return f
}

// HasSection reports whether column 1 of sh starts a section with prefix
// within the section window.
func (l Layout) HasSection(sh tabular.Sheet, prefix string) bool {
	_, ok := tabular.FindInColumn(sh, 1, l.SectionWindow, func(v string) bool {
		return strings.HasPrefix(v, prefix)
	})
	return ok
}

// HasConstraints reports whether sh carries a constraints table.
func (l Layout) HasConstraints(sh tabular.Sheet) bool {
	_, ok := tabular.FindInColumn(sh, 1, l.ConstraintWindow, func(v string) bool {
		for _, title := range ConstraintTitles {
			if strings.Contains(v, title) {
				return true
			}
		}
		return false
	})
	return ok
}
