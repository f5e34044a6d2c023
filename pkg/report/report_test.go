package report

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/specgate/internal/fixture"
	"github.com/agentstation/specgate/pkg/checker"
	"github.com/agentstation/specgate/pkg/errors"
	"github.com/agentstation/specgate/pkg/repair"
	"github.com/agentstation/specgate/pkg/tabular"
)

// failing returns a report with a soft identity failure (screen ID
// mismatch) and a hard referential failure (unknown error code).
func failing(t *testing.T) *checker.Report {
	t.Helper()
	src := fixture.DefaultSources()
	sc := src.DefaultScreen()
	sc.ID = "AGT-002"
	sc.Refs = append(sc.Refs, "AI-001-500-BOOM")
	r, err := checker.New().Check(context.Background(), src.Catalog(t), src.Workbook(sc))
	require.NoError(t, err)
	return r
}

func clean(t *testing.T) *checker.Report {
	t.Helper()
	src := fixture.DefaultSources()
	r, err := checker.New().Check(context.Background(), src.Catalog(t), src.CleanWorkbook())
	require.NoError(t, err)
	return r
}

func TestPolicyDefault(t *testing.T) {
	p := DefaultPolicy()
	require.NoError(t, p.Validate())

	r := failing(t)
	p.Apply(r)

	id, _ := r.Check(checker.RuleScreenID)
	codes, _ := r.Check(checker.RuleErrorCodes)
	assert.False(t, id.Hard)
	assert.True(t, codes.Hard)
	assert.Equal(t, 1, r.HardFailCount)
	assert.Equal(t, errors.ExitFailed, p.ExitCode(r))

	err := p.Err(r)
	require.Error(t, err)
	assert.True(t, errors.IsGateFailed(err))
	assert.Contains(t, err.Error(), checker.RuleErrorCodes)
}

func TestPolicyOverrides(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		hard   int
	}{
		{"soft rule wins", Policy{HardClasses: []checker.Class{checker.ClassReferential}, SoftRules: []string{checker.RuleErrorCodes}}, 0},
		{"hard rule", Policy{HardRules: []string{checker.RuleScreenID}}, 1},
		{"identity class", Policy{HardClasses: []checker.Class{checker.ClassIdentity, checker.ClassReferential}}, 2},
		{"nothing gates", Policy{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.policy.Validate())
			r := failing(t)
			tt.policy.Apply(r)
			assert.Equal(t, tt.hard, r.HardFailCount)
			assert.Equal(t, 2, r.FailCount)
		})
	}
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
	}{
		{"unknown class", Policy{HardClasses: []checker.Class{"fatal"}}},
		{"unknown rule", Policy{HardRules: []string{"no-such-rule"}}},
		{"both", Policy{HardRules: []string{checker.RuleTOC}, SoftRules: []string{checker.RuleTOC}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestCleanReportExitsZero(t *testing.T) {
	r := clean(t)
	d := NewDocument(r, DefaultPolicy(), false)
	assert.Equal(t, checker.StatusPass, d.Status)
	assert.Equal(t, errors.ExitOK, DefaultPolicy().ExitCode(r))
}

func TestEncodeJSONIsStable(t *testing.T) {
	d := NewDocument(failing(t), DefaultPolicy(), true)

	var a, b bytes.Buffer
	require.NoError(t, Encode(&a, d, FormatJSON))
	require.NoError(t, Encode(&b, NewDocument(failing(t), DefaultPolicy(), true), FormatJSON))
	assert.Equal(t, a.String(), b.String())
	assert.True(t, strings.HasSuffix(a.String(), "}\n"))
	assert.True(t, strings.HasPrefix(a.String(), "{\n  \"status\": \"FAIL\",\n  \"repaired\": true,"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(a.Bytes(), &decoded))
	assert.EqualValues(t, 1, decoded["hard_fail_count"])
	assert.Len(t, decoded["checks"], len(checker.Rules()))
}

func TestEncodeYAML(t *testing.T) {
	d := NewDocument(failing(t), DefaultPolicy(), false)
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, d, FormatYAML))
	out := buf.String()
	assert.Contains(t, out, "status: FAIL")
	assert.Contains(t, out, "pass_count:")
	assert.Contains(t, out, "- structural")
}

func TestFormats(t *testing.T) {
	f, err := ParseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
	_, err = ParseFormat("xml")
	assert.Error(t, err)

	assert.Equal(t, FormatYAML, FormatFor("out/report.yml"))
	assert.Equal(t, FormatJSON, FormatFor("out/report.json"))
}

func TestWriteOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "gate.json")
	require.NoError(t, Write(path, NewDocument(failing(t), DefaultPolicy(), false), FormatJSON))
	require.NoError(t, Write(path, NewDocument(clean(t), DefaultPolicy(), false), FormatJSON))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status": "PASS"`)
}

func TestExamples(t *testing.T) {
	assert.Equal(t, "없음", Examples(nil, 10))
	assert.Equal(t, "a, b", Examples([]string{"a", "b"}, 10))
	assert.Equal(t, "a, b (+1)", Examples([]string{"a", "b", "c"}, 2))
}

func TestRisks(t *testing.T) {
	r := failing(t)
	got := Risks(r, 5)
	require.NotEmpty(t, got)
	assert.Equal(t, checker.RuleErrorCodes, got[0].Rule)
	assert.Equal(t, checker.RuleScreenID, got[1].Rule)
	assert.Len(t, Risks(r, 1), 1)
	assert.Empty(t, Risks(clean(t), 5))
}

func TestWriteSummary(t *testing.T) {
	d := NewDocument(failing(t), DefaultPolicy(), false)
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, d, DefaultSummaryOptions()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "[specgate] gate FAIL: PASS="))
	assert.Contains(t, out, "HARD_FAIL=1")
	assert.Contains(t, out, checker.RuleErrorCodes)
	assert.Contains(t, out, "- 에러코드: AI-001-500-BOOM")
	assert.Contains(t, out, "1. 에러코드 참조 불일치 @ 01_에러메시지코드 + 각 화면 8.예외사항")
	assert.NotContains(t, out, "\x1b[", "no colour unless requested")
}

func TestWriteSummaryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.txt")
	opts := DefaultSummaryOptions()
	opts.Color = true
	require.NoError(t, WriteSummaryFile(path, NewDocument(clean(t), DefaultPolicy(), false), opts))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[specgate] gate PASS")
	assert.NotContains(t, string(data), "\x1b[")
}

func TestChanges(t *testing.T) {
	first := &repair.Plan{
		Ops: []tabular.Op{
			{Kind: tabular.OpAddSheet, Sheet: "38_권한 별 UI"},
			{Kind: tabular.OpSetCell, Sheet: "38_권한 별 UI", Row: 1, Col: 1, Value: "x"},
		},
		Entries: []repair.Entry{{Sheet: "38_권한 별 UI", Message: "created"}},
	}
	second := &repair.Plan{
		Ops:     []tabular.Op{{Kind: tabular.OpSetCell, Sheet: "93_검증결과", Row: 1, Col: 1, Value: "y"}},
		Entries: []repair.Entry{{Sheet: "93_검증결과", Message: "published", Ledgered: true}},
	}
	c := NewChanges("book.xlsx", first, nil, second)
	assert.Equal(t, 1, c.SheetsAdded)
	assert.Equal(t, 2, c.CellsChanged)
	assert.Len(t, c.Entries, 2)

	empty := NewChanges("book.xlsx")
	assert.NotNil(t, empty.Entries)
}

func TestWriteMetrics(t *testing.T) {
	d := NewDocument(failing(t), DefaultPolicy(), true)
	c := NewChanges("book.xlsx", &repair.Plan{Entries: []repair.Entry{{Message: "m", Ledgered: true}}})
	path := filepath.Join(t.TempDir(), "metrics", "specgate.prom")
	require.NoError(t, WriteMetrics(path, d, &c))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `specgate_checks{status="hard_fail"} 1`)
	assert.Contains(t, out, `specgate_gate_passed 0`)
	assert.Contains(t, out, `specgate_check_missing{class="referential",gate="hard",rule="error-codes"} 1`)
	assert.Contains(t, out, `specgate_repairs{kind="ledgered"} 1`)
}
