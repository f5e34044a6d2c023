package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/specgate/pkg/errors"
	"github.com/agentstation/specgate/pkg/grammar"
	"github.com/agentstation/specgate/pkg/tabular"
)

func TestScannerText(t *testing.T) {
	r := New().Text("AI-001~003 참조, 에러 AI-009-422-SCHEMA, POST /v1/chat/{id}/messages, TB_TICKET, event: citation")

	assert.Equal(t, []string{"AI-001", "AI-002", "AI-003"}, r.Set(grammar.KindRequirement).Sorted())
	assert.Equal(t, []string{"AI-009-422-SCHEMA"}, r.Set(grammar.KindErrorCode).Sorted())
	assert.Equal(t, []string{"/v1/chat/{id}/messages"}, r.Set(grammar.KindEndpoint).Sorted())
	assert.Equal(t, []string{"TB_TICKET"}, r.Set(grammar.KindTable).Sorted())
	assert.Equal(t, []string{"citation"}, r.Set(grammar.KindEventType).Sorted())
	assert.False(t, r.Truncated)
}

func TestScannerEventVocabularyNeedsStreamContext(t *testing.T) {
	s := New()
	assert.Empty(t, s.Text("error 발생 시 done 처리").Set(grammar.KindEventType).Sorted())
	assert.Equal(t, []string{"done", "token"}, s.Text("SSE token/done 전송").Set(grammar.KindEventType).Sorted())
	assert.Equal(t, []string{"chunk"}, s.Text("event_type=chunk").Set(grammar.KindEventType).Sorted())

	custom := New(WithEventVocabulary(grammar.NewSet("delta")))
	assert.Equal(t, []string{"delta"}, custom.Text("stream delta").Set(grammar.KindEventType).Sorted())
}

func TestScannerSheetBounds(t *testing.T) {
	sh := tabular.NewTable("05_AGT003_상담")
	sh.Set(1, 1, "AI-001")
	sh.Set(2, 3, "TBD (근거 부족)")
	sh.Set(3, 4, "AGT-003 화면에서 AI-002 처리")
	sh.Set(10, 1, "AI-099")
	sh.Set(1, 12, "TB_HIDDEN")

	s := New(
		WithBounds(Bounds{MaxRow: 5, MaxCol: 8}),
		WithExcludedRequirements(grammar.NewSet("AGT-003")),
	)
	r := s.Sheet(sh)

	assert.Equal(t, []string{"AI-001", "AI-002"}, r.Set(grammar.KindRequirement).Sorted())
	assert.Empty(t, r.Set(grammar.KindTable).Sorted())
	assert.Equal(t, 1, r.Placeholders)
	assert.True(t, r.Truncated)

	assert.False(t, New(WithBounds(Bounds{MaxRow: 220, MaxCol: 12})).Sheet(sh).Truncated)
}

func TestScannerTerms(t *testing.T) {
	terms, err := grammar.NewTerminology(grammar.DefaultTerms)
	require.NoError(t, err)

	r := New(WithTerminology(terms)).Text("secret: api_key_ref")
	assert.Equal(t, []string{"api_key_ref"}, r.Terms.Sorted())
	assert.Empty(t, New().Text("secret: api_key_ref").Terms.Sorted())
}

func TestBoundsValidate(t *testing.T) {
	assert.NoError(t, DefaultBounds().Validate())
	err := Bounds{MaxRow: 0, MaxCol: 8}.Validate()
	assert.True(t, errors.IsValidationError(err))
	assert.Error(t, Bounds{MaxRow: 1}.Validate())
}

func TestResultSetUnknownKind(t *testing.T) {
	assert.NotNil(t, New().Text("").Set(grammar.KindRole))
}
