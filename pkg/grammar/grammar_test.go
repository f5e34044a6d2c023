package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequirementIDs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"bare", "관련 ReqID: AI-001, RAG-002", []string{"AI-001", "RAG-002"}},
		{"error code prefix only", "AI-009-422-SCHEMA", nil},
		{"bare and error code", "AI-009 / AI-009-422-SCHEMA", []string{"AI-009"}},
		{"too many digits", "AI-0012", nil},
		{"too many letters", "ABCDEF-001", nil},
		{"inside word", "x_AI-001", nil},
		{"program ID tail", "AGT-API-001", nil},
		{"program ID beside bare ID", "AGT-API-001 (AI-001)", []string{"AI-001"}},
		{"after hangul", "요구사항AI-001", []string{"AI-001"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RequirementIDs(tt.text))
		})
	}
}

func TestErrorCodes(t *testing.T) {
	got := ErrorCodes("see AI-009-422-SCHEMA and SYS-004-409-TRACE. AGT-003 is a screen")
	assert.Equal(t, []string{"AI-009-422-SCHEMA", "SYS-004-409-TRACE"}, got)
	assert.True(t, Match(KindErrorCode, "SYS-002-403"))
	assert.False(t, Match(KindErrorCode, "AI-009"))
	assert.Empty(t, ErrorCodes("AGT-API-001-400"))
}

func TestTables(t *testing.T) {
	assert.Equal(t, []string{"TB_MESSAGE", "TB_ATTACHMENT"}, Tables("TB_MESSAGE/TB_ATTACHMENT/pii_mask_count"))
	assert.Empty(t, Tables("TB_*_VERSION"))
	assert.True(t, Match(KindTable, "TB_AUDIT_LOG"))
	assert.False(t, Match(KindTable, "tb_audit_log"))
}

func TestEndpoints(t *testing.T) {
	t.Run("method form wins", func(t *testing.T) {
		got := Endpoints("POST /v1/sessions/{session_id}/messages and /v1/other")
		assert.Equal(t, []string{"/v1/sessions/{session_id}/messages"}, got)
	})

	t.Run("bare fallback", func(t *testing.T) {
		assert.Equal(t, []string{"/v1/health", "/v1/ready"}, Endpoints("/v1/health, /v1/ready"))
	})

	t.Run("method pairs", func(t *testing.T) {
		got := MethodEndpoints("GET /v1/tickets/{ticket_id}\nDELETE /v2/cache")
		assert.Equal(t, []string{"GET /v1/tickets/{ticket_id}", "DELETE /v2/cache"}, got)
	})

	t.Run("whole token", func(t *testing.T) {
		assert.True(t, Match(KindEndpoint, "GET /v1/health"))
		assert.True(t, Match(KindEndpoint, "/v1/health"))
		assert.False(t, Match(KindEndpoint, "/health"))
	})
}

func TestEventTypes(t *testing.T) {
	assert.Equal(t, []string{"token", "heartbeat"}, ExplicitEventTypes("event: Token, sse=heartbeat"))
	assert.Equal(t, []string{"done", "token"}, Words("Streams token then done.", DefaultEventTypes, true))
	assert.True(t, Match(KindEventType, "safe_response"))
	assert.False(t, Match(KindEventType, "SafeResponse"))
}

func TestScreenIDFromSheetName(t *testing.T) {
	seq, id, ok := ScreenIDFromSheetName("05_AGT003_상담")
	require.True(t, ok)
	assert.Equal(t, 5, seq)
	assert.Equal(t, "AGT-003", id)

	for _, name := range []string{"AGT003_상담", "05_AGT003", "5_AGT003_x", "05_AG003_x", "90_불일치목록"} {
		_, _, ok := ScreenIDFromSheetName(name)
		assert.False(t, ok, name)
		assert.False(t, IsScreenSheet(name), name)
	}
}

func TestScreenIDIn(t *testing.T) {
	assert.Equal(t, "AGT-002", ScreenIDIn("AGT-002 (상담 화면)"))
	assert.Equal(t, "상담", ScreenIDIn("  상담 "))
	assert.Equal(t, "AGT-API-001", ScreenIDIn("AGT-API-001"))
}

func TestExtractRole(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"상담원(AGENT)", "AGENT"},
		{"AGENT / ADMIN", "ADMIN"},
		{"agent", "AGENT"},
		{"SUPERVISOR", "SUPERVISOR"},
		{"TBD (근거 부족: 권한 원본 스펙 미기재)", ""},
		{"TBD", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractRole(tt.text, KnownRoles))
		})
	}
}

func TestExtractPhase(t *testing.T) {
	assert.Equal(t, "PHASE2", ExtractPhase("Phase2 (선택)"))
	assert.Equal(t, "MVP", ExtractPhase("MVP 1차"))
	assert.Equal(t, "", ExtractPhase("2026-03"))
}

func TestInferHTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		want   string
		wantOK bool
	}{
		{"AI-009-422-SCHEMA", "422", true},
		{"SYS-002-403", "403", true},
		{"AI-009-SCHEMA", "", false},
		{"not-a-code", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, ok := InferHTTPStatus(tt.code)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFor(t *testing.T) {
	for _, kind := range Kinds {
		m, err := For(kind)
		require.NoError(t, err, kind)
		assert.Equal(t, kind, m.Kind())
	}

	_, err := For(Kind("bogus"))
	assert.Error(t, err)

	m, _ := For(KindRole)
	assert.Equal(t, []string{"ADMIN", "OPS"}, m.FindAll("ops, admin? no: OPS and ADMIN"))
}

func TestProgramIDs(t *testing.T) {
	assert.Equal(t, []string{"AGT-API-001", "CS_CHAT_01"}, ProgramIDs("AGT-API-001, CS_CHAT_01 / TBD"))
	assert.Empty(t, ProgramIDs("TBD (근거 부족: 프로그램 ID 원본 스펙 미기재)"))
	assert.Empty(t, ProgramIDs("AGT-003"))
}
