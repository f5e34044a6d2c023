package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandRange(t *testing.T) {
	tests := []struct {
		token  string
		want   []string
		wantOK bool
	}{
		{"X-001~003", []string{"X-001", "X-002", "X-003"}, true},
		{"AI-001~AI-003", []string{"AI-001", "AI-002", "AI-003"}, true},
		{"ID-001 ~ 002", []string{"ID-001", "ID-002"}, true},
		{"AI-005~003", nil, false},
		{"AI-001~050", nil, false},
		{"AI-001~BI-003", nil, false},
		{"AI-001", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := ExpandRange(tt.token)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandRanges(t *testing.T) {
	in := "see AI-001~003 and AI-009~001"
	want := "see AI-001, AI-002, AI-003 and AI-009~001"

	got := ExpandRanges(in)
	assert.Equal(t, want, got)
	assert.Equal(t, got, ExpandRanges(got))
	assert.Equal(t, "no ranges here", ExpandRanges("no ranges here"))
}

func TestExpandRangeMaxSpan(t *testing.T) {
	members, ok := ExpandRange("AI-001~030")
	assert.True(t, ok)
	assert.Len(t, members, 30)

	_, ok = ExpandRange("AI-001~031")
	assert.False(t, ok)
}
