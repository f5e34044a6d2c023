package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/specgate/pkg/errors"
)

func touch(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
}

func patterns() Patterns {
	return Patterns{
		Workbook: "docs/uiux/CS_RAG_UI_UX_*.xlsx",
		Sources: SourcePatterns{
			Requirements: "docs/references/requirements.csv",
			Features:     "docs/references/features.csv",
			API:          "docs/references/google_ready_api_spec_*.xlsx",
			DB:           "docs/**/db.xlsx",
		},
	}
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"docs/uiux/CS_RAG_UI_UX_v2.xlsx",
		"docs/uiux/CS_RAG_UI_UX_v1.xlsx",
		"docs/uiux/~$CS_RAG_UI_UX_v0.xlsx",
		"docs/references/requirements.csv",
		"docs/references/features.csv",
		"docs/references/google_ready_api_spec_v0.3.xlsx",
		"docs/references/nested/db.xlsx",
	)

	d, err := Resolve(root, patterns())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "docs/uiux/CS_RAG_UI_UX_v1.xlsx"), d.Workbook, "first in lexical order, lock files skipped")
	assert.Equal(t, filepath.Join(root, "docs/references/requirements.csv"), d.Sources.Requirements)
	assert.Equal(t, filepath.Join(root, "docs/references/google_ready_api_spec_v0.3.xlsx"), d.Sources.API)
	assert.Equal(t, filepath.Join(root, "docs/references/nested/db.xlsx"), d.Sources.DB)
	assert.Len(t, d.Paths(), 5)
	assert.Equal(t, d.Workbook, d.Paths()[0])
}

func TestResolveMissing(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "docs/uiux/CS_RAG_UI_UX_v1.xlsx")

	_, err := Resolve(root, patterns())
	require.Error(t, err)
	assert.True(t, errors.IsSourceMissing(err))
	assert.Contains(t, err.Error(), "requirements")
}

func TestGlob(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a/b.xlsx", "a/c.xlsx", "a/sub/d.xlsx")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "dir.xlsx"), 0o755))

	got, err := Glob(root, "a/*.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a/b.xlsx"), filepath.Join(root, "a/c.xlsx")}, got)

	got, err = Glob(root, "**/*.xlsx")
	require.NoError(t, err)
	assert.Len(t, got, 3)

	abs := filepath.Join(root, "a", "b.xlsx")
	got, err = Glob("/elsewhere", abs)
	require.NoError(t, err)
	assert.Equal(t, []string{abs}, got)

	_, err = Glob(root, " ")
	assert.True(t, errors.IsValidationError(err))
	_, err = Glob(root, "a/[.xlsx")
	assert.True(t, errors.IsValidationError(err))
}
