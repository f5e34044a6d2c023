package catalog

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/specgate/internal/cmd/application"
	"github.com/agentstation/specgate/internal/config"
	"github.com/agentstation/specgate/internal/fixture"
	"github.com/agentstation/specgate/pkg/errors"
	"github.com/agentstation/specgate/pkg/tabular/xlsx"
)

func mockApp(t *testing.T, dir, format string) *application.Mock {
	return &application.Mock{
		OutputFormatFunc: func() string { return format },
		SettingsFunc: func(root string) (*config.Settings, error) {
			v := config.New("", t.TempDir())
			v.Set(config.KeyRoot, dir)
			v.Set(config.KeyWorkbook, "*.xlsx")
			v.Set("sources.requirements", fixture.RequirementsFile)
			v.Set("sources.features", fixture.FeaturesFile)
			v.Set("sources.api", fixture.APIFile)
			v.Set("sources.db", fixture.DBFile)
			return config.Load(v)
		},
	}
}

func TestCatalogCommand(t *testing.T) {
	dir := t.TempDir()
	src := fixture.DefaultSources()
	src.Write(t, dir)
	require.NoError(t, xlsx.Save(filepath.Join(dir, "CS_RAG_UI_UX_v1.xlsx"), src.CleanWorkbook()))

	cmd := NewCommand(mockApp(t, dir, "json"))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--examples", "2"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), `"kind": "requirement_id"`)
	assert.Contains(t, out.String(), "AI-001")
}

func TestCatalogCommandMissingSources(t *testing.T) {
	cmd := NewCommand(mockApp(t, t.TempDir(), "table"))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, errors.IsSourceMissing(err))
}
