package manifest

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/isdood/gloop/pkg/types"
)

func sampleCompilation() *types.Compilation {
	return &types.Compilation{
		CompilationID: "0198f7a2-0000-7000-8000-0123456789ab",
		Root:          "/srv/deploy",
		ContentHash:   "abc123",
		CreatedAt:     time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC),
		Commands: []types.Command{
			{
				Position: 1,
				SeqPath:  "1",
				Argv:     []string{"systemctl", "restart", "nginx"},
				Shell:    "systemctl restart nginx",
				Source:   "0001-systemctl",
			},
		},
		Diagnostics: []types.Diagnostic{
			{Severity: types.SeverityWarning, Path: "0002-a", Message: "duplicate sequence 2 shared by 0002-a, 0002-b; name order is the tiebreak"},
		},
	}
}

func TestNewDocument(t *testing.T) {
	comp := sampleCompilation()
	doc := New(comp)

	assert.Equal(t, Version, doc.Version)
	assert.Equal(t, comp.CompilationID, doc.Compilation)
	assert.Equal(t, comp.Root, doc.Root)
	assert.Equal(t, comp.ContentHash, doc.ContentHash)
	require.Len(t, doc.Commands, 1)
	assert.Equal(t, []string{"systemctl", "restart", "nginx"}, doc.Commands[0].Argv)
	assert.Len(t, doc.Diagnostics, 1)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleCompilation(), FormatJSON))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, "/srv/deploy", doc.Root)
	require.Len(t, doc.Commands, 1)
	assert.Equal(t, "systemctl restart nginx", doc.Commands[0].Shell)

	// Indented output for human eyes.
	assert.Contains(t, buf.String(), "\n  \"version\": 1")
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleCompilation(), FormatYAML))

	var doc Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, "abc123", doc.ContentHash)
	require.Len(t, doc.Commands, 1)
	assert.Equal(t, "0001-systemctl", doc.Commands[0].Source)
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, sampleCompilation(), "toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown manifest format")
	assert.Zero(t, buf.Len())
}
