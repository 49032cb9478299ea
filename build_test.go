package codegraph_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	codegraph "github.com/viant/codegraph"
	"github.com/viant/codegraph/internal/codegraph/ir"
)

const goSrc = `package sample

func Greet() string {
	return "hi"
}
`

func TestBuildProducesDocumentPerFile(t *testing.T) {
	files := []codegraph.FileInput{{Path: "sample.go", Content: []byte(goSrc)}}
	result := codegraph.Build(files, codegraph.DefaultBuildConfig(), "repo", "snap", time.Unix(0, 0))

	require.Empty(t, result.Diagnostics)
	assert.Equal(t, 1, result.Stats.FilesSucceeded)
	assert.Equal(t, 0, result.Stats.FilesFailed)

	doc, ok := result.IRDocuments["sample.go"]
	require.True(t, ok)

	var found bool
	for _, n := range doc.Nodes() {
		if n.Kind == ir.KindFunction && n.Name == "Greet" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestBuildRecordsDiagnosticForUnknownExtension(t *testing.T) {
	files := []codegraph.FileInput{{Path: "weird.rs", Content: []byte("fn main() {}")}}
	result := codegraph.Build(files, codegraph.DefaultBuildConfig(), "repo", "snap", time.Unix(0, 0))

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "weird.rs", result.Diagnostics[0].Path)
	assert.Equal(t, 1, result.Stats.FilesFailed)
	assert.Empty(t, result.IRDocuments)
}

func TestFormatDiagnosticsRendersPlainTextForNonTerminal(t *testing.T) {
	files := []codegraph.FileInput{{Path: "weird.rs", Content: []byte("fn main() {}")}}
	result := codegraph.Build(files, codegraph.DefaultBuildConfig(), "repo", "snap", time.Unix(0, 0))

	out := result.FormatDiagnostics(nil)
	assert.Equal(t, "weird.rs: no language plugin registered for extension \".rs\"\n", out)
}

func TestBuildProvenanceIsDeterministicModuloTimestamp(t *testing.T) {
	files := []codegraph.FileInput{{Path: "sample.go", Content: []byte(goSrc)}}
	cfg := codegraph.DefaultBuildConfig()

	r1 := codegraph.Build(files, cfg, "repo", "snap", time.Unix(1, 0))
	r2 := codegraph.Build(files, cfg, "repo", "snap", time.Unix(2, 0))

	assert.True(t, r1.Provenance.EqualModuloTimestamp(r2.Provenance))
	assert.NotEqual(t, r1.Provenance.BuildTimestamp, r2.Provenance.BuildTimestamp)
}

func TestBuildConfigFingerprintChangesWithLayers(t *testing.T) {
	files := []codegraph.FileInput{{Path: "sample.go", Content: []byte(goSrc)}}

	full := codegraph.DefaultBuildConfig()
	minimal := codegraph.DefaultBuildConfig()
	minimal.Layers = codegraph.LayerFlags{}

	r1 := codegraph.Build(files, full, "repo", "snap", time.Unix(0, 0))
	r2 := codegraph.Build(files, minimal, "repo", "snap", time.Unix(0, 0))

	assert.NotEqual(t, r1.Provenance.ConfigFingerprint, r2.Provenance.ConfigFingerprint)
	assert.Equal(t, r1.Provenance.InputFingerprint, r2.Provenance.InputFingerprint)
}
