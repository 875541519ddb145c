package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsidky/schemagen/internal/diagnostic"
)

func entryKinds(r *Report) map[string]ChangeKind {
	kinds := make(map[string]ChangeKind, len(r.Entries))
	for _, e := range r.Entries {
		kinds[e.Symbol] = e.Kind
	}
	return kinds
}

func TestStatus(t *testing.T) {
	t.Run("before any generate run", func(t *testing.T) {
		p := newProject(t, testManifest, testFragments)

		report, err := NewPipeline(p.manifest(t), nil, nil).Status()
		require.NoError(t, err)

		assert.Nil(t, report.State)
		assert.False(t, report.Clean())
		assert.Equal(t, map[string]ChangeKind{"Moves": New, "Worlds": New}, entryKinds(report))
		assert.Empty(t, report.Artifacts)
	})

	t.Run("right after generate", func(t *testing.T) {
		p := newProject(t, testManifest, testFragments)
		_, err := NewPipeline(p.manifest(t), nil, nil).Generate()
		require.NoError(t, err)

		report, err := NewPipeline(p.manifest(t), nil, nil).Status()
		require.NoError(t, err)

		assert.True(t, report.Clean())
		assert.Len(t, report.Artifacts, 4)
		assert.NoError(t, report.Err())
	})

	t.Run("edited fragment changes every entry that includes it", func(t *testing.T) {
		p := newProject(t, testManifest, testFragments)
		_, err := NewPipeline(p.manifest(t), nil, nil).Generate()
		require.NoError(t, err)

		p.write(t, "utils/number.json", `{"type": "number", "minimum": 1}`)

		report, err := NewPipeline(p.manifest(t), nil, nil).Status()
		require.NoError(t, err)
		assert.Equal(t, map[string]ChangeKind{"Moves": Changed, "Worlds": Unchanged}, entryKinds(report))
		assert.False(t, report.Clean())
	})

	t.Run("hand edited and deleted artifacts", func(t *testing.T) {
		p := newProject(t, testManifest, testFragments)
		m := p.manifest(t)
		_, err := NewPipeline(m, nil, nil).Generate()
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(m.HeaderArtifact().Output, []byte("// edited\n"), 0644))
		require.NoError(t, os.Remove(filepath.Join(p.schemaDir, "combined", "worlds.json")))

		report, err := NewPipeline(m, nil, nil).Status()
		require.NoError(t, err)

		kinds := make(map[string]ChangeKind)
		for _, a := range report.Artifacts {
			kinds[a.Path] = a.Kind
		}
		assert.Equal(t, Modified, kinds[m.HeaderArtifact().Output])
		assert.Equal(t, Missing, kinds[filepath.Join(p.schemaDir, "combined", "worlds.json")])
		assert.Equal(t, Unchanged, kinds[m.SourceArtifact().Output])
	})

	t.Run("entries dropped from the manifest and broken fragments", func(t *testing.T) {
		p := newProject(t, testManifest, testFragments)
		_, err := NewPipeline(p.manifest(t), nil, nil).Generate()
		require.NoError(t, err)

		p.write(t, "schemagen.yml", "entries:\n  - {source: moves/moves.json, symbol: Moves}\n  - {source: broken.json, symbol: Broken}\n")
		p.write(t, "broken.json", `{"type": `)

		report, err := NewPipeline(p.manifest(t), nil, nil).Status()
		require.NoError(t, err)

		assert.Equal(t, map[string]ChangeKind{
			"Moves":  Unchanged,
			"Broken": Failed,
			"Worlds": Removed,
		}, entryKinds(report))
		assert.Equal(t, diagnostic.CodeInvalidJSON, diagnostic.Code(report.Err()))
	})
}
