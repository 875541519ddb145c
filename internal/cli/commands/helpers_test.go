package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testManifest = `
combined:
  - source: moves/moves.json
    destination: moves.json
entries:
  - source: moves/moves.json
    symbol: Moves
  - source: worlds/worlds.json
    symbol: Worlds
`

var testFiles = map[string]string{
	"schemagen.yml":             testManifest,
	"headertemplate.h":          "#pragma once\nnamespace SAPHRON {\n\tclass JsonSchema {\n\tpublic:\n\t\t//INSERT_DEC_HERE\n\t};\n}\n",
	"sourcetemplate.cpp":        "#include \"../../include/schema.h\"\n\n//INSERT_DEF_HERE\n",
	"moves/moves.json":          `{"type": "array", "items": "@file(translate.move.json)"}`,
	"moves/translate.move.json": `{"type": "object"}`,
	"worlds/worlds.json":        `{"type": "object", "properties": {"name": {"type": "string"}}}`,
}

// writeProject lays out a schema directory and returns its manifest path
func writeProject(t *testing.T) string {
	t.Helper()
	schemaDir := filepath.Join(t.TempDir(), "schema")
	for name, content := range testFiles {
		path := filepath.Join(schemaDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(schemaDir, "combined"), 0755))
	return filepath.Join(schemaDir, "schemagen.yml")
}

// execute runs the root command with args, returning everything it printed
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	noColor := color.NoColor
	t.Cleanup(func() { color.NoColor = noColor })

	cmd := newRootCommand(&rootOptions{logger: zap.NewNop()})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}
