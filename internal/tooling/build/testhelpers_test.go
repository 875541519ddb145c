package build

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hsidky/schemagen/internal/cli/config"
)

const testHeaderTemplate = `#pragma once

#include <iostream>

namespace SAPHRON
{
	class JsonSchema
	{
	public:
		//INSERT_DEC_HERE
	};
}
`

const testSourceTemplate = `#include "../../include/schema.h"

namespace SAPHRON
{
	//INSERT_DEF_HERE
}
`

// project is a throwaway copy of the SAPHRON layout: schema/ holding the
// manifest, templates and fragments, with include/ and src/JSON/ outputs.
type project struct {
	root      string
	schemaDir string
}

func newProject(t *testing.T, manifest string, fragments map[string]string) *project {
	t.Helper()
	root := t.TempDir()
	p := &project{root: root, schemaDir: filepath.Join(root, "schema")}

	files := map[string]string{
		"headertemplate.h":   testHeaderTemplate,
		"sourcetemplate.cpp": testSourceTemplate,
		"schemagen.yml":      manifest,
	}
	for name, content := range fragments {
		files[name] = content
	}
	for name, content := range files {
		p.write(t, name, content)
	}
	require.NoError(t, os.MkdirAll(filepath.Join(p.schemaDir, "combined"), 0755))
	return p
}

func (p *project) write(t *testing.T, name, content string) {
	t.Helper()
	path := filepath.Join(p.schemaDir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func (p *project) manifest(t *testing.T) *config.Manifest {
	t.Helper()
	m, err := config.Load(filepath.Join(p.schemaDir, "schemagen.yml"))
	require.NoError(t, err)
	return m
}

func (p *project) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(p.root, rel))
	require.NoError(t, err)
	return string(data)
}

func (p *project) header(t *testing.T) string {
	return p.read(t, filepath.Join("include", "schema.h"))
}

func (p *project) source(t *testing.T) string {
	return p.read(t, filepath.Join("src", "JSON", "schema.cpp"))
}

// linesAfter returns the n lines following the first line containing marker
func linesAfter(t *testing.T, content, marker string, n int) []string {
	t.Helper()
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.Contains(line, marker) {
			require.GreaterOrEqual(t, len(lines), i+1+n)
			return lines[i+1 : i+1+n]
		}
	}
	t.Fatalf("marker %q not found in:\n%s", marker, content)
	return nil
}

var testFragments = map[string]string{
	"moves/moves.json": `{
    "type": "array",
    "items": "@file(translate.move.json)"
}`,
	"moves/translate.move.json": `{"type": "object", "properties": {"type": {"enum": ["Translate"]}, "dx": "@file(../utils/number.json)"}}`,
	"utils/number.json":         `{"type": "number", "minimum": 0}`,
	"worlds/worlds.json":        `{"type": "object", "properties": {"name": {"type": "string"}}}`,
}

const testManifest = `
combined:
  - source: moves/moves.json
    destination: moves.json
  - source: worlds/worlds.json
    destination: worlds.json
entries:
  - source: moves/moves.json
    symbol: Moves
  - source: worlds/worlds.json
    symbol: Worlds
`
