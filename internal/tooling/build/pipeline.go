// Package build drives a schemagen run: it resolves each configured schema,
// writes the combined files, produces the header and source artifacts, and
// records the run in a sidecar state file.
package build

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/hsidky/schemagen/internal/cli/config"
	"github.com/hsidky/schemagen/internal/codegen"
	"github.com/hsidky/schemagen/internal/include"
)

// Pipeline runs the generate, clean and status operations for a manifest
type Pipeline struct {
	Manifest *config.Manifest
	Logger   *zap.Logger
	// Out receives one progress line per processed schema entry
	Out io.Writer
	// Version is recorded in the state file
	Version string

	resolver *include.Resolver
}

// Result summarizes a generate run
type Result struct {
	Combined  []string
	Processed []config.Entry
	State     *State
	Duration  time.Duration
}

// NewPipeline creates a pipeline. A nil logger disables logging and a nil
// writer discards progress output.
func NewPipeline(m *config.Manifest, logger *zap.Logger, out io.Writer) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Pipeline{
		Manifest: m,
		Logger:   logger,
		Out:      out,
		Version:  "dev",
		resolver: include.NewResolver(logger),
	}
}

// Schema resolves the inclusions of a fragment and validates the result,
// returning compact JSON.
func (p *Pipeline) Schema(source string) ([]byte, error) {
	path := p.Manifest.SourcePath(source)
	data, err := p.resolver.Resolve(path, p.Manifest.Resolver)
	if err != nil {
		return nil, err
	}
	return codegen.Compact(path, data)
}

// Generate writes every combined file, then the header and source
// artifacts, in manifest order. It stops at the first error.
func (p *Pipeline) Generate() (*Result, error) {
	start := time.Now()
	m := p.Manifest
	result := &Result{State: NewState(p.Version)}
	result.State.Resolver = string(m.Resolver)
	result.State.Injection = string(m.Injection)

	p.Logger.Debug("starting generate",
		zap.String("manifest", m.File),
		zap.String("resolver", string(m.Resolver)),
		zap.String("injection", string(m.Injection)),
		zap.Int("entries", len(m.Entries)),
		zap.Int("combined", len(m.Combined)))

	for _, pair := range m.Combined {
		dst, err := p.EmitCombined(pair)
		if err != nil {
			return nil, err
		}
		result.Combined = append(result.Combined, dst)
	}

	decl, err := codegen.ParseLineTemplate("declaration", m.Header.Declaration)
	if err != nil {
		return nil, err
	}
	def, err := codegen.ParseLineTemplate("definition", m.Source.Definition)
	if err != nil {
		return nil, err
	}

	switch m.Injection {
	case config.InjectionAccumulate:
		err = p.accumulate(decl, def, result)
	default:
		err = p.regenerate(decl, def, result)
	}
	if err != nil {
		return nil, err
	}

	for _, path := range append(append([]string{}, result.Combined...),
		m.HeaderArtifact().Output, m.SourceArtifact().Output) {
		if err := result.State.RecordArtifact(path); err != nil {
			return nil, err
		}
	}
	result.State.GeneratedAt = time.Now()
	if err := result.State.Save(m.StatePath()); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	p.Logger.Info("generate complete",
		zap.String("run_id", result.State.RunID),
		zap.Int("combined", len(result.Combined)),
		zap.Int("entries", len(result.Processed)),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// EmitCombined resolves pair.Source and writes it in pretty form to the
// combined directory, returning the destination path.
func (p *Pipeline) EmitCombined(pair config.CombinedPair) (string, error) {
	compact, err := p.Schema(pair.Source)
	if err != nil {
		return "", err
	}
	dst := p.Manifest.CombinedPath(pair.Destination)
	if err := codegen.WriteCombined(dst, compact); err != nil {
		return "", fmt.Errorf("%s: %w", pair.Source, err)
	}
	p.Logger.Debug("wrote combined schema", zap.String("source", pair.Source), zap.String("path", dst))
	return dst, nil
}

type renderedEntry struct {
	entry       config.Entry
	declaration string
	definition  string
	hash        string
}

func (p *Pipeline) render(entry config.Entry, decl, def *codegen.LineTemplate) (renderedEntry, error) {
	compact, err := p.Schema(entry.Source)
	if err != nil {
		return renderedEntry{}, err
	}
	declLine, err := decl.Declaration(entry.Symbol)
	if err != nil {
		return renderedEntry{}, err
	}
	defLine, err := def.Definition(entry.Symbol, compact)
	if err != nil {
		return renderedEntry{}, err
	}
	return renderedEntry{
		entry:       entry,
		declaration: declLine,
		definition:  defLine,
		hash:        hashContent(compact),
	}, nil
}

// regenerate resolves every entry before touching either artifact, then
// rebuilds both from their templates.
func (p *Pipeline) regenerate(decl, def *codegen.LineTemplate, result *Result) error {
	m := p.Manifest
	rendered := make([]renderedEntry, 0, len(m.Entries))
	for _, entry := range m.Entries {
		r, err := p.render(entry, decl, def)
		if err != nil {
			return err
		}
		rendered = append(rendered, r)
	}

	declarations := make([]string, len(rendered))
	definitions := make([]string, len(rendered))
	for i, r := range rendered {
		declarations[i] = r.declaration
		definitions[i] = r.definition
	}

	header, source := m.HeaderArtifact(), m.SourceArtifact()
	// Render both before writing either so a bad template leaves no partial output
	headerContent, err := header.Render(declarations)
	if err != nil {
		return err
	}
	sourceContent, err := source.Render(definitions)
	if err != nil {
		return err
	}
	if err := codegen.WriteFileAtomic(header.Output, headerContent); err != nil {
		return err
	}
	if err := codegen.WriteFileAtomic(source.Output, sourceContent); err != nil {
		return err
	}

	for _, r := range rendered {
		p.processed(r, result)
	}
	return nil
}

// accumulate inserts each entry below the markers of the existing
// artifacts, one entry at a time.
func (p *Pipeline) accumulate(decl, def *codegen.LineTemplate, result *Result) error {
	header, source := p.Manifest.HeaderArtifact(), p.Manifest.SourceArtifact()
	for _, entry := range p.Manifest.Entries {
		r, err := p.render(entry, decl, def)
		if err != nil {
			return err
		}
		if err := header.Accumulate(r.declaration); err != nil {
			return err
		}
		if err := source.Accumulate(r.definition); err != nil {
			return err
		}
		p.processed(r, result)
	}
	return nil
}

func (p *Pipeline) processed(r renderedEntry, result *Result) {
	fmt.Fprintf(p.Out, "Processed %s\n", r.entry.Source)
	result.Processed = append(result.Processed, r.entry)
	result.State.Entries = append(result.State.Entries, EntryState{
		Source: r.entry.Source,
		Symbol: r.entry.Symbol,
		Hash:   r.hash,
	})
}
