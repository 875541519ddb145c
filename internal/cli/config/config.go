// Package config loads the schemagen manifest: where the fragment tree
// lives, which schemas to compile under which symbols, and how the header
// and source artifacts are produced.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/hsidky/schemagen/internal/codegen"
	"github.com/hsidky/schemagen/internal/diagnostic"
	"github.com/hsidky/schemagen/internal/include"
)

// ConfigName is the manifest file name searched for when no path is given
const ConfigName = "schemagen"

// Injection selects how generated lines reach the header and source
type Injection string

const (
	// InjectionRegenerate rebuilds each artifact from its template every run
	InjectionRegenerate Injection = "regenerate"
	// InjectionAccumulate inserts below the marker of the existing artifact
	InjectionAccumulate Injection = "accumulate"
)

// AllInjections returns all valid injection strategies
func AllInjections() []Injection {
	return []Injection{InjectionRegenerate, InjectionAccumulate}
}

// Manifest represents the schemagen configuration
type Manifest struct {
	SchemaDir   string         `mapstructure:"schema_dir"`
	CombinedDir string         `mapstructure:"combined_dir"`
	Header      ArtifactConfig `mapstructure:"header"`
	Source      ArtifactConfig `mapstructure:"source"`
	Resolver    include.Mode   `mapstructure:"resolver"`
	Injection   Injection      `mapstructure:"injection"`
	StateFile   string         `mapstructure:"state_file"`
	Entries     []Entry        `mapstructure:"entries"`
	Combined    []CombinedPair `mapstructure:"combined"`

	// Dir is the directory of the manifest file; relative paths resolve against it
	Dir string `mapstructure:"-"`
	// File is the manifest file that was read
	File string `mapstructure:"-"`
}

// ArtifactConfig describes one generated file
type ArtifactConfig struct {
	Template    string `mapstructure:"template"`
	Output      string `mapstructure:"output"`
	Marker      string `mapstructure:"marker"`
	Declaration string `mapstructure:"declaration"`
	Definition  string `mapstructure:"definition"`
}

// Entry is one schema compiled into a named string constant
type Entry struct {
	Source string `mapstructure:"source"`
	Symbol string `mapstructure:"symbol"`
}

// CombinedPair is one schema written out as a standalone pretty JSON file
type CombinedPair struct {
	Source      string `mapstructure:"source"`
	Destination string `mapstructure:"destination"`
}

// ConfigError represents manifest validation errors
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

// Is reports ConfigError as an invalid manifest
func (e *ConfigError) Is(target error) bool {
	return target == diagnostic.ErrInvalidManifest
}

// Load reads the manifest at path, or searches for schemagen.{yml,yaml,json}
// in the working directory and ./schema when path is empty.
func Load(path string) (*Manifest, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(".")
		v.AddConfigPath("schema")
	}

	v.SetEnvPrefix("SCHEMAGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no %s manifest found: %v", diagnostic.ErrInvalidManifest, ConfigName, err)
		}
		return nil, fmt.Errorf("%w: failed to read manifest: %v", diagnostic.ErrInvalidManifest, err)
	}

	var m Manifest
	if err := v.Unmarshal(&m); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal manifest: %v", diagnostic.ErrInvalidManifest, err)
	}

	file, err := filepath.Abs(v.ConfigFileUsed())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}
	m.File = file
	m.Dir = filepath.Dir(file)

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("schema_dir", ".")
	v.SetDefault("combined_dir", "combined")
	v.SetDefault("header.template", "headertemplate.h")
	v.SetDefault("header.output", "../include/schema.h")
	v.SetDefault("header.marker", codegen.DefaultDeclarationMarker)
	v.SetDefault("header.declaration", codegen.DefaultDeclaration)
	v.SetDefault("source.template", "sourcetemplate.cpp")
	v.SetDefault("source.output", "../src/JSON/schema.cpp")
	v.SetDefault("source.marker", codegen.DefaultDefinitionMarker)
	v.SetDefault("source.definition", codegen.DefaultDefinition)
	v.SetDefault("resolver", string(include.ModeTree))
	v.SetDefault("injection", string(InjectionRegenerate))
	v.SetDefault("state_file", ".schemagen/state.json")
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate validates the manifest
func (m *Manifest) Validate() error {
	if len(m.Entries) == 0 {
		return &ConfigError{Field: "entries", Message: "at least one schema entry is required"}
	}

	seen := make(map[string]int, len(m.Entries))
	for i, e := range m.Entries {
		field := fmt.Sprintf("entries[%d]", i)
		if e.Source == "" {
			return &ConfigError{Field: field + ".source", Message: "must not be empty"}
		}
		if !identifier.MatchString(e.Symbol) {
			return &ConfigError{Field: field + ".symbol", Message: fmt.Sprintf("%q is not a valid identifier", e.Symbol)}
		}
		if prev, dup := seen[e.Symbol]; dup {
			return &ConfigError{Field: field + ".symbol", Message: fmt.Sprintf("%q already used by entries[%d]", e.Symbol, prev)}
		}
		seen[e.Symbol] = i
	}

	for i, c := range m.Combined {
		field := fmt.Sprintf("combined[%d]", i)
		if c.Source == "" {
			return &ConfigError{Field: field + ".source", Message: "must not be empty"}
		}
		if c.Destination == "" {
			return &ConfigError{Field: field + ".destination", Message: "must not be empty"}
		}
		if filepath.IsAbs(c.Destination) || strings.Contains(filepath.ToSlash(c.Destination), "/") {
			return &ConfigError{Field: field + ".destination", Message: "must be a file name inside combined_dir"}
		}
	}

	if !validMode(m.Resolver) {
		return &ConfigError{Field: "resolver", Message: fmt.Sprintf("unknown mode %q", m.Resolver)}
	}
	if !validInjection(m.Injection) {
		return &ConfigError{Field: "injection", Message: fmt.Sprintf("unknown strategy %q", m.Injection)}
	}

	for _, a := range []struct {
		field, marker, output string
	}{
		{"header", m.Header.Marker, m.Header.Output},
		{"source", m.Source.Marker, m.Source.Output},
	} {
		if a.marker == "" {
			return &ConfigError{Field: a.field + ".marker", Message: "must not be empty"}
		}
		if a.output == "" {
			return &ConfigError{Field: a.field + ".output", Message: "must not be empty"}
		}
	}

	if _, err := codegen.ParseLineTemplate("declaration", m.Header.Declaration); err != nil {
		return &ConfigError{Field: "header.declaration", Message: err.Error()}
	}
	if _, err := codegen.ParseLineTemplate("definition", m.Source.Definition); err != nil {
		return &ConfigError{Field: "source.definition", Message: err.Error()}
	}
	return nil
}

func validMode(mode include.Mode) bool {
	for _, m := range include.AllModes() {
		if m == mode {
			return true
		}
	}
	return false
}

func validInjection(inj Injection) bool {
	for _, i := range AllInjections() {
		if i == inj {
			return true
		}
	}
	return false
}

// Path resolves p against the manifest directory
func (m *Manifest) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}

// SourcePath resolves a fragment path against schema_dir
func (m *Manifest) SourcePath(source string) string {
	if filepath.IsAbs(source) {
		return source
	}
	return filepath.Join(m.Path(m.SchemaDir), source)
}

// CombinedPath resolves a combined destination against combined_dir
func (m *Manifest) CombinedPath(destination string) string {
	return filepath.Join(m.Path(m.CombinedDir), destination)
}

// HeaderArtifact returns the header artifact with resolved paths
func (m *Manifest) HeaderArtifact() codegen.Artifact {
	return codegen.Artifact{
		Template: m.Path(m.Header.Template),
		Output:   m.Path(m.Header.Output),
		Marker:   m.Header.Marker,
	}
}

// SourceArtifact returns the source artifact with resolved paths
func (m *Manifest) SourceArtifact() codegen.Artifact {
	return codegen.Artifact{
		Template: m.Path(m.Source.Template),
		Output:   m.Path(m.Source.Output),
		Marker:   m.Source.Marker,
	}
}

// StatePath returns the resolved sidecar state file path
func (m *Manifest) StatePath() string {
	return m.Path(m.StateFile)
}
