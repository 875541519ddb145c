package codegen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hsidky/schemagen/internal/diagnostic"
)

const (
	// DefaultDeclarationMarker marks where header declarations are inserted
	DefaultDeclarationMarker = "INSERT_DEC_HERE"
	// DefaultDefinitionMarker marks where source definitions are inserted
	DefaultDefinitionMarker = "INSERT_DEF_HERE"
)

// Artifact is a generated text file seeded from a template containing a
// marker line. Generated lines always go directly below the marker.
type Artifact struct {
	Template string // path of the template used when Output does not exist
	Output   string // path of the generated file
	Marker   string // substring identifying the marker line
}

// SplitLines splits content into lines, keeping line terminators.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.SplitAfter(strings.TrimSuffix(content, "\n"), "\n")
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// MarkerIndex returns the index of the first line containing marker.
func MarkerIndex(lines []string, marker string) (int, error) {
	for i, line := range lines {
		if strings.Contains(line, marker) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", diagnostic.ErrMarkerNotFound, marker)
}

// InsertAfterMarker inserts inserted directly below the first marker line,
// in the given order, and returns the new line slice.
func InsertAfterMarker(lines []string, marker string, inserted ...string) ([]string, error) {
	i, err := MarkerIndex(lines, marker)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(lines)+len(inserted))
	out = append(out, lines[:i]...)
	markerLine := lines[i]
	if !strings.HasSuffix(markerLine, "\n") {
		markerLine += "\n"
	}
	out = append(out, markerLine)
	out = append(out, inserted...)
	out = append(out, lines[i+1:]...)
	return out, nil
}

// Base returns the current lines of the artifact: the existing output if
// present, otherwise the template.
func (a Artifact) Base() ([]string, error) {
	data, err := os.ReadFile(a.Output)
	if os.IsNotExist(err) {
		return a.TemplateLines()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", a.Output, err)
	}
	return SplitLines(string(data)), nil
}

// TemplateLines returns the lines of the template file.
func (a Artifact) TemplateLines() ([]string, error) {
	data, err := os.ReadFile(a.Template)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: template %s does not exist", diagnostic.ErrInvalidManifest, a.Template)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	return SplitLines(string(data)), nil
}

// Accumulate inserts line below the marker of the current artifact (or of
// the template when no artifact exists yet) and writes the result. Calling
// it for L1, L2, L3 leaves them in the order marker, L3, L2, L1; calling
// it twice with the same line leaves the line twice.
func (a Artifact) Accumulate(line string) error {
	lines, err := a.Base()
	if err != nil {
		return err
	}
	lines, err = InsertAfterMarker(lines, a.Marker, line)
	if err != nil {
		return fmt.Errorf("%s: %w", a.baseName(), err)
	}
	return WriteFileAtomic(a.Output, []byte(JoinLines(lines)))
}

// Render builds the artifact from its template with lines stacked below
// the marker exactly as successive Accumulate calls on a fresh template
// would leave them: the last line nearest the marker.
func (a Artifact) Render(lines []string) ([]byte, error) {
	base, err := a.TemplateLines()
	if err != nil {
		return nil, err
	}
	stacked := make([]string, len(lines))
	for i, line := range lines {
		stacked[len(lines)-1-i] = line
	}
	out, err := InsertAfterMarker(base, a.Marker, stacked...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.Template, err)
	}
	return []byte(JoinLines(out)), nil
}

// Regenerate renders the artifact from its template and replaces the output.
func (a Artifact) Regenerate(lines []string) error {
	content, err := a.Render(lines)
	if err != nil {
		return err
	}
	return WriteFileAtomic(a.Output, content)
}

func (a Artifact) baseName() string {
	if _, err := os.Stat(a.Output); err == nil {
		return a.Output
	}
	return a.Template
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, creating parent directories as needed.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
