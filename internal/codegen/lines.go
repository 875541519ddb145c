package codegen

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

const (
	// DefaultDeclaration declares one schema as a static member of SAPHRON::JsonSchema
	DefaultDeclaration = "\t\tstatic std::string {{.Symbol}};"
	// DefaultDefinition defines one schema member with its escaped JSON
	DefaultDefinition = "\tstd::string SAPHRON::JsonSchema::{{.Symbol}} = \"{{.Escaped}}\";"
)

// LineData is the data available to declaration and definition templates
type LineData struct {
	Symbol  string
	Escaped string
}

// LineTemplate renders a single generated line
type LineTemplate struct {
	tmpl *template.Template
}

// ParseLineTemplate compiles a line template. The template must reference
// .Symbol and must not produce more than one line.
func ParseLineTemplate(name, text string) (*LineTemplate, error) {
	if !strings.Contains(text, ".Symbol") {
		return nil, fmt.Errorf("%s template must reference .Symbol", name)
	}
	if strings.Contains(text, "\n") {
		return nil, fmt.Errorf("%s template must be a single line", name)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid %s template: %w", name, err)
	}
	return &LineTemplate{tmpl: tmpl}, nil
}

// Render executes the template, returning the line with a trailing newline
func (lt *LineTemplate) Render(data LineData) (string, error) {
	var buf bytes.Buffer
	if err := lt.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", lt.tmpl.Name(), err)
	}
	buf.WriteByte('\n')
	return buf.String(), nil
}

// Declaration renders the header line for symbol
func (lt *LineTemplate) Declaration(symbol string) (string, error) {
	return lt.Render(LineData{Symbol: symbol})
}

// Definition renders the source line for symbol holding compact JSON
func (lt *LineTemplate) Definition(symbol string, compact []byte) (string, error) {
	return lt.Render(LineData{Symbol: symbol, Escaped: EscapeLiteral(compact)})
}
