// Package codegen turns resolved schema JSON into the generated artifacts:
// pretty combined JSON files, and the declaration and definition lines
// injected into the C++ header and source.
package codegen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hsidky/schemagen/internal/diagnostic"
)

// CombinedIndent is the indentation used for combined schema files.
const CombinedIndent = "    "

// Compact validates data as a single JSON value and returns it without
// insignificant whitespace. Invalid input yields a *diagnostic.ParseError
// naming path.
func Compact(path string, data []byte) ([]byte, error) {
	// Unmarshal reports accurate offsets; Compact does not
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, diagnostic.NewParseError(path, data, err)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, diagnostic.NewParseError(path, data, err)
	}
	return buf.Bytes(), nil
}

// Pretty indents compact JSON for a combined file.
func Pretty(compact []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", CombinedIndent); err != nil {
		return nil, fmt.Errorf("failed to indent JSON: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// WriteCombined writes compact JSON to dst in pretty form, replacing any
// existing file. The parent directory is created when missing.
func WriteCombined(dst string, compact []byte) error {
	pretty, err := Pretty(compact)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create combined directory: %w", err)
	}
	if err := os.WriteFile(dst, pretty, 0644); err != nil {
		return fmt.Errorf("failed to write combined file: %w", err)
	}
	return nil
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// EscapeLiteral escapes JSON text for use inside a double-quoted C++
// string literal.
func EscapeLiteral(compact []byte) string {
	return literalEscaper.Replace(string(compact))
}
