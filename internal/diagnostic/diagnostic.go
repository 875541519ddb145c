// Package diagnostic defines the error types shared by the schema
// generator stages and the source-location helpers used to report them.
package diagnostic

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// Error codes by failure class
const (
	CodeInvalidJSON     = "S001"
	CodeMissingInclude  = "S002"
	CodeIncludeCycle    = "S003"
	CodeMissingMarker   = "S004"
	CodeInvalidManifest = "S005"
	CodeUnknown         = "S999"
)

var (
	// ErrIncludeCycle is returned when a fragment includes itself, directly or transitively.
	ErrIncludeCycle = errors.New("include cycle")
	// ErrMarkerNotFound is returned when a template or artifact has no marker line.
	ErrMarkerNotFound = errors.New("marker not found")
	// ErrInvalidManifest marks manifest problems, including templates it names that cannot be read.
	ErrInvalidManifest = errors.New("invalid manifest")
)

// SourceLocation represents a location in a schema file
type SourceLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// ParseError reports a schema file whose (resolved) text is not valid JSON.
type ParseError struct {
	Path     string
	Location SourceLocation
	Context  []string // lines surrounding the failure, at most 2 before and 2 after
	Err      error
}

// NewParseError builds a ParseError, deriving line and column from the
// offset carried by encoding/json errors when there is one.
func NewParseError(path string, content []byte, err error) *ParseError {
	pe := &ParseError{
		Path:     path,
		Location: SourceLocation{File: path},
		Err:      err,
	}

	var offset int64 = -1
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	}

	if offset >= 0 {
		pe.Location = LocationAt(path, content, offset)
		pe.Context = contextLines(string(content), pe.Location.Line)
	}
	return pe
}

// NewParseErrorAt builds a ParseError for a failure at a known byte offset.
func NewParseErrorAt(path string, content []byte, offset int64, err error) *ParseError {
	loc := LocationAt(path, content, offset)
	return &ParseError{
		Path:     path,
		Location: loc,
		Context:  contextLines(string(content), loc.Line),
		Err:      err,
	}
}

func (e *ParseError) Error() string {
	if e.Location.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %v", e.Path, e.Location.Line, e.Location.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LocationAt converts a byte offset into a 1-based line and column.
// encoding/json reports the offset just past the offending byte.
func LocationAt(path string, content []byte, offset int64) SourceLocation {
	if offset > int64(len(content)) {
		offset = int64(len(content))
	}
	line, col := 1, 1
	for i := int64(0); i < offset-1 && i < int64(len(content)); i++ {
		if content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return SourceLocation{File: path, Line: line, Column: col}
}

func contextLines(content string, line int) []string {
	lines := strings.Split(content, "\n")
	if line < 1 || line > len(lines) {
		return nil
	}

	idx := line - 1
	start := max(0, idx-2)
	end := min(len(lines), idx+3)

	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, fmt.Sprintf("%4d | %s", i+1, lines[i]))
	}
	return out
}

// Code classifies err into one of the S-codes above.
func Code(err error) string {
	var parseErr *ParseError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &parseErr):
		return CodeInvalidJSON
	case errors.Is(err, ErrIncludeCycle):
		return CodeIncludeCycle
	case errors.Is(err, ErrMarkerNotFound):
		return CodeMissingMarker
	case errors.Is(err, ErrInvalidManifest):
		return CodeInvalidManifest
	case errors.Is(err, fs.ErrNotExist):
		return CodeMissingInclude
	default:
		return CodeUnknown
	}
}
