// Package include resolves "@file(<path>)" directives across a tree of
// JSON schema fragments.
//
// Two strategies are provided. Text substitutes every quoted directive
// literally before any JSON parsing takes place. Value walks the JSON token
// stream of each fragment and only replaces string values that consist
// entirely of a directive, preserving key order and number literals.
package include

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hsidky/schemagen/internal/diagnostic"
)

// Mode selects the resolution strategy
type Mode string

const (
	ModeText Mode = "text"
	ModeTree Mode = "tree"
)

// AllModes returns all valid resolution modes
func AllModes() []Mode {
	return []Mode{ModeTree, ModeText}
}

// quotedDirective matches a directive occupying a whole JSON string,
// quotes included. The path may not contain ')' or '"'.
var quotedDirective = regexp.MustCompile(`"@file\(([^)"]*)\)"`)

// bareDirective matches the decoded value of a JSON string leaf.
var bareDirective = regexp.MustCompile(`^@file\(([^)"]*)\)$`)

// Resolver expands inclusion directives. Results are memoized per
// resolved path, so a Resolver should live for a single generator run.
type Resolver struct {
	logger *zap.Logger
	texts  map[string]string
	values map[string][]byte
}

// NewResolver creates a resolver. A nil logger disables logging.
func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		logger: logger,
		texts:  make(map[string]string),
		values: make(map[string][]byte),
	}
}

// Resolve dispatches to Text or Value and always returns bytes.
func (r *Resolver) Resolve(path string, mode Mode) ([]byte, error) {
	switch mode {
	case ModeText:
		text, err := r.Text(path)
		if err != nil {
			return nil, err
		}
		return []byte(text), nil
	case ModeTree, "":
		return r.Value(path)
	default:
		return nil, fmt.Errorf("unknown resolver mode %q", mode)
	}
}

// Text reads path and replaces every quoted directive with the fully
// resolved raw text of the referenced file. Referenced paths are relative
// to the directory of the file containing the directive. The result is
// not validated as JSON.
func (r *Resolver) Text(path string) (string, error) {
	return r.text(filepath.Clean(path), nil)
}

func (r *Resolver) text(path string, stack []string) (string, error) {
	if cached, ok := r.texts[path]; ok {
		return cached, nil
	}
	if err := checkCycle(path, stack); err != nil {
		return "", err
	}

	data, err := readSource(path, stack)
	if err != nil {
		return "", err
	}
	content := string(data)
	dir := filepath.Dir(path)
	stack = append(stack, path)

	resolved := make(map[string]string)
	for _, match := range quotedDirective.FindAllStringSubmatch(content, -1) {
		if _, done := resolved[match[0]]; done {
			continue
		}
		target := filepath.Join(dir, match[1])
		inner, err := r.text(target, stack)
		if err != nil {
			return "", includeError(path, match[1], err)
		}
		r.logger.Debug("resolved include",
			zap.String("file", path),
			zap.String("include", target),
			zap.String("mode", string(ModeText)))
		resolved[match[0]] = inner
	}

	if len(resolved) > 0 {
		content = quotedDirective.ReplaceAllStringFunc(content, func(directive string) string {
			return resolved[directive]
		})
	}

	r.texts[path] = content
	return content, nil
}

// Value parses path as JSON and returns its compact serialization with
// every directive string leaf replaced by the resolved value of the
// referenced fragment. Object keys, and strings with other text around a
// directive, are left as they are.
func (r *Resolver) Value(path string) ([]byte, error) {
	return r.value(filepath.Clean(path), nil)
}

func (r *Resolver) value(path string, stack []string) ([]byte, error) {
	if cached, ok := r.values[path]; ok {
		return cached, nil
	}
	if err := checkCycle(path, stack); err != nil {
		return nil, err
	}

	data, err := readSource(path, stack)
	if err != nil {
		return nil, err
	}

	w := &walker{
		resolver: r,
		path:     path,
		stack:    append(stack, path),
		dec:      json.NewDecoder(bytes.NewReader(data)),
	}
	w.dec.UseNumber()

	if err := w.copyValue(); err != nil {
		return nil, w.wrap(data, err)
	}
	if _, err := w.dec.Token(); err != io.EOF {
		if err == nil {
			return nil, diagnostic.NewParseErrorAt(path, data, w.dec.InputOffset(),
				errors.New("invalid data after top-level value"))
		}
		return nil, w.wrap(data, err)
	}

	out := w.buf.Bytes()
	r.values[path] = out
	return out, nil
}

// walker re-emits one fragment's token stream as compact JSON.
type walker struct {
	resolver *Resolver
	path     string
	stack    []string
	dec      *json.Decoder
	buf      bytes.Buffer
}

// includeFailure marks errors raised while resolving a nested fragment so
// they are not reported as syntax errors of the including file.
type includeFailure struct {
	err error
}

func (f *includeFailure) Error() string { return f.err.Error() }
func (f *includeFailure) Unwrap() error { return f.err }

func (w *walker) wrap(data []byte, err error) error {
	var nested *includeFailure
	if errors.As(err, &nested) {
		return nested.err
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return diagnostic.NewParseErrorAt(w.path, data, int64(len(data)),
			errors.New("unexpected end of JSON input"))
	}
	return diagnostic.NewParseError(w.path, data, err)
}

func (w *walker) copyValue() error {
	tok, err := w.dec.Token()
	if err != nil {
		return err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return w.copyObject()
		case '[':
			return w.copyArray()
		default:
			return fmt.Errorf("unexpected delimiter %q", rune(t))
		}
	case string:
		if m := bareDirective.FindStringSubmatch(t); m != nil {
			return w.include(m[1])
		}
		return writeString(&w.buf, t)
	case json.Number:
		w.buf.WriteString(t.String())
	case bool:
		w.buf.WriteString(strconv.FormatBool(t))
	case nil:
		w.buf.WriteString("null")
	}
	return nil
}

func (w *walker) copyObject() error {
	w.buf.WriteByte('{')
	for i := 0; w.dec.More(); i++ {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		key, err := w.dec.Token()
		if err != nil {
			return err
		}
		name, ok := key.(string)
		if !ok {
			return fmt.Errorf("object key is %T, not string", key)
		}
		if err := writeString(&w.buf, name); err != nil {
			return err
		}
		w.buf.WriteByte(':')
		if err := w.copyValue(); err != nil {
			return err
		}
	}
	if _, err := w.dec.Token(); err != nil {
		return err
	}
	w.buf.WriteByte('}')
	return nil
}

func (w *walker) copyArray() error {
	w.buf.WriteByte('[')
	for i := 0; w.dec.More(); i++ {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		if err := w.copyValue(); err != nil {
			return err
		}
	}
	if _, err := w.dec.Token(); err != nil {
		return err
	}
	w.buf.WriteByte(']')
	return nil
}

func (w *walker) include(rel string) error {
	target := filepath.Join(filepath.Dir(w.path), rel)
	inner, err := w.resolver.value(target, w.stack)
	if err != nil {
		return &includeFailure{err: includeError(w.path, rel, err)}
	}
	w.resolver.logger.Debug("resolved include",
		zap.String("file", w.path),
		zap.String("include", target),
		zap.String("mode", string(ModeTree)))
	w.buf.Write(inner)
	return nil
}

// writeString encodes s as a JSON string without HTML escaping.
func writeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates every value with a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}

func checkCycle(path string, stack []string) error {
	for i, p := range stack {
		if p == path {
			chain := append(append([]string{}, stack[i:]...), path)
			return fmt.Errorf("%w: %s", diagnostic.ErrIncludeCycle, strings.Join(chain, " -> "))
		}
	}
	return nil
}

// includeError annotates a failure with the directive that triggered it.
// Nested failures already carry their own annotation and pass through.
// readSource reads a fragment. A missing top-level source is reported
// against the manifest that named it.
func readSource(path string, stack []string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if len(stack) == 0 && os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: schema source %s does not exist", diagnostic.ErrInvalidManifest, path)
	}
	return data, err
}

func includeError(from, rel string, err error) error {
	var parseErr *diagnostic.ParseError
	if errors.As(err, &parseErr) || errors.Is(err, diagnostic.ErrIncludeCycle) {
		return err
	}
	if _, ok := err.(*os.PathError); ok {
		return fmt.Errorf("%s: @file(%s): %w", from, rel, err)
	}
	return err
}
