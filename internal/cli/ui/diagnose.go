package ui

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/hsidky/schemagen/internal/cli/config"
	"github.com/hsidky/schemagen/internal/diagnostic"
	"github.com/hsidky/schemagen/internal/include"
)

// Diagnostic describes a failed schemagen run for the terminal. The message
// always names the failure class code and, when known, the offending file.
func Diagnostic(err error, noColor bool) ErrorOptions {
	code := diagnostic.Code(err)
	opts := ErrorOptions{
		Level:   ErrorLevelError,
		Code:    code,
		Problem: err.Error(),
		NoColor: noColor,
	}

	switch code {
	case diagnostic.CodeInvalidJSON:
		var parseErr *diagnostic.ParseError
		errors.As(err, &parseErr)
		opts.Context = "invalid JSON"
		opts.Excerpt = parseErr.Context
		opts.Consequence = "Inclusions are resolved before parsing, so the excerpt may show included text."
		opts.HelpCommands = []string{"Check every entry: schemagen status"}

	case diagnostic.CodeMissingInclude:
		opts.Context = "include not found"
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			opts.Suggestions = SuggestFiles(pathErr.Path)
		}
		opts.HelpCommands = []string{"Include paths are relative to the file containing the directive"}

	case diagnostic.CodeIncludeCycle:
		opts.Context = "include cycle"
		opts.Consequence = "A fragment cannot include itself, directly or through other fragments."

	case diagnostic.CodeMissingMarker:
		opts.Context = "marker not found"
		opts.Consequence = "Nothing was written to the artifact missing its marker."
		opts.HelpCommands = []string{"Restore the template or remove stale output: schemagen clean"}

	case diagnostic.CodeInvalidManifest:
		opts.Context = "manifest error"
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			opts.Suggestions = manifestSuggestions(cfgErr)
		}
		opts.HelpCommands = []string{
			"View manifest: cat schema/schemagen.yml",
			"Get help: schemagen --help",
		}

	default:
		opts.Context = "schemagen failed"
	}

	return opts
}

func manifestSuggestions(cfgErr *config.ConfigError) []string {
	var valid []string
	switch cfgErr.Field {
	case "resolver":
		for _, m := range include.AllModes() {
			valid = append(valid, string(m))
		}
	case "injection":
		for _, i := range config.AllInjections() {
			valid = append(valid, string(i))
		}
	default:
		return nil
	}

	// The offending value is the quoted word in the message
	start := strings.Index(cfgErr.Message, `"`)
	end := strings.LastIndex(cfgErr.Message, `"`)
	if start < 0 || end <= start {
		return valid
	}
	if similar := FindSimilar(cfgErr.Message[start+1:end], valid, nil); len(similar) > 0 {
		return similar
	}
	return valid
}
