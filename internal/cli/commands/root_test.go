package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	if !strings.HasPrefix(cmd.Use, "schemagen") {
		t.Errorf("expected Use to start with 'schemagen', got %s", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	if cmd.Long == "" {
		t.Error("expected Long description to be set")
	}

	expectedCommands := []string{
		"version",
		"generate",
		"clean",
		"status",
		"completion",
	}

	for _, expected := range expectedCommands {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == expected {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected command %s to be registered", expected)
		}
	}

	for _, flag := range []string{"config", "verbose", "no-color"} {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("expected persistent flag --%s", flag)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	GitCommit = "abc123"
	BuildDate = "2025-01-01"
	GoVersion = "go1.23"
	defer func() {
		Version, GitCommit, BuildDate, GoVersion = "dev", "unknown", "unknown", "unknown"
	}()

	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	for _, expected := range []string{"1.0.0-test", "abc123", "2025-01-01", "go1.23"} {
		if !strings.Contains(out, expected) {
			t.Errorf("expected version output to contain %q, got:\n%s", expected, out)
		}
	}
}

func TestPositionalArgumentsGenerate(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--bogus"}},
		{"unknown flag with word", []string{"--bogus", "everything"}},
		{"clean with argument", []string{"clean", "extra"}},
		{"status with argument", []string{"status", "now"}},
		{"version with argument", []string{"version", "now"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manifest := writeProject(t)

			out, err := execute(t, append(tt.args, "--config", manifest, "--no-color")...)
			if err != nil {
				t.Fatalf("expected %v to generate, got: %v", tt.args, err)
			}
			if !strings.Contains(out, "✓ Generated 2 schemas and 1 combined files") {
				t.Errorf("expected generate summary, got:\n%s", out)
			}

			header := filepath.Join(filepath.Dir(manifest), "..", "include", "schema.h")
			if _, err := os.Stat(header); err != nil {
				t.Errorf("expected %s to be generated: %v", header, err)
			}
		})
	}
}

func TestRunPrintsDiagnostic(t *testing.T) {
	noColor := color.NoColor
	defer func() { color.NoColor = noColor }()

	var stdout, stderr bytes.Buffer
	missing := filepath.Join(t.TempDir(), "schemagen.yml")
	if err := run([]string{"--config", missing, "--no-color"}, &stdout, &stderr); err == nil {
		t.Fatal("expected a missing manifest to fail")
	}

	if !strings.Contains(stderr.String(), "❌ [S005] MANIFEST ERROR") {
		t.Errorf("expected a manifest diagnostic on stderr, got:\n%s", stderr.String())
	}
	if !strings.Contains(stderr.String(), "schemagen --help") {
		t.Errorf("expected help commands on stderr, got:\n%s", stderr.String())
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion failed: %v", err)
	}
	if !strings.Contains(out, "schemagen") {
		t.Error("expected bash completion to mention schemagen")
	}

	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}
