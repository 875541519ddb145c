package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hsidky/schemagen/internal/cli/ui"
	"github.com/hsidky/schemagen/internal/tooling/build"
)

// errStale is returned by status --check when the outputs need regenerating
var errStale = errors.New("generated files are out of date, run schemagen to regenerate them")

func newStatusCommand(opts *rootOptions) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Compare the schemas and generated files with the last run",
		Long: `Resolve every schema entry and compare it with the state recorded by the
last successful generate run. Entries are reported as unchanged, changed,
new or removed; generated files as unchanged, modified or missing.

Nothing is written. With --check the command fails when anything differs.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return runGenerate(cmd, opts)
			}
			p, err := opts.pipeline(cmd)
			if err != nil {
				return err
			}
			report, err := p.Status()
			if err != nil {
				return err
			}

			renderReport(cmd, p, report, opts.noColor)

			if err := report.Err(); err != nil {
				return err
			}
			if check && !report.Clean() {
				return errStale
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "exit with an error when anything changed since the last run")
	return cmd
}

func renderReport(cmd *cobra.Command, p *build.Pipeline, report *build.Report, noColor bool) {
	out := cmd.OutOrStdout()

	ui.Header(out, "Schema status", noColor)
	if report.State == nil {
		fmt.Fprint(out, ui.Info("No generate run recorded yet", noColor))
	} else {
		kv := ui.NewKeyValueTable(out, noColor)
		kv.AddRow("Run", report.State.RunID)
		kv.AddRow("Generated", report.State.GeneratedAt.Local().Format(time.DateTime))
		kv.AddRow("Version", report.State.Version)
		kv.AddRow("Resolver", report.State.Resolver)
		kv.AddRow("Injection", report.State.Injection)
		kv.Render()
	}
	fmt.Fprintln(out)

	entries := ui.NewTable(out, []string{"Symbol", "Status", "Source"}, noColor)
	for _, e := range report.Entries {
		entries.AddRow(e.Symbol, kindLabel(e.Kind, noColor), e.Source)
	}
	entries.Render()

	if len(report.Artifacts) > 0 {
		fmt.Fprintln(out)
		artifacts := ui.NewTable(out, []string{"File", "Status"}, noColor)
		for _, a := range report.Artifacts {
			artifacts.AddRow(relativeTo(p.Manifest.Dir, a.Path), kindLabel(a.Kind, noColor))
		}
		artifacts.Render()
	}

	var removed []string
	for _, e := range report.Entries {
		if e.Kind == build.Removed {
			removed = append(removed, e.Symbol)
		}
	}
	if len(removed) > 0 {
		fmt.Fprintln(out)
		fmt.Fprint(out, ui.Warning(fmt.Sprintf("Entries removed from the manifest since the last run: %s",
			strings.Join(removed, ", ")), nil, noColor))
	}

	if report.Clean() {
		fmt.Fprintln(out)
		ui.WriteSuccess(out, "Everything is up to date", noColor)
	}
}

// kindLabel colors a change kind
func kindLabel(kind build.ChangeKind, noColor bool) string {
	var c *color.Color
	switch kind {
	case build.Unchanged:
		c = color.New(color.FgGreen)
	case build.Changed, build.Modified, build.New:
		c = color.New(color.FgYellow)
	default:
		c = color.New(color.FgRed)
	}
	if noColor {
		c.DisableColor()
	}
	return c.Sprint(string(kind))
}
