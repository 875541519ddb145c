package commands

import (
	"fmt"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hsidky/schemagen/internal/cli/ui"
)

// confirm asks a yes/no question on the terminal
var confirm = func(message string) (bool, error) {
	ok := false
	prompt := &survey.Confirm{Message: message, Default: false}
	if err := survey.AskOne(prompt, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

func newCleanCommand(opts *rootOptions) *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove combined schemas, generated sources and state",
		Long: `Delete every file in the combined directory, the generated header and
source, and the state file. Directories inside the combined directory are
left alone. A missing combined directory is an error.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return runGenerate(cmd, opts)
			}
			p, err := opts.pipeline(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if interactive {
				targets, err := p.CleanTargets()
				if err != nil {
					return err
				}
				if len(targets) == 0 {
					fmt.Fprint(out, ui.Info("Nothing to clean", opts.noColor))
					return nil
				}
				for _, path := range targets {
					fmt.Fprintf(out, "  %s\n", relativeTo(p.Manifest.Dir, path))
				}
				ok, err := confirm(fmt.Sprintf("Remove %d files?", len(targets)))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprint(out, ui.Info("Clean cancelled", opts.noColor))
					return nil
				}
			}

			removed, err := p.Clean()
			gray := color.New(color.FgHiBlack)
			if opts.noColor {
				gray.DisableColor()
			}
			for _, path := range removed {
				gray.Fprintf(out, "Removed %s\n", relativeTo(p.Manifest.Dir, path))
			}
			if err != nil {
				return err
			}

			ui.WriteSuccess(out, fmt.Sprintf("Removed %d files", len(removed)), opts.noColor)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "list the files and ask before removing them")
	return cmd
}

// relativeTo shortens path for display when it lies under dir
func relativeTo(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return path
	}
	return rel
}
