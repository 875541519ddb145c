package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hsidky/schemagen/internal/cli/ui"
)

func newGenerateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "generate",
		Aliases: []string{"g"},
		Short:   "Write the combined schemas and the generated header and source",
		Long: `Resolve every configured schema and write the generated files.

Combined schemas are written first, in manifest order. Then each schema
entry is compiled into a declaration in the header and a definition in the
source, printing one "Processed <source>" line per entry. The first error
stops the run.

This is also what running schemagen without a subcommand does.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}
}

func runGenerate(cmd *cobra.Command, opts *rootOptions) error {
	p, err := opts.pipeline(cmd)
	if err != nil {
		return err
	}

	result, err := p.Generate()
	if err != nil {
		return err
	}

	ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Generated %d schemas and %d combined files in %s",
		len(result.Processed), len(result.Combined), result.Duration.Round(time.Millisecond)), opts.noColor)
	return nil
}
