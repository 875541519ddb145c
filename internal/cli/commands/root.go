package commands

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hsidky/schemagen/internal/cli/config"
	"github.com/hsidky/schemagen/internal/cli/ui"
	"github.com/hsidky/schemagen/internal/logging"
	"github.com/hsidky/schemagen/internal/tooling/build"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// rootOptions holds the persistent flags shared by every command
type rootOptions struct {
	configPath string
	verbose    bool
	noColor    bool
	logger     *zap.Logger
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	return newRootCommand(&rootOptions{})
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "schemagen [args]",
		Short: "Compile SAPHRON JSON schemas into combined files and C++ sources",
		Long: color.CyanString(`schemagen - JSON schema preprocessor for SAPHRON

Resolves @file() inclusions across the schema fragment tree, writes the
combined schema files, and embeds every configured schema as a string
constant in the generated C++ header and source.

Run without a subcommand (any other arguments and unknown flags are
ignored) to generate. clean, status and version run generate instead when
given positional arguments.`),
		Args:               cobra.ArbitraryArgs,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.noColor {
				color.NoColor = true
			}
			if opts.logger != nil {
				return nil
			}
			logger, err := logging.New(opts.verbose)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "manifest path (default: schemagen.yml in . or ./schema)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newVersionCommand(opts))
	rootCmd.AddCommand(NewCompletionCommand())
	rootCmd.AddCommand(newGenerateCommand(opts))
	rootCmd.AddCommand(newCleanCommand(opts))
	rootCmd.AddCommand(newStatusCommand(opts))

	return rootCmd
}

// pipeline loads the manifest and builds a pipeline writing progress to
// the command's stdout.
func (o *rootOptions) pipeline(cmd *cobra.Command) (*build.Pipeline, error) {
	m, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	p := build.NewPipeline(m, o.logger, cmd.OutOrStdout())
	p.Version = Version
	return p, nil
}

// newVersionCommand creates the version command
func newVersionCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the schemagen version, Git commit, build date, and Go version",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return runGenerate(cmd, opts)
			}

			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			titleColor := color.New(color.FgCyan, color.Bold)
			out := cmd.OutOrStdout()

			for _, row := range [][2]string{
				{"schemagen version: ", Version},
				{"Git commit: ", GitCommit},
				{"Build date: ", BuildDate},
				{"Go version: ", goVer},
			} {
				titleColor.Fprint(out, row[0])
				fmt.Fprintln(out, row[1])
			}
			return nil
		},
	}
}

// Execute runs the root command and prints any failure as a diagnostic
func Execute() error {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) error {
	opts := &rootOptions{}
	rootCmd := newRootCommand(opts)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.Execute(); err != nil {
		ui.WriteError(stderr, ui.Diagnostic(err, opts.noColor))
		return err
	}
	return nil
}
