package main

import (
	"os"

	"github.com/hsidky/schemagen/internal/cli/commands"
)

var (
	// Version information - will be set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

func main() {
	setBuildInfo()

	// Execute has already printed the diagnostic
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

// setBuildInfo hands the ldflags-stamped values to the version command
func setBuildInfo() {
	commands.Version = Version
	commands.GitCommit = GitCommit
	commands.BuildDate = BuildDate
	commands.GoVersion = GoVersion
}
