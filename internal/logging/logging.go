// Package logging builds the zap logger shared by the schemagen commands.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config returns the logger configuration. Logs go to stderr so they never
// mix with progress lines on stdout. Only warnings and errors are logged
// unless verbose is set.
func Config(verbose bool) zap.Config {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	config.DisableStacktrace = !verbose
	return config
}

// New builds a logger from Config
func New(verbose bool) (*zap.Logger, error) {
	logger, err := Config(verbose).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Named("schemagen"), nil
}
