package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestConfig(t *testing.T) {
	quiet := Config(false)
	assert.Equal(t, zapcore.WarnLevel, quiet.Level.Level())
	assert.Equal(t, "json", quiet.Encoding)
	assert.True(t, quiet.DisableStacktrace)
	assert.Equal(t, []string{"stderr"}, quiet.OutputPaths)

	verbose := Config(true)
	assert.Equal(t, zapcore.DebugLevel, verbose.Level.Level())
	assert.Equal(t, "console", verbose.Encoding)
	assert.False(t, verbose.DisableStacktrace)
}

func TestNew(t *testing.T) {
	logger, err := New(true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = New(false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
}
