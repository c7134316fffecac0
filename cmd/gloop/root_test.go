package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevels(t *testing.T) {
	quiet, err := newLogger(false)
	require.NoError(t, err)
	assert.True(t, quiet.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, quiet.Core().Enabled(zapcore.DebugLevel))

	verbose, err := newLogger(true)
	require.NoError(t, err)
	assert.True(t, verbose.Core().Enabled(zapcore.DebugLevel))
}
