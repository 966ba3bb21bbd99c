package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		want      zapcore.Level
	}{
		{"default is warn", 0, zapcore.WarnLevel},
		{"-v is info", 1, zapcore.InfoLevel},
		{"-vv is debug", 2, zapcore.DebugLevel},
		{"-vvv stays debug", 3, zapcore.DebugLevel},
		{"absurd counts stay debug", 9, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerbosityToLevel(tt.verbosity))
		})
	}
}

func TestLoggerSafeBeforeInitialize(t *testing.T) {
	// The package-level wrappers must not panic before Initialize runs.
	assert.NotPanics(t, func() {
		Infow("not initialized yet", FieldMethod, "initialize")
		Debugw("still fine")
		Warnw("and warnings too")
	})
}

func TestInitialize(t *testing.T) {
	t.Run("console output", func(t *testing.T) {
		require.NoError(t, Initialize(false, VerbosityInfo))
		require.NotNil(t, Logger)
		assert.False(t, JSONOutput)
	})

	t.Run("json output", func(t *testing.T) {
		require.NoError(t, Initialize(true, VerbosityDebug))
		require.NotNil(t, Logger)
		assert.True(t, JSONOutput)
	})
}

func TestShouldLogTrace(t *testing.T) {
	assert.False(t, ShouldLogTrace(VerbosityDebug))
	assert.True(t, ShouldLogTrace(VerbosityTrace))
	assert.True(t, ShouldLogTrace(VerbosityTrace+1))
}
