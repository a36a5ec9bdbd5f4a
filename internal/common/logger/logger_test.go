package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Levels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
	}

	for level, want := range cases {
		log, err := NewLogger(level, "json", "egov-event-export")
		require.NoError(t, err)
		assert.True(t, log.Core().Enabled(want), level)
		if want > zapcore.DebugLevel {
			assert.False(t, log.Core().Enabled(want-1), level)
		}
	}
}

func TestNewLogger_Console(t *testing.T) {
	log, err := NewLogger("debug", "console", "")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}
