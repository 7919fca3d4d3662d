package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithCore(core)

	l.Info("SESSION", "session created", map[string]interface{}{"session_id": "abc"})
	l.Error("GATEWAY", "call failed", map[string]interface{}{"error": "API error 500"})
	l.Debug("SPEECH", "no details", nil)

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, "session created", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "SESSION", ctx["module"])
	assert.Equal(t, map[string]interface{}{"session_id": "abc"}, ctx["details"])

	assert.Equal(t, "API error 500", entries[1].ContextMap()["error_ref"])
	assert.Equal(t, map[string]interface{}{}, entries[2].ContextMap()["details"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.DebugLevel, parseLevel("nonsense"))
}
