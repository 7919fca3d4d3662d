package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"GATEWAY_BASE_URL", "GATEWAY_TIMEOUT_SECONDS", "SPEECH_TTS_PROVIDER", "SESSION_TTL_MINUTES", "OTEL_ENABLED", "DB_CONNECTION_STRING"} {
		t.Setenv(key, "")
	}
	t.Setenv("GATEWAY_BASE_URL", "http://127.0.0.1:8000/")

	cfg := Load()
	assert.Equal(t, "http://127.0.0.1:8000", cfg.Gateway.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "", cfg.Speech.TTSProvider)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "", cfg.Database.Connection)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GATEWAY_TIMEOUT_SECONDS", "5")
	t.Setenv("SPEECH_STT_PROVIDER", "OpenAI")
	t.Setenv("SPEECH_LISTEN_TIMEOUT_SECONDS", "7")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("GO_ENV", "production")

	cfg := Load()
	assert.Equal(t, 5*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "openai", cfg.Speech.STTProvider)
	assert.Equal(t, 7*time.Second, cfg.Speech.ListenTimeout)
	assert.True(t, cfg.Tracing.Enabled)
	assert.True(t, cfg.IsProduction())
}

func TestGetEnvAsIntFallback(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	assert.Equal(t, 3, getEnvAsInt("SOME_INT", 3))
}
