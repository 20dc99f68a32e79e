package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppConfig_Defaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "APP_TIMEZONE", "LLM_PROVIDER", "DRAFT_SESSION_TIMEOUT", "BOT_NAME", "WHATSAPP_ENABLED", "REDIS_DB", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadAppConfig()

	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "Asia/Kolkata", cfg.Location.String())
	assert.Equal(t, "groq", cfg.LLMProvider)
	assert.Equal(t, 30*time.Minute, cfg.DraftSessionTimeout)
	assert.Equal(t, "AI Buddy", cfg.BotName)
	assert.False(t, cfg.WhatsappEnabled)
	assert.Zero(t, cfg.RedisDB)
	assert.Equal(t, 5.0, cfg.RateLimitPerSecond)
	assert.Equal(t, 20, cfg.RateLimitBurst)
}

func TestLoadAppConfig_Overrides(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("DRAFT_SESSION_TIMEOUT", "10m")
	t.Setenv("CLASSIFY_TIMEOUT", "5")
	t.Setenv("DRAFT_TIMEOUT", "soon")
	t.Setenv("WHATSAPP_ENABLED", "true")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("RATE_LIMIT_BURST", "3")

	cfg, err := LoadAppConfig()

	require.NoError(t, err)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, 10*time.Minute, cfg.DraftSessionTimeout)
	assert.Equal(t, 5*time.Second, cfg.ClassifyTimeout)
	assert.Equal(t, 45*time.Second, cfg.DraftTimeout)
	assert.True(t, cfg.WhatsappEnabled)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 0.5, cfg.RateLimitPerSecond)
	assert.Equal(t, 3, cfg.RateLimitBurst)
}

func TestLoadAppConfig_BadTimezone(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")

	_, err := LoadAppConfig()

	assert.Error(t, err)
}
