package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/TutorFox/internal/pkg/env"
)

func withEnv(t *testing.T, values map[string]string) {
	t.Helper()
	env.Env = values
	t.Cleanup(func() { env.Env = nil })
}

func TestLoad_Defaults(t *testing.T) {
	withEnv(t, map[string]string{})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "4000", cfg.AppPort)
	assert.Equal(t, 3, cfg.ImageMaxAttempts)
	assert.Equal(t, 30*24*time.Hour, cfg.PremiumDuration)
	assert.Equal(t, cfg.LLMModel, cfg.LLMVisionModel)
	assert.Empty(t, cfg.WebhookSecret)
	assert.Empty(t, cfg.ModerationAPIKey)
	assert.False(t, cfg.ModerationStrict)
	assert.Equal(t, 30, cfg.RateLimitMax)
}

func TestLoad_NormalizesBearerCredentials(t *testing.T) {
	withEnv(t, map[string]string{
		"LLM_API_KEY":                 " 'sk-or-v1-abc' ",
		"MODERATION_API_KEY":          `"sk1234"`,
		"IMAGE_API_KEY":               "hf_ab cd",
		"LEMONSQUEEZY_WEBHOOK_SECRET": "  whsec value  ",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-or-v1-abc", cfg.LLMAPIKey)
	assert.Equal(t, "sk_1234", cfg.ModerationAPIKey)
	assert.Equal(t, "hf_abcd", cfg.ImageAPIKey)
	// The HMAC secret is only trimmed; inner bytes are part of the key.
	assert.Equal(t, "whsec value", cfg.WebhookSecret)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	for name, values := range map[string]map[string]string{
		"port":          {"APP_PORT": "http"},
		"attempts":      {"IMAGE_MAX_ATTEMPTS": "0"},
		"llm url":       {"LLM_BASE_URL": "not a url"},
		"wait ordering": {"IMAGE_DEFAULT_WAIT": "20s", "IMAGE_MAX_WAIT": "5s"},
	} {
		t.Run(name, func(t *testing.T) {
			withEnv(t, values)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestBlocklist(t *testing.T) {
	withEnv(t, map[string]string{"MODERATION_EXTRA_TERMS": "Homework Answers, cheat"})
	cfg, err := Load()
	require.NoError(t, err)

	_, ok := cfg.Blocklist().Match("give me the homework answers now")
	assert.True(t, ok)
	_, ok = cfg.Blocklist().Match("a glass of wine")
	assert.False(t, ok)

	cfg.ModerationStrict = true
	term, ok := cfg.Blocklist().Match("a glass of wine")
	assert.True(t, ok)
	assert.Equal(t, "wine", term)
}

func TestUpstreamConfig(t *testing.T) {
	withEnv(t, map[string]string{"IMAGE_MAX_ATTEMPTS": "5", "IMAGE_DEFAULT_WAIT": "2", "UPSTREAM_TIMEOUT": "45s"})
	cfg, err := Load()
	require.NoError(t, err)

	uc := cfg.UpstreamConfig()
	assert.Equal(t, 5, uc.MaxAttempts)
	assert.Equal(t, 2*time.Second, uc.DefaultWait)
	assert.Equal(t, 45*time.Second, uc.AttemptTimeout)
}
