package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ManuelReschke/TutorFox/internal/pkg/billing"
	"github.com/ManuelReschke/TutorFox/internal/pkg/credentials"
	"github.com/ManuelReschke/TutorFox/internal/pkg/env"
	"github.com/ManuelReschke/TutorFox/internal/pkg/llm"
	"github.com/ManuelReschke/TutorFox/internal/pkg/moderation"
	"github.com/ManuelReschke/TutorFox/internal/pkg/upstream"
)

const (
	defaultLLMModel      = "openai/gpt-4o-mini"
	defaultImageModelURL = "https://api-inference.huggingface.co/models/stabilityai/stable-diffusion-xl-base-1.0"
)

// Config is the explicit runtime configuration handed to services at
// startup. Bearer credentials are already normalized; empty means absent.
type Config struct {
	AppHost         string        `validate:"required"`
	AppPort         string        `validate:"required,numeric"`
	RequestTimeout  time.Duration `validate:"gt=0"`
	UpstreamTimeout time.Duration `validate:"gt=0"`

	// WebhookSecret may be empty; the gate then rejects every delivery.
	WebhookSecret   string
	PremiumDuration time.Duration `validate:"gt=0"`

	ModerationAPIKey     string
	ModerationURL        string        `validate:"required,url"`
	ModerationTimeout    time.Duration `validate:"gt=0"`
	ModerationCacheTTL   time.Duration `validate:"gte=0"`
	ModerationStrict     bool
	ModerationExtraTerms []string

	LLMAPIKey      string
	LLMBaseURL     string `validate:"required,url"`
	LLMModel       string `validate:"required"`
	LLMVisionModel string `validate:"required"`
	LLMMaxTokens   int    `validate:"gte=0"`

	ImageAPIKey      string
	ImageModelURL    string        `validate:"required,url"`
	ImageMaxAttempts int           `validate:"min=1,max=10"`
	ImageDefaultWait time.Duration `validate:"gt=0"`
	ImageMaxWait     time.Duration `validate:"gtefield=ImageDefaultWait"`

	RateLimitMax int `validate:"gte=0"`

	MetricsUser     string
	MetricsPassword string
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	llmModel := env.GetEnv("LLM_MODEL", defaultLLMModel)

	cfg := &Config{
		AppHost:         env.GetEnv("APP_HOST", "localhost"),
		AppPort:         env.GetEnv("APP_PORT", "4000"),
		RequestTimeout:  env.GetDuration("REQUEST_TIMEOUT", 90*time.Second),
		UpstreamTimeout: env.GetDuration("UPSTREAM_TIMEOUT", 60*time.Second),

		WebhookSecret:   strings.TrimSpace(env.GetEnv("LEMONSQUEEZY_WEBHOOK_SECRET", "")),
		PremiumDuration: env.GetDuration("PREMIUM_DURATION", billing.DefaultPremiumDuration),

		ModerationAPIKey:     secret("MODERATION_API_KEY"),
		ModerationURL:        env.GetEnv("MODERATION_URL", moderation.DefaultClassifierURL),
		ModerationTimeout:    env.GetDuration("MODERATION_TIMEOUT", moderation.DefaultClassifierTimeout),
		ModerationCacheTTL:   env.GetDuration("MODERATION_CACHE_TTL", 10*time.Minute),
		ModerationStrict:     env.GetBool("MODERATION_STRICT", false),
		ModerationExtraTerms: moderation.ParseTerms(env.GetEnv("MODERATION_EXTRA_TERMS", "")),

		LLMAPIKey:      secret("LLM_API_KEY"),
		LLMBaseURL:     env.GetEnv("LLM_BASE_URL", llm.DefaultBaseURL),
		LLMModel:       llmModel,
		LLMVisionModel: env.GetEnv("LLM_VISION_MODEL", llmModel),
		LLMMaxTokens:   env.GetInt("LLM_MAX_TOKENS", 800),

		ImageAPIKey:      secret("IMAGE_API_KEY"),
		ImageModelURL:    env.GetEnv("IMAGE_MODEL_URL", defaultImageModelURL),
		ImageMaxAttempts: env.GetInt("IMAGE_MAX_ATTEMPTS", upstream.DefaultMaxAttempts),
		ImageDefaultWait: env.GetDuration("IMAGE_DEFAULT_WAIT", upstream.DefaultWait),
		ImageMaxWait:     env.GetDuration("IMAGE_MAX_WAIT", upstream.DefaultMaxWait),

		RateLimitMax: env.GetInt("RATE_LIMIT_MAX", 30),

		MetricsUser:     env.GetEnv("METRICS_USER", "admin"),
		MetricsPassword: env.GetEnv("METRICS_PASSWORD", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	v := validator.New()
	return v.Struct(c)
}

// Blocklist compiles the keyword layer for this configuration.
func (c *Config) Blocklist() *moderation.Blocklist {
	groups := [][]string{moderation.DefaultTerms}
	if c.ModerationStrict {
		groups = append(groups, moderation.LifestyleTerms)
	}
	groups = append(groups, c.ModerationExtraTerms)
	return moderation.NewBlocklist(groups...)
}

func (c *Config) UpstreamConfig() upstream.Config {
	return upstream.Config{
		MaxAttempts:    c.ImageMaxAttempts,
		DefaultWait:    c.ImageDefaultWait,
		MaxWait:        c.ImageMaxWait,
		AttemptTimeout: c.UpstreamTimeout,
	}
}

func (c *Config) GateConfig() billing.GateConfig {
	return billing.GateConfig{
		Secret:          c.WebhookSecret,
		PremiumDuration: c.PremiumDuration,
	}
}

func secret(key string) string {
	v, _ := credentials.Normalize(env.GetEnv(key, ""))
	return v
}
