package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/ManuelReschke/TutorFox/app/controllers"
	"github.com/ManuelReschke/TutorFox/internal/pkg/billing"
	"github.com/ManuelReschke/TutorFox/internal/pkg/cache"
	"github.com/ManuelReschke/TutorFox/internal/pkg/config"
	"github.com/ManuelReschke/TutorFox/internal/pkg/database"
	"github.com/ManuelReschke/TutorFox/internal/pkg/env"
	"github.com/ManuelReschke/TutorFox/internal/pkg/llm"
	"github.com/ManuelReschke/TutorFox/internal/pkg/moderation"
	"github.com/ManuelReschke/TutorFox/internal/pkg/router"
	"github.com/ManuelReschke/TutorFox/internal/pkg/upstream"
)

func main() {
	app, cfg := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort))
	log.Fatal(err)
}

func NewApplication() (*fiber.App, *config.Config) {
	env.SetupEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	warnMissingCredentials(cfg)

	database.SetupDatabase()
	cache.SetupCache()

	// init fiber app
	app := fiber.New(fiber.Config{
		// vision requests carry base64 images
		BodyLimit: 12 * 1024 * 1024,
	})

	// recovery, request ids and logging
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	moderator := newModerator(cfg)

	// ROUTER
	router.InstallRouter(app, router.Dependencies{
		Billing:         controllers.NewBillingController(billing.NewGate(cfg.GateConfig(), billing.NewRepository(database.GetDB()))),
		Chat:            controllers.NewChatController(moderator, llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.UpstreamTimeout), chatOptions(cfg)),
		Image:           controllers.NewImageController(moderator, upstream.NewClient(cfg.UpstreamConfig(), nil), imageOptions(cfg)),
		RateLimitMax:    cfg.RateLimitMax,
		LimiterStorage:  cache.NewLimiterStorage(),
		MetricsUser:     cfg.MetricsUser,
		MetricsPassword: cfg.MetricsPassword,
	})

	return app, cfg
}

// newModerator builds the two layer pipeline. Without a moderation key only
// the keyword layer runs.
func newModerator(cfg *config.Config) *moderation.Pipeline {
	var classifier moderation.Classifier
	if cfg.ModerationAPIKey != "" {
		classifier = moderation.NewOpenAIClassifier(cfg.ModerationAPIKey, cfg.ModerationURL, cfg.ModerationTimeout)
		if cfg.ModerationCacheTTL > 0 {
			classifier = moderation.NewCachedClassifier(classifier, cache.NewResultStore(cache.GetClient()), cfg.ModerationCacheTTL)
		}
	}
	return moderation.NewPipeline(classifier, cfg.Blocklist(), cfg.ModerationTimeout)
}

func chatOptions(cfg *config.Config) controllers.ChatOptions {
	return controllers.ChatOptions{
		Model:       cfg.LLMModel,
		VisionModel: cfg.LLMVisionModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Timeout:     cfg.RequestTimeout,
	}
}

func imageOptions(cfg *config.Config) controllers.ImageOptions {
	return controllers.ImageOptions{
		ModelURL: cfg.ImageModelURL,
		APIKey:   cfg.ImageAPIKey,
		Timeout:  cfg.RequestTimeout,
	}
}

func warnMissingCredentials(cfg *config.Config) {
	if cfg.WebhookSecret == "" {
		fiberlog.Warn("LEMONSQUEEZY_WEBHOOK_SECRET not set, all payment webhooks will be rejected")
	}
	if cfg.ModerationAPIKey == "" {
		fiberlog.Warn("MODERATION_API_KEY not set, only keyword moderation is active")
	}
	if cfg.LLMAPIKey == "" {
		fiberlog.Warn("LLM_API_KEY not set, chat requests will fail")
	}
	if cfg.ImageAPIKey == "" {
		fiberlog.Warn("IMAGE_API_KEY not set, image requests will fail")
	}
}
