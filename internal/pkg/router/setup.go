package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/TutorFox/app/controllers"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies are the constructed controllers and router settings.
type Dependencies struct {
	Billing *controllers.BillingController
	Chat    *controllers.ChatController
	Image   *controllers.ImageController

	// RateLimitMax is the per-IP request budget per minute on /api. Zero
	// disables the limiter.
	RateLimitMax   int
	LimiterStorage fiber.Storage

	MetricsUser     string
	MetricsPassword string
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	// Webhooks are registered before the limited /api group so that payment
	// redeliveries never trip the per-IP limiter.
	setup(app,
		NewWebhookRouter(deps.Billing),
		NewMetricsRouter(deps.MetricsUser, deps.MetricsPassword),
		NewApiRouter(deps.Chat, deps.Image, deps.RateLimitMax, deps.LimiterStorage),
	)
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
