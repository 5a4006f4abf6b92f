package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/TutorFox/app/controllers"
)

type WebhookRouter struct {
	billing *controllers.BillingController
}

func (h WebhookRouter) InstallRouter(app *fiber.App) {
	app.Post("/api/webhooks/lemonsqueezy", h.billing.HandleLemonSqueezyWebhook)
}

func NewWebhookRouter(billing *controllers.BillingController) *WebhookRouter {
	return &WebhookRouter{billing: billing}
}
