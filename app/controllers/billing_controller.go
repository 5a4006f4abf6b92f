package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/TutorFox/internal/pkg/billing"
)

const webhookTimeout = 15 * time.Second

// WebhookGate verifies and applies a payment webhook.
type WebhookGate interface {
	Handle(ctx context.Context, raw []byte, signature string) (*billing.Result, error)
}

type BillingController struct {
	gate WebhookGate
}

func NewBillingController(gate WebhookGate) *BillingController {
	return &BillingController{gate: gate}
}

// HandleLemonSqueezyWebhook is the server-to-server endpoint for payment
// notifications. Any non-2xx makes the sender redeliver later.
func (bc *BillingController) HandleLemonSqueezyWebhook(c *fiber.Ctx) error {
	// Copy before anything can touch the request buffer; the signature covers
	// these exact bytes.
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := firstHeaderValue(c, "X-Signature", "Signature")

	ctx, cancel := requestContext(c, webhookTimeout)
	defer cancel()

	res, err := bc.gate.Handle(ctx, rawBody, signature)
	switch {
	case errors.Is(err, billing.ErrWebhookNotConfigured):
		return errorJSON(c, fiber.StatusInternalServerError, "webhook_not_configured")
	case errors.Is(err, billing.ErrEmptyPayload):
		return errorJSON(c, fiber.StatusBadRequest, "missing_payload")
	case errors.Is(err, billing.ErrInvalidSignature):
		return errorJSON(c, fiber.StatusUnauthorized, "invalid_signature")
	case errors.Is(err, billing.ErrInvalidPayload):
		return errorJSON(c, fiber.StatusBadRequest, "invalid_payload")
	case errors.Is(err, billing.ErrEntitlementStore):
		return errorJSON(c, fiber.StatusInternalServerError, "entitlement_update_failed")
	case err != nil:
		return errorJSON(c, fiber.StatusInternalServerError, "webhook_failed")
	}

	if res.Ignored {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}
