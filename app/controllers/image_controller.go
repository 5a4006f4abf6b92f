package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/TutorFox/internal/pkg/upstream"
)

// Generator performs a retried call to the image model.
type Generator interface {
	CallWithRetry(ctx context.Context, req upstream.Request) (*upstream.Response, error)
}

type ImageOptions struct {
	ModelURL string
	APIKey   string
	Timeout  time.Duration
}

type ImageController struct {
	moderator Moderator
	generator Generator
	opts      ImageOptions
}

func NewImageController(moderator Moderator, generator Generator, opts ImageOptions) *ImageController {
	return &ImageController{moderator: moderator, generator: generator, opts: opts}
}

type imageRequest struct {
	Prompt string `json:"prompt" validate:"required,max=2000"`
}

// HandleGenerate turns a prompt into image bytes. Prompts go through the same
// moderation as chat messages.
func (ic *ImageController) HandleGenerate(c *fiber.Ctx) error {
	var req imageRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request")
	}
	if err := validate.Struct(req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request")
	}
	if ic.opts.APIKey == "" {
		fiberlog.Error("image request failed: IMAGE_API_KEY missing")
		return errorJSON(c, fiber.StatusInternalServerError, "image_not_configured")
	}

	ctx, cancel := requestContext(c, ic.opts.Timeout)
	defer cancel()

	if verdict := ic.moderator.Moderate(ctx, req.Prompt); verdict.Blocked {
		return respondBlocked(c)
	}

	body, err := json.Marshal(map[string]string{"inputs": req.Prompt})
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "image_failed")
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+ic.opts.APIKey)
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "image/png")

	resp, err := ic.generator.CallWithRetry(ctx, upstream.Request{
		Method: http.MethodPost,
		URL:    ic.opts.ModelURL,
		Header: header,
		Body:   body,
	})
	if err != nil {
		return ic.mapError(c, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set("X-Upstream-Attempts", strconv.Itoa(resp.Attempts))
	return c.Status(fiber.StatusOK).Send(resp.Body)
}

func (ic *ImageController) mapError(c *fiber.Ctx, err error) error {
	var statusErr *upstream.StatusError
	switch {
	case errors.Is(err, upstream.ErrRetryExhausted):
		fiberlog.Warnf("image generation gave up: %v", err)
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(upstream.DefaultWait/time.Second)))
		return errorJSON(c, fiber.StatusServiceUnavailable, "model_loading")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		fiberlog.Warnf("image generation timed out: %v", err)
		return errorJSON(c, fiber.StatusGatewayTimeout, "image_timeout")
	case errors.As(err, &statusErr):
		fiberlog.Errorf("image generation failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "image_failed", "upstream_status": statusErr.StatusCode})
	default:
		fiberlog.Errorf("image generation failed: %v", err)
		return errorJSON(c, fiber.StatusBadGateway, "image_failed")
	}
}
