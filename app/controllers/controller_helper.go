package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// validate is safe for concurrent use and caches struct metadata.
var validate = validator.New()

// requestContext bounds all outbound work done for one inbound request.
func requestContext(c *fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), timeout)
}

func firstHeaderValue(c *fiber.Ctx, keys ...string) string {
	for _, k := range keys {
		v := strings.TrimSpace(c.Get(k))
		if v != "" {
			return v
		}
	}
	return ""
}

func errorJSON(c *fiber.Ctx, status int, code string) error {
	return c.Status(status).JSON(fiber.Map{"error": code})
}
