package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

var startedAt = time.Now()

func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"uptime":  int64(time.Since(startedAt).Seconds()),
		"service": "tutorfox",
	})
}
