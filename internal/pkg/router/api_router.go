package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ManuelReschke/TutorFox/app/controllers"
)

type ApiRouter struct {
	chat     *controllers.ChatController
	image    *controllers.ImageController
	limitMax int
	storage  fiber.Storage
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api")
	api.Get("/health", controllers.HandleHealth)

	if h.limitMax > 0 {
		api.Use(limiter.New(limiter.Config{
			Max:        h.limitMax,
			Expiration: time.Minute,
			Storage:    h.storage,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate_limited"})
			},
		}))
	}

	api.Post("/chat", h.chat.HandleChat)
	api.Post("/vision", h.chat.HandleVision)
	api.Post("/image", h.image.HandleGenerate)
}

// NewApiRouter wires the browser-facing routes. A nil storage keeps limiter
// counters in process memory.
func NewApiRouter(chat *controllers.ChatController, image *controllers.ImageController, limitMax int, storage fiber.Storage) *ApiRouter {
	return &ApiRouter{chat: chat, image: image, limitMax: limitMax, storage: storage}
}
