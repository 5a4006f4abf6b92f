package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/TutorFox/internal/pkg/llm"
	"github.com/ManuelReschke/TutorFox/internal/pkg/moderation"
)

// Moderator decides whether user text may reach a model.
type Moderator interface {
	Moderate(ctx context.Context, text string) moderation.Verdict
}

// ChatCompleter forwards a completion to the language model.
type ChatCompleter interface {
	ChatCompletion(ctx context.Context, in llm.ChatRequest) (*llm.Reply, error)
}

type ChatOptions struct {
	Model       string
	VisionModel string
	MaxTokens   int
	Timeout     time.Duration
}

type ChatController struct {
	moderator Moderator
	llm       ChatCompleter
	opts      ChatOptions
}

func NewChatController(moderator Moderator, completer ChatCompleter, opts ChatOptions) *ChatController {
	return &ChatController{moderator: moderator, llm: completer, opts: opts}
}

type chatRequest struct {
	Messages []moderation.Message `json:"messages" validate:"required,min=1,max=100,dive"`
}

func (cc *ChatController) HandleChat(c *fiber.Ctx) error {
	return cc.handle(c, cc.opts.Model)
}

func (cc *ChatController) HandleVision(c *fiber.Ctx) error {
	return cc.handle(c, cc.opts.VisionModel)
}

func (cc *ChatController) handle(c *fiber.Ctx, model string) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request")
	}
	if err := validate.Struct(req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request")
	}
	// Only the last user turn is moderated, so nothing may follow it.
	if req.Messages[len(req.Messages)-1].Role != moderation.RoleUser {
		return errorJSON(c, fiber.StatusBadRequest, "last_message_not_user")
	}

	ctx, cancel := requestContext(c, cc.opts.Timeout)
	defer cancel()

	if verdict := cc.moderator.Moderate(ctx, moderation.LastUserText(req.Messages)); verdict.Blocked {
		return respondBlocked(c)
	}

	reply, err := cc.llm.ChatCompletion(ctx, llm.ChatRequest{
		Model:     model,
		Messages:  req.Messages,
		MaxTokens: cc.opts.MaxTokens,
	})
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			fiberlog.Error("chat request failed: LLM credential missing")
			return errorJSON(c, fiber.StatusInternalServerError, "llm_not_configured")
		}
		fiberlog.Errorf("chat request failed: %v", err)
		return errorJSON(c, fiber.StatusBadGateway, "llm_unavailable")
	}

	contentType := reply.ContentType
	if contentType == "" {
		contentType = fiber.MIMEApplicationJSON
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Status(reply.StatusCode).Send(reply.Body)
}

// respondBlocked answers with the canned message instead of a model reply.
// 451 lets the browser tell a filtered message apart from a server error.
func respondBlocked(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnavailableForLegalReasons).JSON(fiber.Map{
		"blocked":  true,
		"response": moderation.CannedResponse,
	})
}
