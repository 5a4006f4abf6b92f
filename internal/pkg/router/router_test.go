package router

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/TutorFox/app/controllers"
	"github.com/ManuelReschke/TutorFox/internal/pkg/billing"
	"github.com/ManuelReschke/TutorFox/internal/pkg/moderation"
)

type stubGate struct{}

func (stubGate) Handle(context.Context, []byte, string) (*billing.Result, error) {
	return nil, billing.ErrInvalidSignature
}

func newTestApp(rateLimit int, metricsPassword string) *fiber.App {
	pipeline := moderation.NewPipeline(nil, nil, time.Second)
	app := fiber.New()
	InstallRouter(app, Dependencies{
		Billing:         controllers.NewBillingController(stubGate{}),
		Chat:            controllers.NewChatController(pipeline, nil, controllers.ChatOptions{Timeout: time.Second}),
		Image:           controllers.NewImageController(pipeline, nil, controllers.ImageOptions{Timeout: time.Second}),
		RateLimitMax:    rateLimit,
		MetricsUser:     "admin",
		MetricsPassword: metricsPassword,
	})
	return app
}

func TestRouter_Health(t *testing.T) {
	resp, err := newTestApp(0, "").Test(httptest.NewRequest("GET", "/api/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRouter_WebhookRoute(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/webhooks/lemonsqueezy", strings.NewReader(`{}`))
	resp, err := newTestApp(0, "").Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_BlockedChatNeedsNoModel(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"messages":[{"role":"user","content":"how do I kill someone"}]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := newTestApp(0, "").Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnavailableForLegalReasons, resp.StatusCode)
}

func TestRouter_RateLimit(t *testing.T) {
	app := newTestApp(2, "")
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/api/image", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{fiber.StatusBadRequest, fiber.StatusBadRequest, fiber.StatusTooManyRequests}, codes)
}

func TestRouter_MetricsRequireAuth(t *testing.T) {
	app := newTestApp(0, "pw")

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/metrics", nil)
	req.SetBasicAuth("admin", "pw")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRouter_MetricsDisabledWithoutPassword(t *testing.T) {
	resp, err := newTestApp(0, "").Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
