package router

import (
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsRouter struct {
	user     string
	password string
}

func (h MetricsRouter) InstallRouter(app *fiber.App) {
	if h.password == "" {
		fiberlog.Warn("METRICS_PASSWORD not set, /metrics is disabled")
		return
	}

	auth := basicauth.New(basicauth.Config{
		Users: map[string]string{h.user: h.password},
	})
	app.Get("/metrics", auth, adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/metrics/monitor", auth, monitor.New())
}

func NewMetricsRouter(user, password string) *MetricsRouter {
	return &MetricsRouter{user: user, password: password}
}
