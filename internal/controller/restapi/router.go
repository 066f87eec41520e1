package restapi

import (
	"net/http"

	"github.com/andreyxaxa/File-Moderator/config"
	v1 "github.com/andreyxaxa/File-Moderator/internal/controller/restapi/v1"
	"github.com/andreyxaxa/File-Moderator/internal/usecase"
	"github.com/andreyxaxa/File-Moderator/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @title File moderator
// @version 1.0.0
// @host localhost:8080
// @BasePath /v1
func NewRouter(
	app *fiber.App,
	cfg *config.Config,
	mod usecase.ModerationUseCase,
	jrn usecase.JournalUseCase,
	l logger.Interface,
) {
	// Probes
	app.Get("/healthz", func(ctx *fiber.Ctx) error { return ctx.SendStatus(http.StatusOK) })

	// Prometheus metrics
	if cfg.Metrics.Enabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	// Routers
	apiV1Group := app.Group("/v1")
	{
		v1.NewModerationRoutes(apiV1Group, mod, jrn, l)
	}
}
