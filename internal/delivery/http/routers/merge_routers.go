package routers

import (
	"video-merger/internal/delivery/http/handlers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupMergeRoutes(app *fiber.App, mergeHandler *handlers.MergeHandler) {
	api := app.Group("/api")
	api.Post("/merge-videos", mergeHandler.MergeVideos)
	api.Get("/health", handlers.Health)
}

// SetupOpsRoutes mounts metrics and the swagger UI.
func SetupOpsRoutes(app *fiber.App) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/swagger/*", swagger.HandlerDefault)
}
