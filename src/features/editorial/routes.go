package editorial

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the editorial feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	admin := app.Group("/admin")
	admin.Get("/dangling", handler.GetDangling)
}
