package catalog

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the catalog feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	admin := app.Group("/admin")
	admin.Get("/albums/:id/tracks", handler.ListTracks)
	admin.Post("/albums/:id/tracks", handler.AddTrack)
	admin.Put("/albums/:id/tracks/order", handler.ReorderTracks)
	admin.Delete("/albums/:id/tracks/:itemID", handler.RemoveTrack)
	admin.Get("/tours/:id/dates", handler.ListDates)
	admin.Post("/tours/:id/dates", handler.AddDate)
	admin.Put("/tours/:id/dates/order", handler.ReorderDates)
	admin.Delete("/tours/:id/dates/:itemID", handler.RemoveDate)
}
