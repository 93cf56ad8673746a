package relations

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the relations feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	admin := app.Group("/admin")
	admin.Get("/entities/:id/links/:kind", handler.ListLinks)
	admin.Post("/entities/:id/links/:kind", handler.AddLink)
	admin.Put("/entities/:id/links/:kind/order", handler.ReorderLinks)
	admin.Patch("/entities/:id/links/:kind/:linkID", handler.RetargetLink)
	admin.Delete("/entities/:id/links/:kind/:linkID", handler.RemoveLink)
	admin.Get("/targets/:id/owners/:kind", handler.OwnersOf)
}
