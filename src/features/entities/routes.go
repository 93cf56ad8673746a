package entities

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the entities feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	admin := app.Group("/admin")
	admin.Get("/entities", handler.ListEntities)
	admin.Post("/entities", handler.CreateEntity)
	admin.Get("/entities/:id", handler.GetEntity)
	admin.Put("/entities/:id", handler.UpdateEntity)
	admin.Delete("/entities/:id", handler.DeleteEntity)
}
