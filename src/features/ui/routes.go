package ui

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the admin dashboard routes.
func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/admin", handler.RenderAdmin)

	ui := app.Group("/ui")
	for _, section := range Sections {
		ui.Get("/"+section.Name, handler.RenderSection(section))
	}
}
