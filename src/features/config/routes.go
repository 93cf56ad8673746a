package config

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the config feature. path is the
// file updates are saved to.
func RegisterRoutes(app *fiber.App, configManager *Manager, path string) {
	// Create a new handler for the config feature.
	handler := NewHandler(configManager, path)

	admin := app.Group("/admin")
	admin.Get("/config/form", handler.GetConfigForm)
	admin.Post("/config", handler.UpdateSettings)
	admin.Get("/config", handler.GetConfig)
	admin.Get("/config/database/download", handler.DownloadDatabase)
}
