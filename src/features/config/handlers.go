package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the config feature.
type Handler struct {
	configManager *Manager
	path          string
}

// NewHandler creates a new handler for the config feature.
func NewHandler(configManager *Manager, path string) *Handler {
	return &Handler{
		configManager: configManager,
		path:          path,
	}
}

// UpdateSettings handles the form submission to update configuration.
// Server, database and metrics settings are not changed at runtime.
func (h *Handler) UpdateSettings(c *fiber.Ctx) error {
	slog.Info("Configuration update requested")

	// Get current config to preserve server settings
	currentConfig := h.configManager.Get()
	newConfig := *currentConfig
	newConfig.Site = Site{
		Name:    c.FormValue("site.name", currentConfig.Site.Name),
		BaseURL: c.FormValue("site.base_url", currentConfig.Site.BaseURL),
	}
	newConfig.Listing = Listing{
		Reviews:  parseInt(c.FormValue("listing.reviews"), currentConfig.Listing.Reviews),
		News:     parseInt(c.FormValue("listing.news"), currentConfig.Listing.News),
		Features: parseInt(c.FormValue("listing.features"), currentConfig.Listing.Features),
		Tours:    parseInt(c.FormValue("listing.tours"), currentConfig.Listing.Tours),
		Artists:  parseInt(c.FormValue("listing.artists"), currentConfig.Listing.Artists),
		Authors:  parseInt(c.FormValue("listing.authors"), currentConfig.Listing.Authors),
	}
	newConfig.Telegram = Telegram{
		Enabled:       c.FormValue("telegram.enabled") == "true",
		Token:         currentConfig.Telegram.Token,
		AllowedUsers:  parseStringSlice(c.FormValue("telegram.allowedUsers")),
		BotHandle:     c.FormValue("telegram.bot_handle", currentConfig.Telegram.BotHandle),
		NotifyChatIDs: currentConfig.Telegram.NotifyChatIDs,
	}
	newConfig.Logger = Logger{
		Enabled:   c.FormValue("logger.enabled") == "true",
		Level:     c.FormValue("logger.level", currentConfig.Logger.Level),
		Format:    c.FormValue("logger.format", currentConfig.Logger.Format),
		HTMXDebug: c.FormValue("logger.htmx_debug") == "true",
	}

	if err := validator.New().Struct(newConfig); err != nil {
		slog.Warn("Rejected configuration update", "error", err)
		return c.Status(fiber.StatusUnprocessableEntity).Render("toast/toastErr", fiber.Map{
			"Msg": fmt.Sprintf("Invalid configuration: %s", err),
		})
	}

	// Update the configuration
	h.configManager.Update(&newConfig)
	slog.Info("Configuration updated in memory")

	// Try to save to file (optional - may fail in containerized environments)
	if err := h.configManager.Save(h.path); err != nil {
		slog.Warn("failed to save config to file (this is normal in containerized environments)", "error", err)
	} else {
		slog.Info("Configuration saved to file successfully")
	}

	return c.Render("toast/toastOk", fiber.Map{
		"Msg": "Configuration updated successfully!",
	})
}

// Helper functions for parsing form values
func parseInt(s string, fallback int) int {
	var result int
	if s == "" {
		return fallback
	}
	if _, err := fmt.Sscanf(s, "%d", &result); err != nil {
		return fallback
	}
	return result
}

func parseStringSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	// Split by comma and trim spaces
	var result []string
	for part := range strings.SplitSeq(s, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (h *Handler) GetConfigForm(c *fiber.Ctx) error {
	slog.Debug("GetConfigForm handler called")
	config := h.configManager.Get()

	return c.Render("config/config_form", fiber.Map{
		"Config": config,
	})
}

// GetConfig returns the current configuration in the requested format.
func (h *Handler) GetConfig(c *fiber.Ctx) error {
	format := c.Query("fmt", "yaml")
	slog.Debug("GetConfig handler called", "format", format)

	switch format {
	case "yaml":
		c.Set("Content-Type", "text/yaml")
		return c.SendString(h.configManager.GetYAML())
	case "json":
		c.Set("Content-Type", "application/json")
		return c.SendString(h.configManager.GetJSON())
	default:
		return c.Status(fiber.StatusBadRequest).SendString("Invalid format. Use 'json' or 'yaml'")
	}
}

// DownloadDatabase serves the database file for download.
func (h *Handler) DownloadDatabase(c *fiber.Ctx) error {
	slog.Debug("DownloadDatabase handler called")

	config := h.configManager.Get()
	dbPath := config.Database.Path

	if dbPath == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Database path not configured")
	}

	// Extract filename from path for download
	filename := filepath.Base(dbPath)

	// Set headers for file download
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Set("Content-Type", "application/octet-stream")

	// Send the file
	return c.SendFile(dbPath)
}
