package ui

import (
	"log/slog"

	"github.com/contre95/monkeypress/src/features/config"
	"github.com/gofiber/fiber/v2"
)

// Section is one tab of the admin dashboard. Source is the endpoint the
// section loads its content from.
type Section struct {
	Name   string
	Title  string
	Source string
}

// Sections lists the admin tabs in display order.
var Sections = []Section{
	{Name: "entities", Title: "Content", Source: "/admin/entities?kind=review"},
	{Name: "dangling", Title: "Dangling links", Source: "/admin/dangling"},
	{Name: "settings", Title: "Settings", Source: "/admin/config/form"},
}

// Handler is the handler for the UI feature.
type Handler struct {
	configManager *config.Manager
}

// NewHandler creates a new handler for the UI feature.
func NewHandler(configManager *config.Manager) *Handler {
	return &Handler{
		configManager: configManager,
	}
}

// RenderAdmin renders the admin page.
func (h *Handler) RenderAdmin(c *fiber.Ctx) error {
	slog.Debug("RenderAdmin handler called")
	return h.render(c, Section{Name: "dashboard", Title: "Dashboard"})
}

// RenderSection renders one admin tab, as a full page unless the request
// comes from htmx.
func (h *Handler) RenderSection(section Section) fiber.Handler {
	return func(c *fiber.Ctx) error {
		slog.Debug("RenderSection handler called", "section", section.Name)
		return h.render(c, section)
	}
}

func (h *Handler) render(c *fiber.Ctx, section Section) error {
	data := fiber.Map{
		"Title":          section.Title,
		"Section":        section,
		"Sections":       Sections,
		"MetricsEnabled": h.configManager.Get().Metrics.Enabled,
	}
	if c.Get("HX-Request") != "true" {
		return c.Render("admin/main", data)
	}
	return c.Render("admin/section", data)
}
