package editorial

import (
	"log/slog"

	"github.com/contre95/monkeypress/src/features/web"
	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the editorial feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the editorial feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetDangling lists the links left dangling by deletes.
func (h *Handler) GetDangling(c *fiber.Ctx) error {
	slog.Debug("GetDangling handler called")
	items, err := h.service.Dangling(c.Context())
	if err != nil {
		return web.Error(c, err)
	}
	if web.WantsHTML(c) {
		return c.Render("admin/dangling", fiber.Map{
			"Items": items,
		})
	}
	return c.JSON(fiber.Map{"dangling": items})
}
