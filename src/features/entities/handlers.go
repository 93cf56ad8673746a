package entities

import (
	"log/slog"

	"github.com/contre95/monkeypress/src/content"
	"github.com/contre95/monkeypress/src/features/web"
	"github.com/gofiber/fiber/v2"
)

// Handler is the admin HTTP handler for entities.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the entities feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// createRequest is an entity form together with its initial links.
type createRequest struct {
	content.Entity
	Links []content.LinkDraft `json:"links"`
}

// CreateEntity creates an entity and its initial links atomically.
func (h *Handler) CreateEntity(c *fiber.Ctx) error {
	slog.Debug("CreateEntity handler called")
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return web.BadRequest(c, "invalid request body")
	}
	e := req.Entity
	e.ID = ""
	if err := h.service.Create(c.Context(), &e, req.Links); err != nil {
		return web.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(e)
}

// ListEntities lists the entities of the kind query parameter.
func (h *Handler) ListEntities(c *fiber.Ctx) error {
	kind := content.Kind(c.Query("kind"))
	slog.Debug("ListEntities handler called", "kind", kind)
	list, err := h.service.List(c.Context(), kind)
	if err != nil {
		return web.Error(c, err)
	}
	if list == nil {
		list = []*content.Entity{}
	}
	if web.WantsHTML(c) {
		return c.Render("admin/entities", fiber.Map{
			"Kind":     kind,
			"Kinds":    content.Kinds,
			"Entities": list,
		})
	}
	return c.JSON(fiber.Map{"entities": list})
}

// GetEntity returns one entity.
func (h *Handler) GetEntity(c *fiber.Ctx) error {
	e, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return web.Error(c, err)
	}
	return c.JSON(e)
}

// UpdateEntity replaces the fields of an entity. Its kind cannot change.
func (h *Handler) UpdateEntity(c *fiber.Ctx) error {
	var e content.Entity
	if err := c.BodyParser(&e); err != nil {
		return web.BadRequest(c, "invalid request body")
	}
	e.ID = c.Params("id")
	if err := h.service.Update(c.Context(), &e); err != nil {
		return web.Error(c, err)
	}
	return c.JSON(e)
}

// DeleteEntity deletes an entity and lists the links it left dangling.
func (h *Handler) DeleteEntity(c *fiber.Ctx) error {
	refs, err := h.service.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return web.Error(c, err)
	}
	if refs == nil {
		refs = []content.DanglingReference{}
	}
	return c.JSON(fiber.Map{"dangling": refs})
}
