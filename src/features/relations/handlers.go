package relations

import (
	"log/slog"
	"strconv"

	"github.com/contre95/monkeypress/src/content"
	"github.com/contre95/monkeypress/src/features/web"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// Handler is the admin HTTP handler for relationship collections.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the relations feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type addRequest struct {
	TargetID string `json:"target_id"`
	Position *int   `json:"position"`
}

type reorderRequest struct {
	Order []int64 `json:"order"`
}

type retargetRequest struct {
	TargetID string `json:"target_id"`
}

// linkKind copies the kind out of the request buffer, which fiber reuses
// once the handler returns.
func linkKind(c *fiber.Ctx) content.LinkKind {
	return content.LinkKind(utils.CopyString(c.Params("kind")))
}

func linkID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("linkID"), 10, 64)
}

// ListLinks returns the ordered links of an owner, dangling ones included.
func (h *Handler) ListLinks(c *fiber.Ctx) error {
	slog.Debug("ListLinks handler called", "owner", c.Params("id"), "kind", c.Params("kind"))
	links, err := h.service.List(c.Context(), c.Params("id"), linkKind(c))
	if err != nil {
		return web.Error(c, err)
	}
	if links == nil {
		links = []content.Linked{}
	}
	return c.JSON(fiber.Map{"links": links})
}

// AddLink appends a link, or inserts it at an explicit free position.
func (h *Handler) AddLink(c *fiber.Ctx) error {
	var req addRequest
	if err := c.BodyParser(&req); err != nil {
		return web.BadRequest(c, "invalid request body")
	}
	if req.TargetID == "" {
		return web.BadRequest(c, "target_id is required")
	}
	id, err := h.service.Add(c.Context(), c.Params("id"), linkKind(c), req.TargetID, req.Position)
	if err != nil {
		return web.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// ReorderLinks renumbers the links following the submitted permutation.
func (h *Handler) ReorderLinks(c *fiber.Ctx) error {
	var req reorderRequest
	if err := c.BodyParser(&req); err != nil {
		return web.BadRequest(c, "invalid request body")
	}
	if err := h.service.Reorder(c.Context(), c.Params("id"), linkKind(c), req.Order); err != nil {
		return web.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RetargetLink points a link at another entity, keeping its position.
func (h *Handler) RetargetLink(c *fiber.Ctx) error {
	id, err := linkID(c)
	if err != nil {
		return web.BadRequest(c, "invalid link id")
	}
	var req retargetRequest
	if err := c.BodyParser(&req); err != nil || req.TargetID == "" {
		return web.BadRequest(c, "target_id is required")
	}
	if err := h.service.Retarget(c.Context(), c.Params("id"), linkKind(c), id, req.TargetID); err != nil {
		return web.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveLink deletes a link.
func (h *Handler) RemoveLink(c *fiber.Ctx) error {
	id, err := linkID(c)
	if err != nil {
		return web.BadRequest(c, "invalid link id")
	}
	if err := h.service.Remove(c.Context(), c.Params("id"), linkKind(c), id); err != nil {
		return web.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// OwnersOf lists the owners linking to a target. Unpublished owners are
// included unless live=true is passed.
func (h *Handler) OwnersOf(c *fiber.Ctx) error {
	liveOnly := c.QueryBool("live", false)
	owners, err := h.service.OwnersOf(c.Context(), c.Params("id"), linkKind(c), liveOnly)
	if err != nil {
		return web.Error(c, err)
	}
	if owners == nil {
		owners = []*content.Entity{}
	}
	return c.JSON(fiber.Map{"owners": owners})
}
