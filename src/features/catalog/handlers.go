package catalog

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/contre95/monkeypress/src/content"
	"github.com/contre95/monkeypress/src/features/web"
	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

// Handler is the admin HTTP handler for track lists and tour dates.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the catalog feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type trackRequest struct {
	Title    string `json:"title"`
	Length   string `json:"length"`
	Position *int   `json:"position"`
}

type dateRequest struct {
	Date      string `json:"date"`
	Venue     string `json:"venue"`
	Price     *int   `json:"price"`
	DoorsOpen string `json:"doors_open"`
	City      string `json:"city"`
	Country   string `json:"country"`
	Position  *int   `json:"position"`
}

type reorderRequest struct {
	Order []int64 `json:"order"`
}

func itemID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("itemID"), 10, 64)
}

// ListTracks returns the ordered track list of an album.
func (h *Handler) ListTracks(c *fiber.Ctx) error {
	tracks, err := h.service.Tracks(c.Context(), c.Params("id"))
	if err != nil {
		return web.Error(c, err)
	}
	if tracks == nil {
		tracks = []content.Track{}
	}
	return c.JSON(fiber.Map{"tracks": tracks})
}

// AddTrack appends a track, or inserts it at an explicit free position.
func (h *Handler) AddTrack(c *fiber.Ctx) error {
	var req trackRequest
	if err := c.BodyParser(&req); err != nil {
		return web.BadRequest(c, "invalid request body")
	}
	track := content.Track{Title: req.Title, Length: req.Length}
	id, err := h.service.AddTrack(c.Context(), c.Params("id"), track, req.Position)
	if err != nil {
		return web.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// ReorderTracks renumbers the track list following the submitted permutation.
func (h *Handler) ReorderTracks(c *fiber.Ctx) error {
	var req reorderRequest
	if err := c.BodyParser(&req); err != nil {
		return web.BadRequest(c, "invalid request body")
	}
	if err := h.service.ReorderTracks(c.Context(), c.Params("id"), req.Order); err != nil {
		return web.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveTrack deletes a track.
func (h *Handler) RemoveTrack(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return web.BadRequest(c, "invalid track id")
	}
	if err := h.service.RemoveTrack(c.Context(), c.Params("id"), id); err != nil {
		return web.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListDates returns the ordered dates of a tour.
func (h *Handler) ListDates(c *fiber.Ctx) error {
	dates, err := h.service.Dates(c.Context(), c.Params("id"))
	if err != nil {
		return web.Error(c, err)
	}
	if dates == nil {
		dates = []content.TourDate{}
	}
	return c.JSON(fiber.Map{"dates": dates})
}

// AddDate appends a tour date, or inserts it at an explicit free position.
func (h *Handler) AddDate(c *fiber.Ctx) error {
	var req dateRequest
	if err := c.BodyParser(&req); err != nil {
		return web.BadRequest(c, "invalid request body")
	}
	date := content.TourDate{
		Venue:     req.Venue,
		Price:     req.Price,
		DoorsOpen: req.DoorsOpen,
		City:      req.City,
		Country:   req.Country,
	}
	if req.Date != "" {
		day, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			slog.Debug("AddDate rejected date", "date", req.Date, "error", err)
			return web.BadRequest(c, "date must look like "+dateLayout)
		}
		date.Date = &day
	}
	id, err := h.service.AddDate(c.Context(), c.Params("id"), date, req.Position)
	if err != nil {
		return web.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// ReorderDates renumbers the tour dates following the submitted permutation.
func (h *Handler) ReorderDates(c *fiber.Ctx) error {
	var req reorderRequest
	if err := c.BodyParser(&req); err != nil {
		return web.BadRequest(c, "invalid request body")
	}
	if err := h.service.ReorderDates(c.Context(), c.Params("id"), req.Order); err != nil {
		return web.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveDate deletes a tour date.
func (h *Handler) RemoveDate(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return web.BadRequest(c, "invalid date id")
	}
	if err := h.service.RemoveDate(c.Context(), c.Params("id"), id); err != nil {
		return web.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
