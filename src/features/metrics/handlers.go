package metrics

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler handles HTTP requests for the metrics feature.
type Handler struct {
	service    *Service
	prometheus fiber.Handler
}

// NewHandler creates a new metrics handler.
func NewHandler(service *Service) *Handler {
	promHandler := promhttp.HandlerFor(service.Collector().Registry(), promhttp.HandlerOpts{})
	return &Handler{
		service:    service,
		prometheus: adaptor.HTTPHandler(promHandler),
	}
}

// Scrape refreshes the content gauges and serves the Prometheus exposition.
func (h *Handler) Scrape(c *fiber.Ctx) error {
	if _, err := h.service.Refresh(c.Context()); err != nil {
		slog.Warn("Serving metrics with stale gauges", "error", err)
	}
	return h.prometheus(c)
}

// GetStats returns content statistics, optionally as chart data.
func (h *Handler) GetStats(c *fiber.Ctx) error {
	slog.Debug("GetStats handler called")
	stats, err := h.service.Refresh(c.Context())
	if err != nil {
		slog.Error("Error loading stats", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error loading stats")
	}
	if c.Query("fmt") == "chart" {
		return c.JSON(stats.KindChartData())
	}
	return c.JSON(stats)
}
