package listing

import (
	"log/slog"

	"github.com/contre95/monkeypress/src/content"
	"github.com/contre95/monkeypress/src/features/web"
	"github.com/gofiber/fiber/v2"
)

// Handler is the public HTTP handler for listings and detail pages.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the listing feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// queryFromRequest reads the filters and sort key from the query string.
// Unknown keys are kept; the pipeline ignores them.
func queryFromRequest(c *fiber.Ctx) Query {
	filters := make(map[string]string)
	for k, v := range c.Queries() {
		if k == "page" || k == "sort_by" {
			continue
		}
		filters[k] = v
	}
	return Query{Filters: filters, Sort: c.Query("sort_by")}
}

// GetIndex serves one page of the named index.
func (h *Handler) GetIndex(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		slog.Debug("GetIndex handler called", "index", name)
		result, err := h.service.Index(c.Context(), name, queryFromRequest(c), c.Query("page"))
		if err != nil {
			return h.fail(c, err)
		}
		if result.Items == nil {
			result.Items = []*content.Entity{}
		}
		if web.WantsHTML(c) {
			return c.Render("pages/index", fiber.Map{
				"Title":  Title(name),
				"Result": result,
			}, "layouts/main")
		}
		return c.JSON(result)
	}
}

// GetDetail serves the detail page of an entity of kind by slug.
func (h *Handler) GetDetail(kind content.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		slog.Debug("GetDetail handler called", "kind", kind, "slug", c.Params("slug"))
		detail, err := h.service.Detail(c.Context(), kind, c.Params("slug"))
		if err != nil {
			return h.fail(c, err)
		}
		if web.WantsHTML(c) {
			return c.Render("pages/detail", fiber.Map{
				"Title":    detail.Entity.Title,
				"Detail":   detail,
				"Sections": detailSections[kind],
			}, "layouts/main")
		}
		return c.JSON(detail)
	}
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	if web.WantsHTML(c) && web.Status(err) == fiber.StatusNotFound {
		return c.Status(fiber.StatusNotFound).Render("pages/not_found", fiber.Map{
			"Title": "Not found",
		}, "layouts/main")
	}
	return web.Error(c, err)
}

// Title returns the heading of an index page.
func Title(index string) string {
	switch index {
	case "reviews":
		return "Reviews"
	case "news":
		return "News"
	case "features":
		return "Features"
	case "tours":
		return "Tours"
	case "artists":
		return "Artists"
	case "authors":
		return "Authors"
	default:
		return index
	}
}
