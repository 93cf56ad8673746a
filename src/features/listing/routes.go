package listing

import (
	"github.com/contre95/monkeypress/src/content"
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the listing feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	app.Get("/reviews", handler.GetIndex("reviews"))
	app.Get("/reviews/:slug", handler.GetDetail(content.KindReview))
	app.Get("/news", handler.GetIndex("news"))
	app.Get("/news/:slug", handler.GetDetail(content.KindNews))
	app.Get("/features", handler.GetIndex("features"))
	app.Get("/features/:slug", handler.GetDetail(content.KindFeature))
	app.Get("/tours", handler.GetIndex("tours"))
	app.Get("/tours/:slug", handler.GetDetail(content.KindTour))
	app.Get("/artists", handler.GetIndex("artists"))
	app.Get("/artists/:slug", handler.GetDetail(content.KindArtist))
	app.Get("/albums/:slug", handler.GetDetail(content.KindAlbum))
	app.Get("/authors", handler.GetIndex("authors"))
	app.Get("/authors/:slug", handler.GetDetail(content.KindAuthor))
}
