package hosting

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/contre95/monkeypress/src/content"
	"github.com/contre95/monkeypress/src/features/catalog"
	"github.com/contre95/monkeypress/src/features/config"
	"github.com/contre95/monkeypress/src/features/editorial"
	"github.com/contre95/monkeypress/src/features/entities"
	"github.com/contre95/monkeypress/src/features/listing"
	"github.com/contre95/monkeypress/src/features/metrics"
	"github.com/contre95/monkeypress/src/features/relations"
	"github.com/contre95/monkeypress/src/features/ui"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
)

// Services groups the feature services the server exposes.
type Services struct {
	Entities  *entities.Service
	Relations *relations.Service
	Catalog   *catalog.Service
	Listing   *listing.Service
	Editorial *editorial.Service
	Metrics   *metrics.Service
}

// Server is the HTTP server for the application.
type Server struct {
	app  *fiber.App
	port uint32
}

// NewServer creates a new HTTP server. cfgPath is where configuration
// changes made from the admin are saved.
func NewServer(cfg *config.Manager, cfgPath string, services Services) *Server {
	engine := html.New("./views", ".html")
	engine.Debug(cfg.Get().Logger.Level == "debug")
	// Add custom template functions
	engine.AddFunc("isDebug", func() bool {
		return cfg.Get().Logger.HTMXDebug
	})
	engine.AddFunc("siteName", func() string {
		return cfg.Get().Site.Name
	})
	engine.AddFunc("add", func(a, b int) int {
		return a + b
	})
	engine.AddFunc("rating", stars)
	engine.AddFunc("date", func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2 January 2006")
	})
	engine.AddFunc("image", func(e *content.Entity) string {
		url, _ := e.Image()
		return url
	})
	engine.AddFunc("decade", func(e *content.Entity) string {
		decade, _ := e.DecadeFormed()
		return decade
	})
	engine.AddFunc("path", entityPath)

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				slog.Error("Internal Server Error", "error", err)
			}
			return c.Status(code).SendString(err.Error())
		},
		AppName:               cfg.Get().Site.Name,
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
	})

	// Add middleware
	app.Use(RequestLoggerMiddleware())
	if cfg.Get().Logger.HTMXDebug {
		app.Use(HTMXDebugMiddleware())
	}

	app.Static("/", "./public")
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/reviews")
	})

	listing.RegisterRoutes(app, services.Listing)
	entities.RegisterRoutes(app, services.Entities)
	relations.RegisterRoutes(app, services.Relations)
	catalog.RegisterRoutes(app, services.Catalog)
	editorial.RegisterRoutes(app, services.Editorial)
	config.RegisterRoutes(app, cfg, cfgPath)
	ui.RegisterRoutes(app, ui.NewHandler(cfg))
	if cfg.Get().Metrics.Enabled {
		metrics.RegisterRoutes(app, services.Metrics)
	}

	return &Server{app: app, port: cfg.Get().Server.Port}
}

// App exposes the fiber app, for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// stars renders a 0-5 rating, empty when the review is unrated.
func stars(r *int) string {
	if r == nil {
		return ""
	}
	n := min(max(*r, 0), 5)
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

// entityPath returns the public URL of an entity, or "" for kinds without
// a page of their own.
func entityPath(e *content.Entity) string {
	switch e.Kind {
	case content.KindReview:
		return "/reviews/" + e.Slug
	case content.KindNews:
		return "/news/" + e.Slug
	case content.KindFeature:
		return "/features/" + e.Slug
	case content.KindTour:
		return "/tours/" + e.Slug
	case content.KindArtist:
		return "/artists/" + e.Slug
	case content.KindAlbum:
		return "/albums/" + e.Slug
	case content.KindAuthor:
		return "/authors/" + e.Slug
	default:
		return ""
	}
}
