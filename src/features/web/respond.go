// Package web holds the response helpers shared by the HTTP handlers.
package web

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/contre95/monkeypress/src/content"
	"github.com/gofiber/fiber/v2"
)

// WantsHTML reports whether the request asks for a rendered page (a browser
// or an HTMX request) rather than JSON.
func WantsHTML(c *fiber.Ctx) bool {
	return strings.Contains(c.Get("Accept"), "text/html") || c.Get("HX-Request") == "true"
}

// Status maps a content error to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, content.ErrValidation):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, content.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// Error writes err as a JSON error body. Validation and not-found messages
// reach the editor verbatim; anything else is logged and hidden.
func Error(c *fiber.Ctx, err error) error {
	status := Status(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		slog.Error("Request failed", "path", c.Path(), "error", err)
		msg = "internal error"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// BadRequest rejects a malformed request body or parameter.
func BadRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
