package hosting

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

var htmxRequestHeaders = []string{
	"HX-Request",
	"HX-Trigger",
	"HX-Trigger-Name",
	"HX-Target",
	"HX-Current-URL",
	"HX-Prompt",
	"HX-Boosted",
	"HX-History-Restore-Request",
}

var htmxResponseHeaders = []string{
	"HX-Location",
	"HX-Push-Url",
	"HX-Redirect",
	"HX-Refresh",
	"HX-Replace-Url",
	"HX-Reswap",
	"HX-Retarget",
	"HX-Trigger",
}

func isHTMX(c *fiber.Ctx) bool {
	return c.Get("HX-Request") == "true"
}

// requestLevel picks the log level of a finished request from its status.
func requestLevel(status int) slog.Level {
	switch {
	case status >= fiber.StatusInternalServerError:
		return slog.LevelError
	case status >= fiber.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelDebug
	}
}

// RequestLoggerMiddleware logs every request once it is answered, at a
// level matching its status class.
func RequestLoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		attrs := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration", time.Since(start).String(),
		}
		if isHTMX(c) {
			attrs = append(attrs, "type", "htmx", "hx_target", c.Get("HX-Target"))
		}
		if err != nil {
			attrs = append(attrs, "error", err)
		}
		slog.Log(c.Context(), requestLevel(status), "HTTP request", attrs...)
		return err
	}
}

// HTMXDebugMiddleware logs the htmx headers of every htmx round trip.
func HTMXDebugMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !isHTMX(c) {
			return c.Next()
		}

		slog.Debug("HTMX request received",
			"method", c.Method(),
			"path", c.Path(),
			"headers", requestHeaders(c, htmxRequestHeaders),
		)
		err := c.Next()
		if err == nil {
			slog.Debug("HTMX response sent",
				"status", c.Response().StatusCode(),
				"response_headers", responseHeaders(c, htmxResponseHeaders),
			)
		}
		return err
	}
}

func requestHeaders(c *fiber.Ctx, names []string) map[string]string {
	headers := make(map[string]string)
	for _, name := range names {
		if value := c.Get(name); value != "" {
			headers[name] = value
		}
	}
	return headers
}

func responseHeaders(c *fiber.Ctx, names []string) map[string]string {
	headers := make(map[string]string)
	for _, name := range names {
		if value := c.Response().Header.Peek(name); len(value) > 0 {
			headers[name] = string(value)
		}
	}
	return headers
}
