package middleware

import (
	"time"

	"video-merger/internal/pkg/logging"

	"github.com/gofiber/fiber/v2"
)

// AccessLog writes one structured line per request. Register it after
// requestid so the ID is available. Errors from later handlers are rendered
// here so the logged status is the one sent.
func AccessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		log := logging.WithComponent("access")
		ev := log.Info()
		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		} else if status >= fiber.StatusBadRequest {
			ev = log.Warn()
		}
		if id, ok := c.Locals("requestid").(string); ok {
			ev = ev.Str("request_id", id)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("remote", c.IP()).
			Msg("request")
		return nil
	}
}
