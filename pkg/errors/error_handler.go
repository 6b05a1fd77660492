package errors

import (
	"errors"

	"video-merger/internal/pkg/logging"

	"github.com/gofiber/fiber/v2"
)

// HandleError renders err as {"error": message}. It doubles as the fiber
// app ErrorHandler, so fiber's own errors keep their status code.
func HandleError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}
	log := logging.WithComponent("http")

	var me *MergeError
	if errors.As(err, &me) {
		ev := log.Warn()
		if me.HTTPStatus() >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Err(me.Err).
			Str("kind", string(me.Kind)).
			Str("code", me.Code).
			Str("path", c.Path()).
			Msg(me.Message)

		return c.Status(me.HTTPStatus()).JSON(fiber.Map{
			"error": me.Message,
		})
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fe.Message,
		})
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("unexpected error")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}
