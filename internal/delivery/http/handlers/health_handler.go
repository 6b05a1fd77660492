package handlers

import (
	"video-merger/internal/domain/dto"
	consts "video-merger/pkg/constants"

	"github.com/gofiber/fiber/v2"
)

// Health
//
// @Summary      Health Check
// @Description  Reports that the service is up
// @Tags         Health
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Router       /health [get]
func Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{Status: consts.StatusOK})
}
