package http

import (
	"github.com/NeuralTrust/ImageGuard/pkg/version"
	"github.com/gofiber/fiber/v2"
)

type getVersionHandler struct {
	info version.Info
}

// NewGetVersionHandler resolves build info once; it cannot change while the
// process runs.
func NewGetVersionHandler() Handler {
	return &getVersionHandler{info: version.GetInfo()}
}

// Handle @Summary Build information of the running ImageGuard
// @Tags Version
// @Produce json
// @Success 200 {object} version.Info
// @Router /api/v1/version [get]
func (h *getVersionHandler) Handle(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "public, max-age=300")
	return c.JSON(h.info)
}
