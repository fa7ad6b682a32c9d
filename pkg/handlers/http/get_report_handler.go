package http

import (
	appModeration "github.com/NeuralTrust/ImageGuard/pkg/app/moderation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type getReportHandler struct {
	logger    *logrus.Logger
	moderator appModeration.Moderator
}

func NewGetReportHandler(logger *logrus.Logger, moderator appModeration.Moderator) Handler {
	return &getReportHandler{
		logger:    logger,
		moderator: moderator,
	}
}

// Handle @Summary Retrieve a moderation report
// @Tags Moderations
// @Produce json
// @Param report_id path string true "Report ID"
// @Success 200 {object} moderation.Report "Moderation report"
// @Failure 404 {object} map[string]interface{} "Report not found"
// @Router /api/v1/moderations/{report_id} [get]
func (h *getReportHandler) Handle(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("report_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid report_id format"})
	}

	rep, err := h.moderator.Get(c.Context(), id)
	if err != nil {
		status := errorStatus(err)
		if status == fiber.StatusInternalServerError {
			h.logger.WithError(err).WithField("report_id", id).Error("failed to get report")
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return writeReport(c, rep)
}
