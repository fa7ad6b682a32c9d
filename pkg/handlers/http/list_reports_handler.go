package http

import (
	appModeration "github.com/NeuralTrust/ImageGuard/pkg/app/moderation"
	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type listReportsHandler struct {
	logger    *logrus.Logger
	moderator appModeration.Moderator
}

func NewListReportsHandler(logger *logrus.Logger, moderator appModeration.Moderator) Handler {
	return &listReportsHandler{
		logger:    logger,
		moderator: moderator,
	}
}

// Handle @Summary List moderation reports
// @Description Newest first, optionally filtered by decision and violation label
// @Tags Moderations
// @Produce json
// @Param decision query string false "Accept, Flag or Reject"
// @Param violation query string false "Violation label"
// @Param limit query int false "Maximum number of reports"
// @Success 200 {array} moderation.Report "Reports"
// @Router /api/v1/moderations [get]
func (h *listReportsHandler) Handle(c *fiber.Ctx) error {
	filter := moderation.ListFilter{
		Decision:  moderation.Decision(c.Query("decision")),
		Violation: moderation.ViolationLabel(c.Query("violation")),
		Limit:     c.QueryInt("limit", moderation.DefaultListLimit),
	}
	switch filter.Decision {
	case "", moderation.DecisionAccept, moderation.DecisionFlag, moderation.DecisionReject:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "decision must be Accept, Flag or Reject"})
	}

	reports, err := h.moderator.List(c.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("failed to list reports")
		return c.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	if reports == nil {
		reports = []moderation.Report{}
	}
	return c.Status(fiber.StatusOK).JSON(reports)
}
