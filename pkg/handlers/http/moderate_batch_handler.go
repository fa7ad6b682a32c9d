package http

import (
	"errors"

	appModeration "github.com/NeuralTrust/ImageGuard/pkg/app/moderation"
	"github.com/NeuralTrust/ImageGuard/pkg/detectors/ingestion"
	"github.com/NeuralTrust/ImageGuard/pkg/handlers/http/request"
	"github.com/NeuralTrust/ImageGuard/pkg/report"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type BatchItem struct {
	ImagePath     string    `json:"image_path"`
	ReportID      uuid.UUID `json:"report_id"`
	FinalDecision string    `json:"final_decision"`
	Letter        string    `json:"letter"`
	Violations    []string  `json:"violations"`
}

type moderateBatchHandler struct {
	logger    *logrus.Logger
	moderator appModeration.Moderator
	resolver  ImageResolver
}

func NewModerateBatchHandler(logger *logrus.Logger, moderator appModeration.Moderator, resolver ImageResolver) Handler {
	return &moderateBatchHandler{
		logger:    logger,
		moderator: moderator,
		resolver:  resolver,
	}
}

// Handle @Summary Moderate a batch of images
// @Description Moderates every path or URL independently and returns one summary per image, in input order
// @Tags Moderations
// @Accept json
// @Produce json
// @Param request body request.ModerateBatchRequest true "Image references"
// @Success 200 {array} BatchItem "Batch results"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Router /api/v1/moderations/batch [post]
func (h *moderateBatchHandler) Handle(c *fiber.Ctx) error {
	var req request.ModerateBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	paths := make([]string, len(req.ImagePaths))
	for i, input := range req.ImagePaths {
		local, cleanup, err := h.resolver.Resolve(c.Context(), input)
		if errors.Is(err, ingestion.ErrLocalPathNotAllowed) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		if err != nil {
			// An unreachable URL still gets a report: ingestion rejects it.
			h.logger.WithError(err).WithField("image", input).Warn("failed to resolve image")
			local = input
		}
		defer cleanup()
		paths[i] = local
	}

	reports, err := h.moderator.ModerateBatch(c.Context(), paths)
	if err != nil {
		h.logger.WithError(err).Error("batch moderation failed")
		return c.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	items := make([]BatchItem, len(reports))
	for i, rep := range reports {
		items[i] = BatchItem{
			ImagePath:     req.ImagePaths[i],
			ReportID:      rep.ID,
			FinalDecision: string(rep.FinalDecision),
			Letter:        report.Letter(rep),
			Violations:    rep.Violations.Strings(),
		}
	}
	return c.Status(fiber.StatusOK).JSON(items)
}
