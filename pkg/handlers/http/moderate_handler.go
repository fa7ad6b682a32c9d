package http

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	appModeration "github.com/NeuralTrust/ImageGuard/pkg/app/moderation"
	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/ImageGuard/pkg/handlers/http/request"
	"github.com/NeuralTrust/ImageGuard/pkg/report"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const imageFormField = "image"

type moderateHandler struct {
	logger    *logrus.Logger
	moderator appModeration.Moderator
	resolver  ImageResolver
	uploadDir string
}

func NewModerateHandler(
	logger *logrus.Logger,
	moderator appModeration.Moderator,
	resolver ImageResolver,
	uploadDir string,
) Handler {
	return &moderateHandler{
		logger:    logger,
		moderator: moderator,
		resolver:  resolver,
		uploadDir: uploadDir,
	}
}

// Handle @Summary Moderate an image
// @Description Runs the moderation pipeline on an uploaded image (multipart field "image") or on a path or URL given as JSON
// @Tags Moderations
// @Accept json,mpfd
// @Produce json
// @Param request body request.ModerateRequest false "Image reference"
// @Success 200 {object} moderation.Report "Moderation report"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Router /api/v1/moderations [post]
func (h *moderateHandler) Handle(c *fiber.Ctx) error {
	imagePath, cleanup, err := h.imageFromRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	defer cleanup()

	rep, err := h.moderator.Moderate(c.Context(), imagePath)
	if err != nil {
		h.logger.WithError(err).WithField("image", imagePath).Error("moderation failed")
		return c.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	h.logger.WithFields(logrus.Fields{
		"report_id": rep.ID,
		"decision":  rep.FinalDecision,
	}).Info("image moderated")

	return writeReport(c, rep)
}

func (h *moderateHandler) imageFromRequest(c *fiber.Ctx) (string, func(), error) {
	noop := func() {}
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		file, err := c.FormFile(imageFormField)
		if err != nil {
			return "", noop, fmt.Errorf("multipart field %q is required", imageFormField)
		}
		if err := os.MkdirAll(h.uploadDir, 0750); err != nil {
			return "", noop, fmt.Errorf("failed to prepare upload dir: %w", err)
		}
		dst := filepath.Join(h.uploadDir, uuid.NewString()+strings.ToLower(filepath.Ext(file.Filename)))
		if err := c.SaveFile(file, dst); err != nil {
			return "", noop, fmt.Errorf("failed to store upload: %w", err)
		}
		return dst, func() { _ = os.Remove(dst) }, nil
	}

	var req request.ModerateRequest
	if err := c.BodyParser(&req); err != nil {
		return "", noop, fmt.Errorf("invalid request body")
	}
	if err := req.Validate(); err != nil {
		return "", noop, err
	}
	return h.resolver.Resolve(c.Context(), req.ImagePath)
}

func writeReport(c *fiber.Ctx, rep *moderation.Report) error {
	body, err := report.MarshalJSON(rep)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to encode report"})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(body)
}
