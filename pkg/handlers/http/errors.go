package http

import (
	"errors"

	appModeration "github.com/NeuralTrust/ImageGuard/pkg/app/moderation"
	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/gofiber/fiber/v2"
)

func errorStatus(err error) int {
	switch {
	case moderation.IsNotFoundError(err):
		return fiber.StatusNotFound
	case errors.Is(err, appModeration.ErrPersistenceDisabled):
		return fiber.StatusNotImplemented
	case errors.Is(err, moderation.ErrEmptyBatch):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
