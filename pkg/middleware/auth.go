package middleware

import (
	"errors"
	"strings"

	"github.com/NeuralTrust/ImageGuard/pkg/infra/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
	SubjectContextKey   = "auth_subject"
)

type authMiddleware struct {
	logger     *logrus.Logger
	jwtManager jwt.Manager
}

func NewAuthMiddleware(
	logger *logrus.Logger,
	jwtManager jwt.Manager,
) Middleware {
	return &authMiddleware{
		logger:     logger,
		jwtManager: jwtManager,
	}
}

func (m *authMiddleware) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get(authorizationHeader)
		if authHeader == "" {
			m.logger.Debug("no authorization header provided")
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authorization required"})
		}
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			m.logger.Debug("invalid authorization header format")
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization format"})
		}

		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)
		if tokenString == "" {
			m.logger.Debug("empty token provided")
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Empty token provided"})
		}

		claims, err := m.jwtManager.DecodeToken(tokenString)
		if errors.Is(err, jwt.ErrExpiredToken) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token expired"})
		}
		if err != nil {
			m.logger.WithError(err).Debug("invalid token")
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}
		ctx.Locals(SubjectContextKey, claims.Subject)

		return ctx.Next()
	}
}
