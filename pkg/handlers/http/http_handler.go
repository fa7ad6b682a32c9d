package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	// Moderation
	ModerateHandler      Handler
	ModerateBatchHandler Handler
	GetReportHandler     Handler
	ListReportsHandler   Handler

	// System
	GetVersionHandler Handler
	HealthHandler     Handler
}
