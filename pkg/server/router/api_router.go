package router

import (
	"errors"

	_ "github.com/NeuralTrust/ImageGuard/pkg/docs"
	handlers "github.com/NeuralTrust/ImageGuard/pkg/handlers/http"
	"github.com/NeuralTrust/ImageGuard/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

const (
	HealthPath = "/health"
	DocsPath   = "/docs/*"
)

var ErrInvalidHandlerTransport = errors.New("invalid handler transport")

type apiRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    handlers.HandlerTransport
}

func NewAPIRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport handlers.HandlerTransport,
) ServerRouter {
	return &apiRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
	}
}

func (r *apiRouter) BuildRoutes(router *fiber.App) error {
	h := r.handlerTransport
	for _, handler := range []handlers.Handler{
		h.ModerateHandler, h.ModerateBatchHandler, h.GetReportHandler,
		h.ListReportsHandler, h.GetVersionHandler, h.HealthHandler,
	} {
		if handler == nil {
			return ErrInvalidHandlerTransport
		}
	}

	router.Get(HealthPath, h.HealthHandler.Handle)
	router.Get(DocsPath, swagger.HandlerDefault)

	v1 := router.Group("/api/v1")
	{
		if r.middlewareTransport != nil {
			if mw := r.middlewareTransport.APIHandlers(); len(mw) > 0 {
				v1.Use(mw...)
			}
		}

		v1.Get("/version", h.GetVersionHandler.Handle)

		moderations := v1.Group("/moderations")
		{
			moderations.Post("", h.ModerateHandler.Handle)
			moderations.Get("", h.ListReportsHandler.Handle)
			moderations.Post("/batch", h.ModerateBatchHandler.Handle)
			moderations.Get("/:report_id", h.GetReportHandler.Handle)
		}
	}
	return nil
}
