package router_test

import (
	"net/http/httptest"
	"testing"

	handlers "github.com/NeuralTrust/ImageGuard/pkg/handlers/http"
	"github.com/NeuralTrust/ImageGuard/pkg/server/router"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticHandler struct{ name string }

func (h staticHandler) Handle(c *fiber.Ctx) error { return c.SendString(h.name) }

func transport() handlers.HandlerTransport {
	return handlers.HandlerTransport{
		ModerateHandler:      staticHandler{"moderate"},
		ModerateBatchHandler: staticHandler{"batch"},
		GetReportHandler:     staticHandler{"get"},
		ListReportsHandler:   staticHandler{"list"},
		GetVersionHandler:    staticHandler{"version"},
		HealthHandler:        staticHandler{"health"},
	}
}

func TestAPIRouter_Routes(t *testing.T) {
	app := fiber.New()
	require.NoError(t, router.NewAPIRouter(nil, transport()).BuildRoutes(app))

	tests := []struct {
		method, path, want string
	}{
		{"POST", "/api/v1/moderations", "moderate"},
		{"GET", "/api/v1/moderations", "list"},
		{"POST", "/api/v1/moderations/batch", "batch"},
		{"GET", "/api/v1/moderations/6b1f1c1e-0000-4000-8000-000000000000", "get"},
		{"GET", "/api/v1/version", "version"},
		{"GET", "/health", "health"},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(tt.method, tt.path, nil))
		require.NoError(t, err)
		buf := make([]byte, 64)
		n, _ := resp.Body.Read(buf)
		assert.Equal(t, tt.want, string(buf[:n]), "%s %s", tt.method, tt.path)
	}
}

func TestAPIRouter_MissingHandler(t *testing.T) {
	h := transport()
	h.ListReportsHandler = nil
	err := router.NewAPIRouter(nil, h).BuildRoutes(fiber.New())
	assert.ErrorIs(t, err, router.ErrInvalidHandlerTransport)
}
