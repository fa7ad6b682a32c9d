package middleware_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NeuralTrust/ImageGuard/pkg/infra/jwt"
	"github.com/NeuralTrust/ImageGuard/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T, manager jwt.Manager) *fiber.App {
	t.Helper()
	logger, _ := test.NewNullLogger()
	transport := &middleware.Transport{AuthMiddleware: middleware.NewAuthMiddleware(logger, manager)}

	app := fiber.New()
	app.Use(transport.APIHandlers()...)
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(middleware.SubjectContextKey).(string))
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	manager := jwt.NewJwtManager("secret")
	valid, err := manager.CreateToken("ci", time.Hour)
	require.NoError(t, err)
	foreign, err := jwt.NewJwtManager("other").CreateToken("ci", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing", header: "", status: fiber.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", status: fiber.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", status: fiber.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + foreign, status: fiber.StatusUnauthorized},
		{name: "valid", header: "Bearer " + valid, status: fiber.StatusOK},
	}
	app := newApp(t, manager)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAccessLogMiddleware(t *testing.T) {
	logger, hook := test.NewNullLogger()
	app := fiber.New()
	app.Use(middleware.NewAccessLogMiddleware(logger).Middleware())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusTeapot) })

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15")
	_, err := app.Test(req)
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "request handled", entry.Message)
	assert.Equal(t, fiber.StatusTeapot, entry.Data["status"])
	assert.Equal(t, "Computer", entry.Data["device"])
}

func TestParseUserAgent_Script(t *testing.T) {
	assert.Nil(t, middleware.ParseUserAgent("curl/8.4.0"))
}
