package router

import "github.com/gofiber/fiber/v2"

// ServerRouter mounts a group of routes on the fiber app. It fails when a
// required handler is missing.
type ServerRouter interface {
	BuildRoutes(app *fiber.App) error
}
