package middleware

import "github.com/gofiber/fiber/v2"

type Middleware interface {
	Middleware() fiber.Handler
}

// Transport carries the middlewares mounted by the API router. Nil entries
// are skipped.
type Transport struct {
	AccessLogMiddleware Middleware
	AuthMiddleware      Middleware
}

// APIHandlers returns the handlers for the /api/v1 group in mount order.
func (t *Transport) APIHandlers() []interface{} {
	var handlers []interface{}
	for _, m := range []Middleware{t.AccessLogMiddleware, t.AuthMiddleware} {
		if m != nil {
			handlers = append(handlers, m.Middleware())
		}
	}
	return handlers
}
