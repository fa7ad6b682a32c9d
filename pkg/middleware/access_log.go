package middleware

import (
	"fmt"
	"time"

	"github.com/avct/uasurfer"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ClientInfo struct {
	Device  string
	OS      string
	Browser string
}

// ParseUserAgent returns nil for agents that are not a recognizable device,
// which covers most scripted API clients.
func ParseUserAgent(uaString string) *ClientInfo {
	ua := uasurfer.Parse(uaString)

	device := ""
	switch ua.DeviceType {
	case uasurfer.DeviceComputer:
		device = "Computer"
	case uasurfer.DeviceTablet:
		device = "Tablet"
	case uasurfer.DevicePhone:
		device = "Phone"
	default:
		return nil
	}

	return &ClientInfo{
		Device:  device,
		OS:      fmt.Sprintf("%s %d.%d", ua.OS.Name.String(), ua.OS.Version.Major, ua.OS.Version.Minor),
		Browser: fmt.Sprintf("%s %d.%d", ua.Browser.Name.String(), ua.Browser.Version.Major, ua.Browser.Version.Minor),
	}
}

type accessLogMiddleware struct {
	logger *logrus.Logger
}

func NewAccessLogMiddleware(logger *logrus.Logger) Middleware {
	return &accessLogMiddleware{logger: logger}
}

func (m *accessLogMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		fields := logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.IP(),
		}
		if info := ParseUserAgent(c.Get(fiber.HeaderUserAgent)); info != nil {
			fields["device"] = info.Device
			fields["os"] = info.OS
			fields["browser"] = info.Browser
		}
		entry := m.logger.WithFields(fields)
		if err != nil {
			entry.WithError(err).Warn("request failed")
			return err
		}
		entry.Info("request handled")
		return nil
	}
}
