package telemetry

import (
	"context"
)

// Exporter ships decision events to an external sink. A base exporter is
// registered by name; WithSettings returns a configured instance.
type Exporter interface {
	Name() string
	ValidateConfig(settings map[string]interface{}) error
	Handle(ctx context.Context, evt *DecisionEvent) error
	WithSettings(settings map[string]interface{}) (Exporter, error)
	Close()
}
