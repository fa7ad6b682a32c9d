package telemetry

// ExporterConfig is one entry of the telemetry.exporters list. Settings are
// validated by the exporter named in Name.
type ExporterConfig struct {
	Name     string                 `json:"name" mapstructure:"name"`
	Settings map[string]interface{} `json:"settings" mapstructure:"settings"`
}
