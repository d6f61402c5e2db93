package app

import (
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/observability"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// setupTelemetry initializes OpenTelemetry metrics backed by a Prometheus registry.
func (app *Application) setupTelemetry() error {
	telemetry, err := observability.NewTelemetry(observability.ServiceName, Version)
	if err != nil {
		return err
	}

	app.telemetry = telemetry

	app.logger.Get().Info("telemetry initialized",
		"service", observability.ServiceName,
		"version", Version,
		"metrics_enabled", true,
		"tracing_enabled", false,
	)

	return nil
}
