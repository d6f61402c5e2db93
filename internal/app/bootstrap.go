package app

import (
	"context"
	"fmt"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/config"
)

func (app *Application) bootstrap(ctx context.Context, configPath string) error {
	// 1. Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	app.config = cfg

	// 2. Setup logger
	app.logger = NewAtomicLogger(cfg.Logging.Level, cfg.Logging.Format, nil)

	// 3. Setup telemetry (OpenTelemetry)
	if err := app.setupTelemetry(); err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}

	// 4. Setup config manager with reload callback
	app.setupConfigManager(configPath)

	// 5. Initialize storage layer
	if err := app.initializeStorage(ctx); err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	// 6. Initialize infrastructure clients
	if err := app.initializeClients(ctx); err != nil {
		return fmt.Errorf("initializing clients: %w", err)
	}

	// 7. Initialize use cases
	if err := app.initializeUseCases(); err != nil {
		return fmt.Errorf("initializing use cases: %w", err)
	}

	// 8. Initialize HTTP handlers
	if err := app.initializeHandlers(); err != nil {
		return fmt.Errorf("initializing handlers: %w", err)
	}

	// 9. Setup HTTP server
	if err := app.setupServer(); err != nil {
		return fmt.Errorf("setting up server: %w", err)
	}

	return nil
}

func (app *Application) setupConfigManager(configPath string) {
	app.configManager = config.NewConfigManager(configPath, app.config, &slogAdapter{logger: app.logger})

	app.configManager.OnReload(func(old, updated *config.Config) {
		if old.Logging != updated.Logging {
			app.logger.Reconfigure(updated.Logging.Level, updated.Logging.Format)
		}
		app.logger.Get().Info("configuration reloaded",
			"log_level", updated.Logging.Level,
			"log_format", updated.Logging.Format,
			"run_timeout", updated.Agent.RunTimeout,
		)
	})
}
