package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/adapter/handler"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/repository"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/config"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/observability"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/server"
)

// Application holds all application dependencies and lifecycle
type Application struct {
	config        *config.Config
	configManager *config.ConfigManager
	logger        *AtomicLogger
	telemetry     *observability.Telemetry

	// Storage
	sessionRepo   repository.SessionRepository
	processedRepo repository.ProcessedEventRepository
	readiness     map[string]handler.ReadinessChecker
	dbCloser      io.Closer

	// Infrastructure clients
	clients *Clients

	// Use cases
	useCases *UseCases

	// HTTP layer
	dispatcher *handler.MentionDispatcher
	handlers   *server.Handlers
	server     *server.Server
}

// New creates a new Application instance
func New(ctx context.Context, configPath string) (*Application, error) {
	app := &Application{
		readiness: make(map[string]handler.ReadinessChecker),
	}

	if err := app.bootstrap(ctx, configPath); err != nil {
		app.closeStorage()
		return nil, err
	}

	return app, nil
}

// Start runs the application until context is cancelled
func (app *Application) Start(ctx context.Context) error {
	log := app.logger.Get()
	log.Info("starting slack-agent-bridge",
		"port", app.config.Server.Port,
		"socket_mode", app.config.IsSocketModeEnabled(),
		"agent", app.clients.Runner.AgentName(),
	)

	if err := app.configManager.Watch(); err != nil {
		log.Warn("config hot reload disabled", "error", err)
	}

	go app.runJanitor(ctx)

	if app.clients.SocketMode != nil {
		go func() {
			err := app.clients.SocketMode.Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error("socket mode stopped", "error", err)
			}
		}()
	}

	return app.server.Run(ctx)
}

// Shutdown gracefully stops the application: in-flight mentions are drained
// before storage is closed.
func (app *Application) Shutdown() error {
	log := app.logger.Get()
	log.Info("shutting down slack-agent-bridge")

	timeout := app.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error

	if app.dispatcher != nil {
		if err := app.dispatcher.Shutdown(ctx); err != nil {
			log.Error("mentions still running at shutdown", "error", err)
			errs = append(errs, err)
		}
	}

	if app.telemetry != nil {
		if err := app.telemetry.Shutdown(ctx); err != nil {
			log.Error("failed to shutdown telemetry", "error", err)
		}
	}

	if err := app.closeStorage(); err != nil {
		log.Error("failed to close database", "error", err)
		errs = append(errs, err)
	}

	log.Info("slack-agent-bridge stopped")
	return errors.Join(errs...)
}

func (app *Application) closeStorage() error {
	if app.dbCloser == nil {
		return nil
	}
	err := app.dbCloser.Close()
	app.dbCloser = nil
	if err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	return nil
}
