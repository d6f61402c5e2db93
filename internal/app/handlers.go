package app

import (
	"context"
	"errors"
	"time"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/adapter/handler"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/server"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/slack"
)

func (app *Application) initializeHandlers() error {
	logger := &slogAdapter{logger: app.logger}
	metrics := app.telemetry.Metrics

	app.dispatcher = handler.NewMentionDispatcher(app.useCases.HandleMention, logger)
	router := handler.NewEventRouter(app.processedRepo, app.dispatcher, metrics, logger)

	readyHandler := handler.NewReadyHandler()
	for name, checker := range app.readiness {
		readyHandler.AddChecker(name, checker)
	}

	app.handlers = &server.Handlers{
		Root:    handler.NewRootHandler(),
		Health:  handler.NewHealthHandler(),
		Ready:   readyHandler,
		Reload:  handler.NewReloadHandler(app.configManager, logger),
		Metrics: handler.NewMetricsHandler(app.telemetry.Registry),
	}

	if app.config.IsSocketModeEnabled() {
		socketHandler := handler.NewSocketModeHandler(app.config.IsWorkspaceAllowed, router, logger)
		app.clients.SocketMode.SetHandler(socketHandler)
		readyHandler.AddChecker("slack_socket_mode", socketModeChecker{app.clients.SocketMode})
		return nil
	}

	app.handlers.SlackEvents = handler.NewSlackEventsHandler(
		slack.NewSignatureVerifier(app.config.Slack.SigningSecret),
		app.config.IsWorkspaceAllowed,
		router,
		metrics,
		logger,
	)
	return nil
}

func (app *Application) setupServer() error {
	router := server.NewRouter(app.handlers, server.RouterOptions{
		Metrics:        app.telemetry.Metrics,
		RequestTimeout: app.config.Server.RequestTimeout,
	}, app.logger.Get())

	app.server = server.New(app.config.Server, router, app.logger.Get())
	return nil
}

// socketModeChecker reports the Socket Mode connection in /ready.
type socketModeChecker struct {
	client *slack.SocketModeClient
}

func (c socketModeChecker) Ping(context.Context) error {
	if !c.client.IsConnected() {
		if last := c.client.LastReconnect(); !last.IsZero() {
			return errors.New("disconnected since " + last.UTC().Format(time.RFC3339))
		}
		return errors.New("not connected")
	}
	return nil
}
