package app

import (
	"context"
	"fmt"
	"time"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/agentruntime"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/slack"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/usecase/mention"
)

// Clients holds all external integration clients.
type Clients struct {
	Slack       *slack.Client
	FileFetcher *slack.FileFetcher
	SocketMode  *slack.SocketModeClient
	Runner      *agentruntime.Runner
}

// UseCases holds the application use cases.
type UseCases struct {
	HandleMention *mention.HandleMentionUseCase
}

func (app *Application) initializeClients(ctx context.Context) error {
	logger := &slogAdapter{logger: app.logger}
	cfg := app.config

	opts := slack.ClientOptions{
		APIURL: cfg.Slack.APIURL,
		Logger: logger,
	}

	app.clients = &Clients{
		Slack:       slack.NewClient(cfg.Slack.BotToken, opts),
		FileFetcher: slack.NewFileFetcher(cfg.Slack.BotToken, cfg.Slack.FileFetchTimeout, opts),
	}

	if cfg.IsSocketModeEnabled() {
		sm, err := slack.NewSocketModeClient(cfg.Slack.BotToken, cfg.Slack.SocketMode, logger)
		if err != nil {
			return fmt.Errorf("socket mode client: %w", err)
		}
		app.clients.SocketMode = sm
	}

	runner, err := buildRunner(ctx, &cfg.Agent, "", runnerDeps{
		sessions: app.sessionRepo,
		metrics:  app.telemetry.Metrics,
		log:      logger,
	})
	if err != nil {
		return fmt.Errorf("agent runner: %w", err)
	}
	app.clients.Runner = runner

	app.logger.Get().Info("agent runner initialized",
		"agent", runner.AgentName(),
		"app_name", runner.AppName(),
		"model", cfg.Agent.Model,
		"backend", cfg.Agent.Backend,
	)
	return nil
}

func (app *Application) initializeUseCases() error {
	logger := &slogAdapter{logger: app.logger}
	metrics := app.telemetry.Metrics

	fetcher := mention.NewAttachmentFetcher(app.clients.FileFetcher, metrics, logger)
	sessions := mention.NewSessionManager(app.clients.Runner.Sessions(), app.clients.Runner.AppName(), logger)

	app.useCases = &UseCases{
		HandleMention: mention.NewHandleMentionUseCase(
			mention.NewContentAssembler(fetcher),
			sessions,
			app.clients.Runner,
			app.clients.Slack,
			mention.NewThreadLocks(),
			mention.Config{
				RunTimeout: func() time.Duration {
					return app.configManager.Get().Agent.RunTimeout
				},
				PostTimeout: app.config.Slack.PostTimeout,
			},
			metrics,
			logger,
		),
	}
	return nil
}
