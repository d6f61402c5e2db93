package app

import (
	"context"
	"fmt"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/agents"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/logger"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/repository"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/agentruntime"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/config"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/observability"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/resilience"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/tools"
)

// runnerDeps are the collaborators of a runner built from config.
type runnerDeps struct {
	sessions repository.SessionRepository
	metrics  *observability.Metrics
	log      logger.Logger
}

// buildRunner wires the configured persona, model and tools into a runner.
// persona overrides cfg.Agent.Persona when non-empty.
func buildRunner(ctx context.Context, cfg *config.AgentConfig, persona string, deps runnerDeps) (*agentruntime.Runner, error) {
	if persona == "" {
		persona = cfg.Persona
	}

	def, err := agents.Lookup(persona, cfg.Model)
	if err != nil {
		return nil, err
	}

	agent, err := agents.Build(def, tools.DefaultRegistry(), cfg.Tools)
	if err != nil {
		return nil, err
	}

	model, err := agentruntime.NewGeminiModel(ctx, cfg.Model, agentruntime.GeminiConfig{
		Backend:  cfg.Backend,
		APIKey:   cfg.APIKey,
		Project:  cfg.Project,
		Location: cfg.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("model client: %w", err)
	}

	log := deps.log
	if log == nil {
		log = logger.Nop{}
	}

	breaker := resilience.NewCircuitBreaker(
		"agent-"+def.Name,
		cfg.CircuitBreaker.MaxFailures,
		cfg.CircuitBreaker.ResetTimeout,
		resilience.WithFailurePredicate(agentruntime.IsUpstreamFailure),
		resilience.WithStateChangeHook(func(name string, from, to resilience.State) {
			log.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		}),
	)

	return agentruntime.NewRunner(agentruntime.RunnerConfig{
		AppName:  cfg.AppName,
		Agent:    agent,
		Model:    model,
		Sessions: agentruntime.NewSessionService(deps.sessions, cfg.HistoryLimit),
		MaxSteps: cfg.MaxSteps,
		Breaker:  breaker,
		Metrics:  deps.metrics,
		Logger:   log,
	})
}
