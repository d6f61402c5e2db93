package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/agentruntime"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/config"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/persistence/memory"
)

// cliUserID owns sessions created from the command line.
const cliUserID = "cli"

// RunAgentOnce sends prompt to persona in a fresh in-memory session and
// writes the final reply to out. Slack settings are not required.
func RunAgentOnce(ctx context.Context, configPath, persona, prompt string, out io.Writer) error {
	cfg, err := config.LoadAgentOnly(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	atomicLogger := NewAtomicLogger(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	runner, err := buildRunner(ctx, &cfg.Agent, persona, runnerDeps{
		sessions: memory.NewSessionRepository(),
		log:      &slogAdapter{logger: atomicLogger},
	})
	if err != nil {
		return err
	}

	sessionID := uuid.NewString()
	if _, err := runner.Sessions().CreateSession(ctx, runner.AppName(), cliUserID, sessionID); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Agent.RunTimeout)
	defer cancel()

	reply := entity.NoResponsePlaceholder
	msg := entity.NewUserContent(entity.TextPart(prompt))
	for event, err := range runner.Run(ctx, cliUserID, sessionID, msg) {
		if err != nil {
			return fmt.Errorf("agent %s: %w", runner.AgentName(), err)
		}
		if event.IsFinalResponse() {
			if text := agentruntime.FinalText(event); text != "" {
				reply = text
			}
			break
		}
	}

	_, err = fmt.Fprintln(out, reply)
	return err
}
