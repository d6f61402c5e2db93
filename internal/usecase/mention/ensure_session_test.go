package mention

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/agentruntime"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/persistence/memory"
)

func TestEnsureSession_Idempotent(t *testing.T) {
	sessions := agentruntime.NewSessionService(memory.NewSessionRepository(), 0)
	m := NewSessionManager(sessions, "slack-bot", nil)
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.EnsureSession(ctx, "U1", "1700000000.000100")
		m.EnsureSession(ctx, "U1", "1700000000.000100")
	})

	_, err := sessions.CreateSession(ctx, "slack-bot", "U1", "1700000000.000100")
	assert.Error(t, err, "session should already exist")
}
