package app

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/repository"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/config"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/observability"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/persistence/memory"
)

func TestAtomicLogger_Reconfigure(t *testing.T) {
	var buf bytes.Buffer
	l := NewAtomicLogger("info", "json", &buf)
	adapter := &slogAdapter{logger: l}

	adapter.Debug("hidden")
	assert.Empty(t, buf.String())

	l.Reconfigure("debug", "text")
	adapter.Debug("shown", "k", "v")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "k=v")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "WARN", parseLevel("warn").String())
	assert.Equal(t, "INFO", parseLevel("bogus").String())
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{}
	cfg.Slack.DedupTTL = time.Hour
	cfg.Agent.SessionTTL = 24 * time.Hour

	telemetry, err := observability.NewTelemetry("", "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = telemetry.Shutdown(context.Background()) })

	sessions := memory.NewSessionRepository()
	processed := memory.NewProcessedEventRepository()

	app := &Application{
		config:        cfg,
		configManager: config.NewConfigManager("", cfg, nil),
		logger:        NewAtomicLogger("error", "json", &bytes.Buffer{}),
		telemetry:     telemetry,
		sessionRepo:   sessions,
		processedRepo: processed,
	}

	now := time.Now().UTC()

	stale := entity.NewProcessedEvent("Ev-old", "1.0")
	stale.ReceivedAt = now.Add(-2 * time.Hour)
	require.NoError(t, processed.MarkProcessed(ctx, stale))
	require.NoError(t, processed.MarkProcessed(ctx, entity.NewProcessedEvent("Ev-new", "2.0")))

	idle := entity.NewSession("app", "U1", "1.0")
	idle.UpdatedAt = now.Add(-48 * time.Hour)
	require.NoError(t, sessions.Create(ctx, idle))
	active := entity.NewSession("app", "U1", "2.0")
	require.NoError(t, sessions.Create(ctx, active))

	app.sweep(ctx, now)

	assert.Equal(t, 1, processed.Count())

	_, err = sessions.Get(ctx, idle.Key())
	assert.True(t, errors.Is(err, repository.ErrNotFound))
	_, err = sessions.Get(ctx, active.Key())
	assert.NoError(t, err)
}
