package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTelemetry_ExportsToOwnRegistry(t *testing.T) {
	tel, err := NewTelemetry("", "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })

	tel.Metrics.RecordAgentRun(context.Background(), "slack_bot_agent", "ok", 1500*time.Millisecond)

	families, err := tel.Registry.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["go_goroutines"])

	found := false
	for name := range names {
		if strings.HasPrefix(name, "agent_runs") {
			found = true
		}
	}
	assert.True(t, found, "agent run counter exported, got %v", names)

	// A second instance must not collide with the first.
	other, err := NewTelemetry("", "test")
	require.NoError(t, err)
	_ = other.Shutdown(context.Background())
}
