package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/tools"
)

func TestLookup(t *testing.T) {
	def, err := Lookup("slack_bot_agent", "gemini-2.5-flash")
	require.NoError(t, err)
	assert.Equal(t, "slack_bot_agent", def.Name)
	assert.Equal(t, "gemini-2.5-flash", def.Model)
	assert.Equal(t, []string{"google_search"}, def.Tools)
	assert.Contains(t, def.Instruction, "Slack-compatible Markdown")
	assert.Contains(t, def.Instruction, "<https://example.com|display text>")
	assert.Nil(t, def.ThinkingBudget)

	_, err = Lookup("poet_agent", "m")
	assert.ErrorContains(t, err, "unknown agent persona")
}

func TestComedianAgent(t *testing.T) {
	def := NewComedianAgent("gemini-2.5-pro")
	assert.Equal(t, "comedian_agent", def.Name)
	require.NotNil(t, def.ThinkingBudget)
	assert.Equal(t, int32(512), *def.ThinkingBudget)
	assert.Empty(t, def.Tools)
	assert.Contains(t, def.Description, "witty, humorous, and lighthearted")
	assert.Contains(t, def.Instruction, "**Role & Persona**")
}

func TestBuild(t *testing.T) {
	registry := tools.DefaultRegistry()

	t.Run("persona tools", func(t *testing.T) {
		agent, err := Build(NewSlackBotAgent("m"), registry, nil)
		require.NoError(t, err)
		assert.Empty(t, agent.Tools)
		assert.Equal(t, []string{"google_search"}, agent.Builtins)
	})

	t.Run("override", func(t *testing.T) {
		agent, err := Build(NewComedianAgent("m"), registry, []string{"get_current_datetime"})
		require.NoError(t, err)
		require.Len(t, agent.Tools, 1)
		assert.Equal(t, "get_current_datetime", agent.Tools[0].Name())
		assert.Equal(t, []string{"get_current_datetime"}, agent.Definition.Tools)
	})

	t.Run("unknown tool", func(t *testing.T) {
		_, err := Build(NewSlackBotAgent("m"), registry, []string{"nope"})
		assert.Error(t, err)
	})
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"comedian_agent", "slack_bot_agent"}, Names())
}
