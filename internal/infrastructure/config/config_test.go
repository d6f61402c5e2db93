package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
slack:
  bot_token: xoxb-test
  signing_secret: secret
agent:
  api_key: key
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DefaultModelName, cfg.Agent.Model)
	assert.Equal(t, "slack-bot", cfg.Agent.AppName)
	assert.Equal(t, "slack_bot_agent", cfg.Agent.Persona)
	assert.Equal(t, "gemini", cfg.Agent.Backend)
	assert.Equal(t, 2*time.Minute, cfg.Agent.RunTimeout)
	assert.Equal(t, 30*time.Second, cfg.Slack.FileFetchTimeout)
	assert.Equal(t, 15*time.Second, cfg.Slack.PostTimeout)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Empty(t, cfg.Slack.AllowedWorkspace)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MODEL_NAME", "gemini-2.5-pro")
	t.Setenv("ALLOWED_SLACK_WORKSPACE", "T123")
	t.Setenv("APP_NAME", "comedy-bot")
	t.Setenv("AGENT_PERSONA", "comedian_agent")
	t.Setenv("AGENT_RUN_TIMEOUT", "45s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "gemini-2.5-pro", cfg.Agent.Model)
	assert.Equal(t, "T123", cfg.Slack.AllowedWorkspace)
	assert.Equal(t, "comedy-bot", cfg.Agent.AppName)
	assert.Equal(t, "comedian_agent", cfg.Agent.Persona)
	assert.Equal(t, 45*time.Second, cfg.Agent.RunTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_ExpandsEnvInFile(t *testing.T) {
	t.Setenv("TEST_BOT_TOKEN", "xoxb-from-env")

	cfg, err := Load(writeConfig(t, `
slack:
  bot_token: ${TEST_BOT_TOKEN}
  signing_secret: secret
agent:
  api_key: key
`))
	require.NoError(t, err)
	assert.Equal(t, "xoxb-from-env", cfg.Slack.BotToken)
}

func TestLoad_MissingSlackCredentials(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "")
	t.Setenv("SLACK_SIGNING_SECRET", "")

	_, err := Load(writeConfig(t, "agent:\n  api_key: key\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slack.bot_token cannot be empty")
	assert.Contains(t, err.Error(), "slack.signing_secret cannot be empty")
}

func TestLoad_SocketModeNeedsAppTokenNotSecret(t *testing.T) {
	_, err := Load(writeConfig(t, `
slack:
  bot_token: xoxb-test
  socket_mode:
    enabled: true
agent:
  api_key: key
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slack.socket_mode.app_token")
	assert.NotContains(t, err.Error(), "slack.signing_secret")
}

func TestLoadAgentOnly_SkipsSlack(t *testing.T) {
	cfg, err := LoadAgentOnly(writeConfig(t, "agent:\n  api_key: key\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Slack.BotToken)
}

func TestLoad_VertexNeedsProjectAndLocation(t *testing.T) {
	t.Setenv("GOOGLE_GENAI_USE_VERTEXAI", "true")

	_, err := Load(writeConfig(t, minimalYAML))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent.project")
	assert.Contains(t, err.Error(), "agent.location")
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-env")
	t.Setenv("SLACK_SIGNING_SECRET", "secret")
	t.Setenv("GOOGLE_API_KEY", "key")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "xoxb-env", cfg.Slack.BotToken)
}

func TestIsWorkspaceAllowed(t *testing.T) {
	cfg := &Config{}
	assert.True(t, cfg.IsWorkspaceAllowed("T1"))

	cfg.Slack.AllowedWorkspace = "T1"
	assert.True(t, cfg.IsWorkspaceAllowed("T1"))
	assert.False(t, cfg.IsWorkspaceAllowed("T2"))
	assert.False(t, cfg.IsWorkspaceAllowed(""))
}

func TestValidateHelpers(t *testing.T) {
	assert.NoError(t, ValidateLogLevel("warn"))
	assert.Error(t, ValidateLogLevel("verbose"))
	assert.NoError(t, ValidateLogFormat("text"))
	assert.Error(t, ValidateLogFormat("xml"))
	assert.Error(t, ValidatePort(0, "p"))
	assert.NoError(t, ValidateStorageType("sqlite"))
	assert.Error(t, ValidateStorageType("redis"))
	assert.Error(t, ValidateBackend("openai"))
}

func TestConfigManager_TryReload(t *testing.T) {
	path := writeConfig(t, minimalYAML)
	initial, err := Load(path)
	require.NoError(t, err)

	m := NewConfigManager(path, initial, nil)
	var calls int
	var lastLevel string
	m.OnReload(func(_, updated *Config) {
		calls++
		lastLevel = updated.Logging.Level
	})

	t.Run("unchanged is a no-op", func(t *testing.T) {
		require.NoError(t, m.TryReload())
		assert.Equal(t, 0, calls)
	})

	t.Run("reloadable keys apply", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte(minimalYAML+"logging:\n  level: debug\n"), 0o600))
		require.NoError(t, m.TryReload())
		assert.Equal(t, 1, calls)
		assert.Equal(t, "debug", lastLevel)
		assert.Equal(t, "debug", m.Get().Logging.Level)
	})

	t.Run("static keys require restart", func(t *testing.T) {
		body := minimalYAML + "logging:\n  level: debug\nserver:\n  port: 9999\n"
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		err := m.TryReload()
		assert.True(t, errors.Is(err, ErrRequiresRestart))
		assert.Equal(t, 8080, m.Get().Server.Port)
	})

	t.Run("invalid file keeps current config", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte(minimalYAML+"logging:\n  level: loud\n"), 0o600))
		require.Error(t, m.TryReload())
		assert.Equal(t, "debug", m.Get().Logging.Level)
	})
}

func TestDiffKeys(t *testing.T) {
	a := &Config{}
	a.applyDefaults()
	b := *a
	b.Agent.RunTimeout = time.Minute
	b.Agent.Persona = "comedian_agent"

	assert.Equal(t, []string{"agent.persona", "agent.run_timeout"}, DiffKeys(a, &b))
	assert.Empty(t, DiffKeys(a, a))
}
