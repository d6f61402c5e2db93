package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/logger"
)

// ErrRequiresRestart is returned by TryReload when the new file changes keys
// that cannot be applied to a running process.
var ErrRequiresRestart = errors.New("configuration change requires restart")

// ReloadCallback is invoked with the previous and the newly applied config.
type ReloadCallback func(old, updated *Config)

// ConfigManager owns the live configuration and reloads it from disk, either
// on demand or when the file changes.
type ConfigManager struct {
	path   string
	logger logger.Logger
	viper  *viper.Viper

	mu        sync.RWMutex
	current   *Config
	callbacks []ReloadCallback

	reloadMu sync.Mutex
}

// NewConfigManager creates a manager seeded with an already loaded config.
func NewConfigManager(path string, initial *Config, log logger.Logger) *ConfigManager {
	if log == nil {
		log = logger.Nop{}
	}
	return &ConfigManager{
		path:    path,
		logger:  log,
		current: initial,
	}
}

// Get returns the current configuration. Callers must not modify it.
func (m *ConfigManager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// OnReload registers a callback run after every applied reload.
func (m *ConfigManager) OnReload(cb ReloadCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, cb)
}

// Watch starts watching the config file for changes.
// It is a no-op when no readable config file is configured.
func (m *ConfigManager) Watch() error {
	if m.path == "" {
		return nil
	}

	if _, err := os.Stat(m.path); os.IsNotExist(err) {
		m.logger.Info("config file not found, hot reload disabled", "path", m.path)
		return nil
	}

	v := viper.New()
	v.SetConfigFile(m.path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config for watch: %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		m.logger.Info("config file changed", "path", e.Name, "op", e.Op.String())
		if err := m.TryReload(); err != nil && !errors.Is(err, ErrRequiresRestart) {
			m.logger.Error("config reload failed", "error", err)
		}
	})
	v.WatchConfig()
	m.viper = v

	m.logger.Info("watching config file", "path", m.path)
	return nil
}

// TryReload reloads the file and applies reloadable changes.
// Returns ErrRequiresRestart when static keys changed; reloadable keys from the
// same file are still applied in that case.
func (m *ConfigManager) TryReload() error {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()

	updated, err := Load(m.path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	old := m.current
	changed := DiffKeys(old, updated)
	if len(changed) == 0 {
		m.mu.Unlock()
		m.logger.Debug("config unchanged")
		return nil
	}

	var static []string
	for _, key := range changed {
		if !IsReloadable(key) {
			static = append(static, key)
		}
	}

	next := *old
	next.Logging = updated.Logging
	next.Agent.RunTimeout = updated.Agent.RunTimeout
	m.current = &next
	callbacks := append([]ReloadCallback(nil), m.callbacks...)
	m.mu.Unlock()

	for _, cb := range callbacks {
		cb(old, &next)
	}

	if len(static) > 0 {
		for _, key := range static {
			m.logger.Warn("config change ignored until restart", "key", key, "reason", getRestartReason(key))
		}
		return ErrRequiresRestart
	}

	m.logger.Info("configuration reloaded", "keys", changed)
	return nil
}

// DiffKeys returns the sorted dotted keys whose values differ between a and b.
// Keys are reported at the granularity used by the reload whitelist.
func DiffKeys(a, b *Config) []string {
	var keys []string
	add := func(key string, x, y any) {
		if !reflect.DeepEqual(x, y) {
			keys = append(keys, key)
		}
	}

	add("server.port", a.Server.Port, b.Server.Port)
	add("server.timeouts", []any{a.Server.ReadTimeout, a.Server.WriteTimeout, a.Server.RequestTimeout, a.Server.ShutdownTimeout},
		[]any{b.Server.ReadTimeout, b.Server.WriteTimeout, b.Server.RequestTimeout, b.Server.ShutdownTimeout})

	add("storage.type", a.Storage.Type, b.Storage.Type)
	add("storage.sqlite.path", a.Storage.SQLite.Path, b.Storage.SQLite.Path)
	add("storage.mysql", a.Storage.MySQL, b.Storage.MySQL)

	add("slack.bot_token", a.Slack.BotToken, b.Slack.BotToken)
	add("slack.signing_secret", a.Slack.SigningSecret, b.Slack.SigningSecret)
	add("slack.allowed_workspace", a.Slack.AllowedWorkspace, b.Slack.AllowedWorkspace)
	add("slack.api_url", a.Slack.APIURL, b.Slack.APIURL)
	add("slack.file_fetch_timeout", a.Slack.FileFetchTimeout, b.Slack.FileFetchTimeout)
	add("slack.post_timeout", a.Slack.PostTimeout, b.Slack.PostTimeout)
	add("slack.dedup_ttl", a.Slack.DedupTTL, b.Slack.DedupTTL)
	add("slack.socket_mode.enabled", a.Slack.SocketMode.Enabled, b.Slack.SocketMode.Enabled)
	add("slack.socket_mode.app_token", a.Slack.SocketMode.AppToken, b.Slack.SocketMode.AppToken)
	add("slack.socket_mode.debug", a.Slack.SocketMode.Debug, b.Slack.SocketMode.Debug)

	add("agent.app_name", a.Agent.AppName, b.Agent.AppName)
	add("agent.persona", a.Agent.Persona, b.Agent.Persona)
	add("agent.model", a.Agent.Model, b.Agent.Model)
	add("agent.backend", a.Agent.Backend, b.Agent.Backend)
	add("agent.api_key", a.Agent.APIKey, b.Agent.APIKey)
	add("agent.project", a.Agent.Project, b.Agent.Project)
	add("agent.location", a.Agent.Location, b.Agent.Location)
	add("agent.tools", a.Agent.Tools, b.Agent.Tools)
	add("agent.run_timeout", a.Agent.RunTimeout, b.Agent.RunTimeout)
	add("agent.max_steps", a.Agent.MaxSteps, b.Agent.MaxSteps)
	add("agent.history_limit", a.Agent.HistoryLimit, b.Agent.HistoryLimit)
	add("agent.session_ttl", a.Agent.SessionTTL, b.Agent.SessionTTL)
	add("agent.circuit_breaker", a.Agent.CircuitBreaker, b.Agent.CircuitBreaker)

	add("logging.level", a.Logging.Level, b.Logging.Level)
	add("logging.format", a.Logging.Format, b.Logging.Format)

	sort.Strings(keys)
	return keys
}
