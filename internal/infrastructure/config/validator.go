package config

import (
	"fmt"
	"strings"
	"time"
)

// reloadableKeys defines the whitelist of configuration keys that can be hot-reloaded.
var reloadableKeys = map[string]bool{
	"logging.level":     true,
	"logging.format":    true,
	"agent.run_timeout": true,
}

// staticKeys defines configuration keys that require application restart.
var staticKeys = map[string]string{
	"server.port":               "HTTP listener restart required",
	"storage.type":              "Storage backend initialization required",
	"storage.sqlite.path":       "Database connection recreation required",
	"storage.mysql":             "Database connection pool recreation required",
	"slack.bot_token":           "Slack client recreation required",
	"slack.signing_secret":      "Signature verifier recreation required",
	"slack.allowed_workspace":   "Events gateway recreation required",
	"slack.socket_mode.enabled": "Ingress mode switch required",
	"agent.persona":             "Agent runner recreation required",
	"agent.model":               "Model client recreation required",
	"agent.api_key":             "Model client recreation required",
}

// IsReloadable returns true if the given config key can be hot-reloaded.
func IsReloadable(key string) bool {
	return reloadableKeys[key]
}

// getRestartReason returns the reason why a static config key requires restart.
func getRestartReason(key string) string {
	if reason, ok := staticKeys[key]; ok {
		return reason
	}
	return "unknown configuration requires restart"
}

// ValidateLogLevel checks if the log level is valid.
func ValidateLogLevel(level string) error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", level)
	}
	return nil
}

// ValidateLogFormat checks if the log format is valid.
func ValidateLogFormat(format string) error {
	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[format] {
		return fmt.Errorf("invalid log format: %s (must be json or text)", format)
	}
	return nil
}

// ValidateNonEmpty checks if a string is non-empty.
func ValidateNonEmpty(value string, fieldName string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

// ValidateDuration checks if a duration is greater than zero.
func ValidateDuration(duration time.Duration, fieldName string) error {
	if duration <= 0 {
		return fmt.Errorf("%s must be greater than 0", fieldName)
	}
	return nil
}

// ValidatePort checks if a port number is valid.
func ValidatePort(port int, fieldName string) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", fieldName, port)
	}
	return nil
}

// ValidateStorageType checks if the storage type is valid.
func ValidateStorageType(storageType string) error {
	validTypes := map[string]bool{
		"memory": true,
		"sqlite": true,
		"mysql":  true,
	}
	if !validTypes[storageType] {
		return fmt.Errorf("invalid storage type: %s (must be memory, sqlite, or mysql)", storageType)
	}
	return nil
}

// ValidateBackend checks if the model backend is valid.
func ValidateBackend(backend string) error {
	if backend != "gemini" && backend != "vertex" {
		return fmt.Errorf("invalid agent backend: %s (must be gemini or vertex)", backend)
	}
	return nil
}

// Validate performs comprehensive validation on the configuration.
// Returns an error if any validation fails.
func (c *Config) Validate() error {
	return c.validate(true)
}

func (c *Config) validate(requireSlack bool) error {
	var errs []string
	check := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	// Server validation
	check(ValidatePort(c.Server.Port, "server.port"))
	check(ValidateDuration(c.Server.ReadTimeout, "server.read_timeout"))
	check(ValidateDuration(c.Server.WriteTimeout, "server.write_timeout"))
	check(ValidateDuration(c.Server.RequestTimeout, "server.request_timeout"))
	check(ValidateDuration(c.Server.ShutdownTimeout, "server.shutdown_timeout"))

	// Logical constraint: RequestTimeout should be less than WriteTimeout
	if c.Server.RequestTimeout >= c.Server.WriteTimeout {
		errs = append(errs, "server.request_timeout must be less than server.write_timeout")
	}

	// Storage validation
	check(ValidateStorageType(c.Storage.Type))

	if c.Storage.Type == "sqlite" {
		check(ValidateNonEmpty(c.Storage.SQLite.Path, "storage.sqlite.path"))
	}

	if c.Storage.Type == "mysql" {
		check(ValidateNonEmpty(c.Storage.MySQL.Primary.Host, "storage.mysql.primary.host"))
		check(ValidatePort(c.Storage.MySQL.Primary.Port, "storage.mysql.primary.port"))
		check(ValidateNonEmpty(c.Storage.MySQL.Primary.Database, "storage.mysql.primary.database"))
		check(ValidateNonEmpty(c.Storage.MySQL.Primary.Username, "storage.mysql.primary.username"))
		check(ValidateNonEmpty(c.Storage.MySQL.Primary.Password, "storage.mysql.primary.password"))

		if c.Storage.MySQL.Replica.Enabled {
			check(ValidateNonEmpty(c.Storage.MySQL.Replica.Host, "storage.mysql.replica.host"))
			check(ValidatePort(c.Storage.MySQL.Replica.Port, "storage.mysql.replica.port"))
			check(ValidateNonEmpty(c.Storage.MySQL.Replica.Database, "storage.mysql.replica.database"))
			check(ValidateNonEmpty(c.Storage.MySQL.Replica.Username, "storage.mysql.replica.username"))
		}

		if c.Storage.MySQL.Pool.MaxOpenConns < 1 {
			errs = append(errs, "storage.mysql.pool.max_open_conns must be at least 1")
		}
		if c.Storage.MySQL.Pool.MaxIdleConns < 0 {
			errs = append(errs, "storage.mysql.pool.max_idle_conns cannot be negative")
		}
		if c.Storage.MySQL.Pool.MaxIdleConns > c.Storage.MySQL.Pool.MaxOpenConns {
			errs = append(errs, "storage.mysql.pool.max_idle_conns cannot exceed max_open_conns")
		}
	}

	// Slack validation
	if requireSlack {
		check(ValidateNonEmpty(c.Slack.BotToken, "slack.bot_token"))
		if c.Slack.SocketMode.Enabled {
			check(ValidateNonEmpty(c.Slack.SocketMode.AppToken, "slack.socket_mode.app_token"))
		} else {
			// Only webhook deliveries are signed.
			check(ValidateNonEmpty(c.Slack.SigningSecret, "slack.signing_secret"))
		}
	}
	check(ValidateDuration(c.Slack.FileFetchTimeout, "slack.file_fetch_timeout"))
	check(ValidateDuration(c.Slack.PostTimeout, "slack.post_timeout"))
	check(ValidateDuration(c.Slack.DedupTTL, "slack.dedup_ttl"))

	// Agent validation
	check(ValidateNonEmpty(c.Agent.AppName, "agent.app_name"))
	check(ValidateNonEmpty(c.Agent.Persona, "agent.persona"))
	check(ValidateNonEmpty(c.Agent.Model, "agent.model"))
	check(ValidateBackend(c.Agent.Backend))
	switch c.Agent.Backend {
	case "gemini":
		check(ValidateNonEmpty(c.Agent.APIKey, "agent.api_key"))
	case "vertex":
		check(ValidateNonEmpty(c.Agent.Project, "agent.project"))
		check(ValidateNonEmpty(c.Agent.Location, "agent.location"))
	}
	check(ValidateDuration(c.Agent.RunTimeout, "agent.run_timeout"))
	check(ValidateDuration(c.Agent.SessionTTL, "agent.session_ttl"))
	check(ValidateDuration(c.Agent.CircuitBreaker.ResetTimeout, "agent.circuit_breaker.reset_timeout"))
	if c.Agent.MaxSteps < 1 {
		errs = append(errs, "agent.max_steps must be at least 1")
	}
	if c.Agent.CircuitBreaker.MaxFailures < 1 {
		errs = append(errs, "agent.circuit_breaker.max_failures must be at least 1")
	}

	// Logging validation
	check(ValidateLogLevel(c.Logging.Level))
	check(ValidateLogFormat(c.Logging.Format))

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", joinErrors(errs))
	}

	return nil
}

// joinErrors joins multiple error messages with newlines and bullets.
func joinErrors(errs []string) string {
	return strings.Join(errs, "\n  - ")
}
