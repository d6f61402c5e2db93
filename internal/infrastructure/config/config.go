package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultModelName is the backend model used when none is configured.
const DefaultModelName = "gemini-2.5-flash"

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Slack   SlackConfig   `yaml:"slack"`
	Agent   AgentConfig   `yaml:"agent"`
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig holds persistence storage settings.
type StorageConfig struct {
	Type   string       `yaml:"type"` // "memory", "sqlite", or "mysql"
	SQLite SQLiteConfig `yaml:"sqlite"`
	MySQL  MySQLConfig  `yaml:"mysql"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path"` // Database file path, use ":memory:" for in-memory
}

// MySQLConfig holds MySQL-specific settings.
type MySQLConfig struct {
	Primary   MySQLInstanceConfig `yaml:"primary"`
	Replica   MySQLReplicaConfig  `yaml:"replica"`
	Pool      MySQLPoolConfig     `yaml:"pool"`
	Timeout   time.Duration       `yaml:"timeout"`
	ParseTime bool                `yaml:"parse_time"`
	Charset   string              `yaml:"charset"`
}

// MySQLInstanceConfig holds MySQL instance connection settings.
type MySQLInstanceConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MySQLReplicaConfig holds optional read replica settings.
type MySQLReplicaConfig struct {
	Enabled             bool `yaml:"enabled"`
	MySQLInstanceConfig `yaml:",inline"`
}

// MySQLPoolConfig holds MySQL connection pool settings.
type MySQLPoolConfig struct {
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// SlackConfig holds Slack integration settings.
type SlackConfig struct {
	BotToken      string `yaml:"bot_token"`
	SigningSecret string `yaml:"signing_secret"`

	// AllowedWorkspace restricts callbacks to one team_id when set.
	AllowedWorkspace string `yaml:"allowed_workspace"`

	// APIURL overrides the Slack Web API base URL (tests, proxies).
	APIURL string `yaml:"api_url"`

	FileFetchTimeout time.Duration `yaml:"file_fetch_timeout"`
	PostTimeout      time.Duration `yaml:"post_timeout"`

	// DedupTTL is how long delivered event IDs are remembered.
	DedupTTL time.Duration `yaml:"dedup_ttl"`

	SocketMode SocketModeConfig `yaml:"socket_mode"`
}

// SocketModeConfig holds Slack Socket Mode settings.
type SocketModeConfig struct {
	Enabled  bool   `yaml:"enabled"`
	AppToken string `yaml:"app_token"`
	Debug    bool   `yaml:"debug"`
}

// AgentConfig holds conversational backend settings.
type AgentConfig struct {
	// AppName namespaces sessions.
	AppName string `yaml:"app_name"`

	// Persona selects the agent definition answering Slack mentions.
	Persona string `yaml:"persona"`

	Model    string `yaml:"model"`
	Backend  string `yaml:"backend"` // "gemini" or "vertex"
	APIKey   string `yaml:"api_key"`
	Project  string `yaml:"project"`
	Location string `yaml:"location"`

	// Tools replaces the persona's tool list when non-empty.
	Tools []string `yaml:"tools"`

	RunTimeout   time.Duration `yaml:"run_timeout"`
	MaxSteps     int           `yaml:"max_steps"`
	HistoryLimit int           `yaml:"history_limit"`
	SessionTTL   time.Duration `yaml:"session_ttl"`

	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// CircuitBreakerConfig guards the backend against repeated failures.
type CircuitBreakerConfig struct {
	MaxFailures  int           `yaml:"max_failures"`
	ResetTimeout time.Duration `yaml:"reset_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads configuration from file and environment, applies defaults and
// validates the result, Slack credentials included.
func Load(path string) (*Config, error) {
	return load(path, true)
}

// LoadAgentOnly is Load without the Slack requirements, for running agents
// from the command line.
func LoadAgentOnly(path string) (*Config, error) {
	return load(path, false)
}

func load(path string, requireSlack bool) (*Config, error) {
	cfg := &Config{}

	// Load from file if exists
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			// Expand environment variables in YAML
			expandedData := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	cfg.overrideFromEnv()
	cfg.applyDefaults()

	if err := cfg.validate(requireSlack); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// overrideFromEnv overrides config values from environment variables.
func (c *Config) overrideFromEnv() {
	// Server
	for _, key := range []string{"PORT", "SERVER_PORT"} {
		if v := os.Getenv(key); v != "" {
			if port, err := strconv.Atoi(v); err == nil {
				c.Server.Port = port
			}
		}
	}

	// Slack
	if v := os.Getenv("SLACK_BOT_TOKEN"); v != "" {
		c.Slack.BotToken = v
	}
	if v := os.Getenv("SLACK_SIGNING_SECRET"); v != "" {
		c.Slack.SigningSecret = v
	}
	if v := os.Getenv("ALLOWED_SLACK_WORKSPACE"); v != "" {
		c.Slack.AllowedWorkspace = v
	}
	if v := os.Getenv("SLACK_API_URL"); v != "" {
		c.Slack.APIURL = v
	}
	if v := os.Getenv("SLACK_SOCKET_MODE_ENABLED"); v != "" {
		c.Slack.SocketMode.Enabled = strings.ToLower(v) == "true"
	}
	if v := os.Getenv("SLACK_APP_TOKEN"); v != "" {
		c.Slack.SocketMode.AppToken = v
	}

	// Agent
	if v := os.Getenv("APP_NAME"); v != "" {
		c.Agent.AppName = v
	}
	if v := os.Getenv("MODEL_NAME"); v != "" {
		c.Agent.Model = v
	}
	if v := os.Getenv("AGENT_PERSONA"); v != "" {
		c.Agent.Persona = v
	}
	if v := os.Getenv("AGENT_RUN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Agent.RunTimeout = d
		}
	}
	for _, key := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if v := os.Getenv(key); v != "" {
			c.Agent.APIKey = v
		}
	}
	if v := os.Getenv("GOOGLE_GENAI_USE_VERTEXAI"); v != "" {
		if use, err := strconv.ParseBool(v); err == nil && use {
			c.Agent.Backend = "vertex"
		}
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		c.Agent.Project = v
	}
	if v := os.Getenv("GOOGLE_CLOUD_LOCATION"); v != "" {
		c.Agent.Location = v
	}

	// Logging
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}

	// Storage
	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv("SQLITE_DATABASE_PATH"); v != "" {
		c.Storage.SQLite.Path = v
	}

	// MySQL
	if v := os.Getenv("MYSQL_HOST"); v != "" {
		c.Storage.MySQL.Primary.Host = v
	}
	if v := os.Getenv("MYSQL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Storage.MySQL.Primary.Port = port
		}
	}
	if v := os.Getenv("MYSQL_DATABASE"); v != "" {
		c.Storage.MySQL.Primary.Database = v
	}
	if v := os.Getenv("MYSQL_USERNAME"); v != "" {
		c.Storage.MySQL.Primary.Username = v
	}
	if v := os.Getenv("MYSQL_PASSWORD"); v != "" {
		c.Storage.MySQL.Primary.Password = v
	}
	if v := os.Getenv("MYSQL_MAX_OPEN_CONNS"); v != "" {
		if conns, err := strconv.Atoi(v); err == nil {
			c.Storage.MySQL.Pool.MaxOpenConns = conns
		}
	}
	if v := os.Getenv("MYSQL_MAX_IDLE_CONNS"); v != "" {
		if conns, err := strconv.Atoi(v); err == nil {
			c.Storage.MySQL.Pool.MaxIdleConns = conns
		}
	}
}

// applyDefaults sets default values for unset config options.
func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 5 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 5 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}

	// Slack defaults
	if c.Slack.FileFetchTimeout == 0 {
		c.Slack.FileFetchTimeout = 30 * time.Second
	}
	if c.Slack.PostTimeout == 0 {
		c.Slack.PostTimeout = 15 * time.Second
	}
	if c.Slack.DedupTTL == 0 {
		c.Slack.DedupTTL = 1 * time.Hour
	}

	// Agent defaults
	if c.Agent.AppName == "" {
		c.Agent.AppName = "slack-bot"
	}
	if c.Agent.Persona == "" {
		c.Agent.Persona = "slack_bot_agent"
	}
	if c.Agent.Model == "" {
		c.Agent.Model = DefaultModelName
	}
	if c.Agent.Backend == "" {
		c.Agent.Backend = "gemini"
	}
	if c.Agent.RunTimeout == 0 {
		c.Agent.RunTimeout = 2 * time.Minute
	}
	if c.Agent.MaxSteps == 0 {
		c.Agent.MaxSteps = 8
	}
	if c.Agent.HistoryLimit == 0 {
		c.Agent.HistoryLimit = 100
	}
	if c.Agent.SessionTTL == 0 {
		c.Agent.SessionTTL = 7 * 24 * time.Hour
	}
	if c.Agent.CircuitBreaker.MaxFailures == 0 {
		c.Agent.CircuitBreaker.MaxFailures = 5
	}
	if c.Agent.CircuitBreaker.ResetTimeout == 0 {
		c.Agent.CircuitBreaker.ResetTimeout = 30 * time.Second
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	// Storage defaults
	if c.Storage.Type == "" {
		c.Storage.Type = "memory"
	}
	if c.Storage.SQLite.Path == "" {
		c.Storage.SQLite.Path = "./data/slack-agent-bridge.db"
	}

	// MySQL defaults
	if c.Storage.MySQL.Pool.MaxOpenConns == 0 {
		c.Storage.MySQL.Pool.MaxOpenConns = 25
	}
	if c.Storage.MySQL.Pool.MaxIdleConns == 0 {
		c.Storage.MySQL.Pool.MaxIdleConns = 5
	}
	if c.Storage.MySQL.Pool.ConnMaxLifetime == 0 {
		c.Storage.MySQL.Pool.ConnMaxLifetime = 3 * time.Minute
	}
	if c.Storage.MySQL.Pool.ConnMaxIdleTime == 0 {
		c.Storage.MySQL.Pool.ConnMaxIdleTime = 1 * time.Minute
	}
	if c.Storage.MySQL.Timeout == 0 {
		c.Storage.MySQL.Timeout = 5 * time.Second
	}
	if !c.Storage.MySQL.ParseTime {
		c.Storage.MySQL.ParseTime = true
	}
	if c.Storage.MySQL.Charset == "" {
		c.Storage.MySQL.Charset = "utf8mb4"
	}
	if c.Storage.MySQL.Primary.Port == 0 {
		c.Storage.MySQL.Primary.Port = 3306
	}
	if c.Storage.MySQL.Replica.Enabled && c.Storage.MySQL.Replica.Port == 0 {
		c.Storage.MySQL.Replica.Port = 3306
	}
}

// IsSocketModeEnabled returns true if events arrive over Socket Mode.
func (c *Config) IsSocketModeEnabled() bool {
	return c.Slack.SocketMode.Enabled
}

// IsWorkspaceAllowed reports whether callbacks from teamID may be processed.
func (c *Config) IsWorkspaceAllowed(teamID string) bool {
	return c.Slack.AllowedWorkspace == "" || c.Slack.AllowedWorkspace == teamID
}
