package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/config"
)

// DB wraps a MySQL database connection with health checking.
type DB struct {
	primary *sql.DB
	replica *sql.DB
	config  *config.MySQLConfig
}

// NewDB creates a new MySQL database connection with connection pooling.
// It establishes connections to both primary and optional replica instances.
func NewDB(cfg *config.MySQLConfig) (*DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mysql config is required")
	}

	primary, err := openPool(cfg, cfg.Primary)
	if err != nil {
		return nil, fmt.Errorf("primary: %w", err)
	}

	db := &DB{
		primary: primary,
		config:  cfg,
	}

	if cfg.Replica.Enabled {
		replica, err := openPool(cfg, cfg.Replica.MySQLInstanceConfig)
		if err != nil {
			primary.Close()
			return nil, fmt.Errorf("replica: %w", err)
		}
		db.replica = replica
	}

	return db, nil
}

// openPool opens and pings one instance using the shared pool settings.
func openPool(cfg *config.MySQLConfig, inst config.MySQLInstanceConfig) (*sql.DB, error) {
	conn, err := sql.Open("mysql", buildDSN(inst, cfg.Charset, cfg.ParseTime, cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("opening connection: %w", err)
	}

	conn.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.Pool.ConnMaxLifetime)
	conn.SetConnMaxIdleTime(cfg.Pool.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return conn, nil
}

// buildDSN constructs a MySQL DSN string for one instance.
// Migrations are multi-statement files, so multiStatements is always enabled.
func buildDSN(inst config.MySQLInstanceConfig, charset string, parseTime bool, timeout time.Duration) string {
	c := mysql.NewConfig()
	c.User = inst.Username
	c.Passwd = inst.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(inst.Host, strconv.Itoa(inst.Port))
	c.DBName = inst.Database
	c.ParseTime = parseTime
	c.Loc = time.UTC
	c.Timeout = timeout
	c.MultiStatements = true
	if charset != "" {
		c.Params = map[string]string{"charset": charset}
	}
	return c.FormatDSN()
}

// Primary returns the primary database connection for writes and consistent reads.
func (db *DB) Primary() *sql.DB {
	return db.primary
}

// Replica returns the replica database connection for reads, or primary if no replica is configured.
func (db *DB) Replica() *sql.DB {
	if db.replica != nil {
		return db.replica
	}
	return db.primary
}

// Ping checks connectivity to the database.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.primary.PingContext(ctx); err != nil {
		return fmt.Errorf("primary ping failed: %w", err)
	}

	if db.replica != nil {
		if err := db.replica.PingContext(ctx); err != nil {
			return fmt.Errorf("replica ping failed: %w", err)
		}
	}

	return nil
}

// Close closes the database connections.
func (db *DB) Close() error {
	var primaryErr, replicaErr error

	if db.primary != nil {
		primaryErr = db.primary.Close()
	}
	if db.replica != nil {
		replicaErr = db.replica.Close()
	}

	if primaryErr != nil {
		return fmt.Errorf("closing primary: %w", primaryErr)
	}
	if replicaErr != nil {
		return fmt.Errorf("closing replica: %w", replicaErr)
	}
	return nil
}
