package app

import (
	"context"
	"fmt"
	"io"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/adapter/handler"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/config"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/persistence/memory"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/persistence/mysql"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/persistence/sqlite"
)

func (app *Application) initializeStorage(ctx context.Context) error {
	var closer io.Closer
	var pinger handler.ReadinessChecker

	switch app.config.Storage.Type {
	case "mysql":
		repos, db, err := mysql.NewRepositories(ctx, &app.config.Storage.MySQL)
		if err != nil {
			return fmt.Errorf("mysql init: %w", err)
		}
		app.sessionRepo = repos.Session
		app.processedRepo = repos.ProcessedEvent
		pinger = db
		closer = db

		app.logger.Get().Info("MySQL storage initialized",
			"host", app.config.Storage.MySQL.Primary.Host,
			"database", app.config.Storage.MySQL.Primary.Database,
			"replica", app.config.Storage.MySQL.Replica.Enabled,
		)

	case "sqlite":
		db, err := openSQLite(ctx, app.config.Storage.SQLite)
		if err != nil {
			return err
		}

		repos := sqlite.NewRepositories(db.DB)
		app.sessionRepo = repos.Session
		app.processedRepo = repos.ProcessedEvent
		pinger = db
		closer = db

		app.logger.Get().Info("SQLite storage initialized",
			"path", app.config.Storage.SQLite.Path,
		)

	case "memory", "":
		app.sessionRepo = memory.NewSessionRepository()
		app.processedRepo = memory.NewProcessedEventRepository()

		app.logger.Get().Info("in-memory storage initialized")

	default:
		return fmt.Errorf("unknown storage type: %s", app.config.Storage.Type)
	}

	if pinger != nil {
		app.readiness["database"] = pinger
	}
	app.dbCloser = closer
	return nil
}

func openSQLite(ctx context.Context, cfg config.SQLiteConfig) (*sqlite.DB, error) {
	db, err := sqlite.NewDB(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite init: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite migration: %w", err)
	}
	return db, nil
}
