package mysql

import (
	"context"
	"fmt"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/repository"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/config"
)

// Repositories holds all MySQL repository implementations.
type Repositories struct {
	Session        repository.SessionRepository
	ProcessedEvent repository.ProcessedEventRepository
}

// NewRepositories creates all MySQL repository implementations.
// It establishes a database connection, runs migrations, and returns all repositories.
func NewRepositories(ctx context.Context, cfg *config.MySQLConfig) (*Repositories, *DB, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("mysql config is required")
	}

	db, err := NewDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating database connection: %w", err)
	}

	if err := NewMigrator(db.Primary()).Up(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	repos := &Repositories{
		Session:        NewSessionRepository(db),
		ProcessedEvent: NewProcessedEventRepository(db),
	}

	return repos, db, nil
}
