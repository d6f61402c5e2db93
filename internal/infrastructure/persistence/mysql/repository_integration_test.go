package mysql

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/repository"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/config"
)

// setupTestRepos connects to the MySQL named by MYSQL_TEST_HOST and resets the schema.
func setupTestRepos(t *testing.T) (*Repositories, *DB) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	host := os.Getenv("MYSQL_TEST_HOST")
	if host == "" {
		t.Skip("Skipping test: MYSQL_TEST_HOST not set")
	}

	cfg := &config.MySQLConfig{
		Primary: config.MySQLInstanceConfig{
			Host:     host,
			Port:     3306,
			Database: "test_db",
			Username: "root",
			Password: os.Getenv("MYSQL_TEST_PASSWORD"),
		},
		Pool: config.MySQLPoolConfig{
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: time.Minute,
			ConnMaxIdleTime: time.Minute,
		},
		Timeout:   5 * time.Second,
		ParseTime: true,
		Charset:   "utf8mb4",
	}

	db, err := NewDB(cfg)
	if err != nil {
		t.Skipf("Skipping test: MySQL not available: %v", err)
	}
	for _, table := range []string{"session_events", "sessions", "processed_events", "schema_migrations"} {
		_, _ = db.Primary().Exec("DROP TABLE IF EXISTS " + table)
	}
	db.Close()

	repos, db, err := NewRepositories(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repos, db
}

func TestIntegration_SessionLifecycle(t *testing.T) {
	repos, _ := setupTestRepos(t)
	ctx := context.Background()

	session := entity.NewSession("slack-bot", "U1", "1700000000.000100")
	require.NoError(t, repos.Session.Create(ctx, session))
	assert.ErrorIs(t, repos.Session.Create(ctx, session), repository.ErrAlreadyExists)

	for _, text := range []string{"hi", "tell me a joke", "another"} {
		ev := entity.NewSessionEvent(session.Key(), "user", entity.NewUserContent(entity.TextPart(text)), false)
		require.NoError(t, repos.Session.AppendEvent(ctx, ev))
	}

	recent, err := repos.Session.ListEvents(ctx, session.Key(), 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "tell me a joke", recent[0].Content.FirstText())

	orphan := entity.NewSessionEvent(entity.SessionKey{AppName: "x", UserID: "y", ID: "z"}, "user", nil, false)
	assert.ErrorIs(t, repos.Session.AppendEvent(ctx, orphan), repository.ErrNotFound)

	n, err := repos.Session.DeleteIdle(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIntegration_ProcessedEvents(t *testing.T) {
	repos, _ := setupTestRepos(t)
	ctx := context.Background()

	require.NoError(t, repos.ProcessedEvent.MarkProcessed(ctx, entity.NewProcessedEvent("Ev1", "T1")))
	assert.ErrorIs(t, repos.ProcessedEvent.MarkProcessed(ctx, entity.NewProcessedEvent("Ev1", "T1")), repository.ErrAlreadyExists)

	require.NoError(t, repos.ProcessedEvent.Unmark(ctx, "Ev1"))
	require.NoError(t, repos.ProcessedEvent.MarkProcessed(ctx, entity.NewProcessedEvent("Ev1", "T1")))

	n, err := repos.ProcessedEvent.DeleteExpired(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
