package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/repository"
)

// ProcessedEventRepository provides SQLite implementation of repository.ProcessedEventRepository.
type ProcessedEventRepository struct {
	db *sql.DB
}

// NewProcessedEventRepository creates a new SQLite-backed processed event repository.
func NewProcessedEventRepository(db *sql.DB) *ProcessedEventRepository {
	return &ProcessedEventRepository{db: db}
}

// MarkProcessed records the event; the primary key rejects duplicates.
func (r *ProcessedEventRepository) MarkProcessed(ctx context.Context, event *entity.ProcessedEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO processed_events (event_id, thread_key, received_at)
		VALUES (?, ?, ?)
	`, event.EventID, event.ThreadKey, timeToString(event.ReceivedAt))
	if err != nil {
		if isUniqueConstraintError(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("insert processed event: %w", err)
	}
	return nil
}

// Unmark forgets the event ID.
func (r *ProcessedEventRepository) Unmark(ctx context.Context, eventID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM processed_events WHERE event_id = ?`, eventID); err != nil {
		return fmt.Errorf("delete processed event: %w", err)
	}
	return nil
}

// DeleteExpired removes records received before cutoff.
func (r *ProcessedEventRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM processed_events WHERE received_at < ?`, timeToString(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete expired events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}
