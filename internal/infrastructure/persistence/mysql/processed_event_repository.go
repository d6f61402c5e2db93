package mysql

import (
	"context"
	"fmt"
	"time"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
)

// ProcessedEventRepository implements repository.ProcessedEventRepository using MySQL.
type ProcessedEventRepository struct {
	db *DB
}

// NewProcessedEventRepository creates a new MySQL processed event repository.
func NewProcessedEventRepository(db *DB) *ProcessedEventRepository {
	return &ProcessedEventRepository{db: db}
}

// MarkProcessed records the event; the primary key rejects duplicates.
func (r *ProcessedEventRepository) MarkProcessed(ctx context.Context, event *entity.ProcessedEvent) error {
	_, err := r.db.Primary().ExecContext(ctx, `
		INSERT INTO processed_events (event_id, thread_key, received_at)
		VALUES (?, ?, ?)
	`, event.EventID, event.ThreadKey, event.ReceivedAt.UTC())
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("inserting processed event: %w", err)
	}
	return nil
}

// Unmark forgets the event ID.
func (r *ProcessedEventRepository) Unmark(ctx context.Context, eventID string) error {
	if _, err := r.db.Primary().ExecContext(ctx, `DELETE FROM processed_events WHERE event_id = ?`, eventID); err != nil {
		return fmt.Errorf("deleting processed event: %w", err)
	}
	return nil
}

// DeleteExpired removes records received before cutoff.
func (r *ProcessedEventRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.Primary().ExecContext(ctx, `DELETE FROM processed_events WHERE received_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("deleting expired events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return int(n), nil
}
