package repository

import (
	"context"
	"time"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
)

// SessionRepository persists backend sessions and their history.
// Following ISP: the agent runtime is the only writer.
type SessionRepository interface {
	// Create persists a new session.
	// Returns ErrAlreadyExists if a session with the same key already exists.
	Create(ctx context.Context, session *entity.Session) error

	// Get retrieves a session by key.
	// Returns nil, nil if not found.
	Get(ctx context.Context, key entity.SessionKey) (*entity.Session, error)

	// AppendEvent adds an entry to the session history and bumps UpdatedAt.
	// Returns ErrNotFound if the session doesn't exist.
	AppendEvent(ctx context.Context, event *entity.SessionEvent) error

	// ListEvents returns the most recent history entries, oldest first.
	// A limit <= 0 returns the full history.
	ListEvents(ctx context.Context, key entity.SessionKey, limit int) ([]*entity.SessionEvent, error)

	// DeleteIdle removes sessions not updated since cutoff, with their history.
	// Returns the number of deleted sessions.
	DeleteIdle(ctx context.Context, cutoff time.Time) (int, error)
}

// ProcessedEventRepository remembers dispatched Events API deliveries.
type ProcessedEventRepository interface {
	// MarkProcessed records the event.
	// Returns ErrAlreadyExists if the event ID was already recorded.
	MarkProcessed(ctx context.Context, event *entity.ProcessedEvent) error

	// Unmark forgets the event ID so a later redelivery is accepted.
	// Unknown IDs are not an error.
	Unmark(ctx context.Context, eventID string) error

	// DeleteExpired removes records received before cutoff.
	// Returns the number of deleted records.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int, error)
}
