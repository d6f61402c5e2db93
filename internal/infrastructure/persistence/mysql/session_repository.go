package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
)

// SessionRepository implements repository.SessionRepository using MySQL.
// Reads go to the primary: a run appends and re-reads history within one request.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new MySQL session repository.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a new session.
func (r *SessionRepository) Create(ctx context.Context, session *entity.Session) error {
	_, err := r.db.Primary().ExecContext(ctx, `
		INSERT INTO sessions (app_name, user_id, id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, session.AppName, session.UserID, session.ID, session.CreatedAt.UTC(), session.UpdatedAt.UTC())
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// Get retrieves a session by key.
// Returns nil, nil if not found.
func (r *SessionRepository) Get(ctx context.Context, key entity.SessionKey) (*entity.Session, error) {
	var session entity.Session
	err := r.db.Primary().QueryRowContext(ctx, `
		SELECT app_name, user_id, id, created_at, updated_at
		FROM sessions WHERE app_name = ? AND user_id = ? AND id = ?
	`, key.AppName, key.UserID, key.ID).Scan(
		&session.AppName, &session.UserID, &session.ID, &session.CreatedAt, &session.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return &session, nil
}

// AppendEvent adds an entry to the session history and bumps updated_at.
func (r *SessionRepository) AppendEvent(ctx context.Context, event *entity.SessionEvent) error {
	content, err := marshalContent(event.Content)
	if err != nil {
		return err
	}

	tx, err := r.db.Primary().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	key := event.Session
	createdAt := event.CreatedAt.UTC()

	// The foreign key rejects events for unknown sessions.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO session_events (
			id, app_name, user_id, session_id, author, content, is_final, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, event.ID, key.AppName, key.UserID, key.ID, event.Author, content, event.Final, createdAt)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("inserting session event: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE sessions SET updated_at = GREATEST(updated_at, ?)
		WHERE app_name = ? AND user_id = ? AND id = ?
	`, createdAt, key.AppName, key.UserID, key.ID); err != nil {
		return fmt.Errorf("touching session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListEvents returns the most recent history entries, oldest first.
func (r *SessionRepository) ListEvents(ctx context.Context, key entity.SessionKey, limit int) ([]*entity.SessionEvent, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.Primary().QueryContext(ctx, `
			SELECT id, author, content, is_final, created_at FROM (
				SELECT seq, id, author, content, is_final, created_at
				FROM session_events
				WHERE app_name = ? AND user_id = ? AND session_id = ?
				ORDER BY seq DESC
				LIMIT ?
			) recent ORDER BY seq ASC
		`, key.AppName, key.UserID, key.ID, limit)
	} else {
		rows, err = r.db.Primary().QueryContext(ctx, `
			SELECT id, author, content, is_final, created_at
			FROM session_events
			WHERE app_name = ? AND user_id = ? AND session_id = ?
			ORDER BY seq ASC
		`, key.AppName, key.UserID, key.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying session events: %w", err)
	}
	defer rows.Close()

	events := make([]*entity.SessionEvent, 0)
	for rows.Next() {
		var (
			event   entity.SessionEvent
			content string
		)
		if err := rows.Scan(&event.ID, &event.Author, &content, &event.Final, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning session event: %w", err)
		}
		if event.Content, err = unmarshalContent(content); err != nil {
			return nil, err
		}
		event.Session = key
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating session events: %w", err)
	}
	return events, nil
}

// DeleteIdle removes sessions not updated since cutoff; history cascades.
func (r *SessionRepository) DeleteIdle(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.Primary().ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("deleting idle sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return int(n), nil
}
