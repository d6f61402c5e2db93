package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/repository"
)

// SessionRepository provides SQLite implementation of repository.SessionRepository.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SQLite-backed session repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a new session.
func (r *SessionRepository) Create(ctx context.Context, session *entity.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (app_name, user_id, id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		session.AppName, session.UserID, session.ID,
		timeToString(session.CreatedAt), timeToString(session.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Get retrieves a session by key.
// Returns nil, nil if not found.
func (r *SessionRepository) Get(ctx context.Context, key entity.SessionKey) (*entity.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT app_name, user_id, id, created_at, updated_at
		FROM sessions WHERE app_name = ? AND user_id = ? AND id = ?
	`, key.AppName, key.UserID, key.ID)

	var (
		session              entity.Session
		createdAt, updatedAt string
	)
	err := row.Scan(&session.AppName, &session.UserID, &session.ID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if session.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &session, nil
}

// AppendEvent adds an entry to the session history and bumps updated_at.
func (r *SessionRepository) AppendEvent(ctx context.Context, event *entity.SessionEvent) error {
	content, err := marshalContent(event.Content)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	key := event.Session
	res, err := tx.ExecContext(ctx, `
		UPDATE sessions SET updated_at = MAX(updated_at, ?)
		WHERE app_name = ? AND user_id = ? AND id = ?
	`, timeToString(event.CreatedAt), key.AppName, key.UserID, key.ID)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO session_events (
			id, app_name, user_id, session_id, author, content, is_final, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.ID, key.AppName, key.UserID, key.ID,
		event.Author, content, boolToInt(event.Final), timeToString(event.CreatedAt),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return repository.ErrNotFound
		}
		if isUniqueConstraintError(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("insert session event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListEvents returns the most recent history entries, oldest first.
func (r *SessionRepository) ListEvents(ctx context.Context, key entity.SessionKey, limit int) ([]*entity.SessionEvent, error) {
	query := `
		SELECT id, author, content, is_final, created_at FROM (
			SELECT seq, id, author, content, is_final, created_at
			FROM session_events
			WHERE app_name = ? AND user_id = ? AND session_id = ?
			ORDER BY seq DESC
			LIMIT ?
		) ORDER BY seq ASC
	`
	// SQLite treats a negative LIMIT as unbounded.
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx, query, key.AppName, key.UserID, key.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	events := make([]*entity.SessionEvent, 0)
	for rows.Next() {
		event, err := scanSessionEvent(rows, key)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session events: %w", err)
	}
	return events, nil
}

// DeleteIdle removes sessions not updated since cutoff; history cascades.
func (r *SessionRepository) DeleteIdle(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, timeToString(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete idle sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func scanSessionEvent(rows *sql.Rows, key entity.SessionKey) (*entity.SessionEvent, error) {
	var (
		event     entity.SessionEvent
		content   string
		isFinal   int
		createdAt string
	)
	if err := rows.Scan(&event.ID, &event.Author, &content, &isFinal, &createdAt); err != nil {
		return nil, fmt.Errorf("scan session event: %w", err)
	}

	var err error
	if event.Content, err = unmarshalContent(content); err != nil {
		return nil, err
	}
	if event.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	event.Session = key
	event.Final = isFinal != 0
	return &event, nil
}
