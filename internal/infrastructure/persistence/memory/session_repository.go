package memory

import (
	"context"
	"sync"
	"time"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/repository"
)

// SessionRepository provides an in-memory implementation of repository.SessionRepository.
// Thread-safe for concurrent access.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[entity.SessionKey]*entity.Session
	events   map[entity.SessionKey][]*entity.SessionEvent // insertion order
}

// NewSessionRepository creates a new in-memory session repository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[entity.SessionKey]*entity.Session),
		events:   make(map[entity.SessionKey][]*entity.SessionEvent),
	}
}

// Create persists a new session.
func (r *SessionRepository) Create(ctx context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := session.Key()
	if _, exists := r.sessions[key]; exists {
		return repository.ErrAlreadyExists
	}

	// Store a copy to prevent external mutations
	sessionCopy := *session
	r.sessions[key] = &sessionCopy
	return nil
}

// Get retrieves a session by key.
func (r *SessionRepository) Get(ctx context.Context, key entity.SessionKey) (*entity.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[key]
	if !ok {
		return nil, nil
	}

	sessionCopy := *session
	return &sessionCopy, nil
}

// AppendEvent adds an entry to the session history.
func (r *SessionRepository) AppendEvent(ctx context.Context, event *entity.SessionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[event.Session]
	if !ok {
		return repository.ErrNotFound
	}

	eventCopy := *event
	r.events[event.Session] = append(r.events[event.Session], &eventCopy)

	if event.CreatedAt.After(session.UpdatedAt) {
		session.UpdatedAt = event.CreatedAt
	}
	return nil
}

// ListEvents returns the most recent history entries, oldest first.
func (r *SessionRepository) ListEvents(ctx context.Context, key entity.SessionKey, limit int) ([]*entity.SessionEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.events[key]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}

	events := make([]*entity.SessionEvent, 0, len(all))
	for _, event := range all {
		eventCopy := *event
		events = append(events, &eventCopy)
	}
	return events, nil
}

// DeleteIdle removes sessions not updated since cutoff.
func (r *SessionRepository) DeleteIdle(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for key, session := range r.sessions {
		if session.UpdatedAt.Before(cutoff) {
			delete(r.sessions, key)
			delete(r.events, key)
			count++
		}
	}
	return count, nil
}
