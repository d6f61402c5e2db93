package agentruntime

import (
	"context"
	"errors"
	"fmt"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/repository"
)

// ErrSessionNotFound is returned when a run targets a session that was never created.
var ErrSessionNotFound = errors.New("session not found")

// SessionService stores sessions and their event history in a repository.
type SessionService struct {
	repo         repository.SessionRepository
	historyLimit int
}

// NewSessionService creates a session service. historyLimit bounds how many
// past events are sent to the model; <= 0 sends everything.
func NewSessionService(repo repository.SessionRepository, historyLimit int) *SessionService {
	return &SessionService{repo: repo, historyLimit: historyLimit}
}

// CreateSession creates a session keyed by (appName, userID, sessionID).
// It returns repository.ErrAlreadyExists for an existing key.
func (s *SessionService) CreateSession(ctx context.Context, appName, userID, sessionID string) (*entity.Session, error) {
	session := entity.NewSession(appName, userID, sessionID)
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession returns ErrSessionNotFound when the key is unknown.
func (s *SessionService) GetSession(ctx context.Context, key entity.SessionKey) (*entity.Session, error) {
	session, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %s/%s/%s", ErrSessionNotFound, key.AppName, key.UserID, key.ID)
	}
	return session, nil
}

// AppendEvent records a completed event. Partial events are not history.
func (s *SessionService) AppendEvent(ctx context.Context, key entity.SessionKey, event *entity.AgentEvent) error {
	if event == nil || event.Partial || event.Content == nil {
		return nil
	}
	record := entity.NewSessionEvent(key, event.Author, event.Content, event.Final)
	if event.ID != "" {
		record.ID = event.ID
	}
	if err := s.repo.AppendEvent(ctx, record); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, key.ID)
		}
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// History returns the recorded conversation, oldest first.
func (s *SessionService) History(ctx context.Context, key entity.SessionKey) ([]*entity.Content, error) {
	events, err := s.repo.ListEvents(ctx, key, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	contents := make([]*entity.Content, 0, len(events))
	for _, e := range events {
		if e.Content != nil {
			contents = append(contents, e.Content)
		}
	}
	return trimToUserTurn(contents), nil
}

// trimToUserTurn drops leading entries until a plain user message so that a
// truncated history never opens with a dangling tool exchange.
func trimToUserTurn(contents []*entity.Content) []*entity.Content {
	for i, c := range contents {
		if c.Role == entity.RoleUser && !hasFunctionResponse(c) {
			return contents[i:]
		}
	}
	return nil
}

func hasFunctionResponse(c *entity.Content) bool {
	for _, p := range c.Parts {
		if p.Kind == entity.PartFunctionResponse {
			return true
		}
	}
	return false
}
