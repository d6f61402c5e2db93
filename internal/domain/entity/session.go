package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is a backend conversation bound to one Slack thread.
// It is keyed by (AppName, UserID, ID) where ID is the thread key.
type Session struct {
	AppName string
	UserID  string
	ID      string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession creates a session for the given thread key.
func NewSession(appName, userID, id string) *Session {
	now := time.Now().UTC()
	return &Session{
		AppName:   appName,
		UserID:    userID,
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SessionKey identifies a session.
type SessionKey struct {
	AppName string
	UserID  string
	ID      string
}

// Key returns the session identity.
func (s *Session) Key() SessionKey {
	return SessionKey{AppName: s.AppName, UserID: s.UserID, ID: s.ID}
}

// SessionEvent is one entry of a session's history.
type SessionEvent struct {
	ID        string
	Session   SessionKey
	Author    string
	Content   *Content
	Final     bool
	CreatedAt time.Time
}

// NewSessionEvent creates a history entry with a fresh ID.
func NewSessionEvent(key SessionKey, author string, content *Content, final bool) *SessionEvent {
	return &SessionEvent{
		ID:        uuid.New().String(),
		Session:   key,
		Author:    author,
		Content:   content,
		Final:     final,
		CreatedAt: time.Now().UTC(),
	}
}
