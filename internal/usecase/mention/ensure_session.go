package mention

import (
	"context"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/logger"
)

// SessionManager makes sure a backend session exists for a thread.
type SessionManager struct {
	sessions SessionCreator
	appName  string
	logger   logger.Logger
}

// NewSessionManager creates a session manager.
func NewSessionManager(sessions SessionCreator, appName string, log logger.Logger) *SessionManager {
	if log == nil {
		log = logger.Nop{}
	}
	return &SessionManager{sessions: sessions, appName: appName, logger: log}
}

// EnsureSession creates the (appName, userID, threadKey) session.
// Every failure, "already exists" included, is logged and ignored.
func (m *SessionManager) EnsureSession(ctx context.Context, userID, threadKey string) {
	if _, err := m.sessions.CreateSession(ctx, m.appName, userID, threadKey); err != nil {
		m.logger.Debug("session not created",
			"app_name", m.appName,
			"user_id", userID,
			"session_id", threadKey,
			"error", err)
	}
}
