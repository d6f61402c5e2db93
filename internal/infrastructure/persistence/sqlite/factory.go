package sqlite

import "database/sql"

// Repositories holds all SQLite repository implementations.
type Repositories struct {
	Session        *SessionRepository
	ProcessedEvent *ProcessedEventRepository
}

// NewRepositories creates all SQLite repositories with a shared database connection.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Session:        NewSessionRepository(db),
		ProcessedEvent: NewProcessedEventRepository(db),
	}
}
