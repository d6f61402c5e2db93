package memory

import (
	"context"
	"sync"
	"time"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/repository"
)

// ProcessedEventRepository provides an in-memory implementation of
// repository.ProcessedEventRepository.
type ProcessedEventRepository struct {
	mu     sync.Mutex
	events map[string]*entity.ProcessedEvent // eventID -> record
}

// NewProcessedEventRepository creates a new in-memory processed event repository.
func NewProcessedEventRepository() *ProcessedEventRepository {
	return &ProcessedEventRepository{
		events: make(map[string]*entity.ProcessedEvent),
	}
}

// MarkProcessed records the event, failing on a duplicate event ID.
func (r *ProcessedEventRepository) MarkProcessed(ctx context.Context, event *entity.ProcessedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.events[event.EventID]; exists {
		return repository.ErrAlreadyExists
	}

	eventCopy := *event
	r.events[event.EventID] = &eventCopy
	return nil
}

// Unmark forgets the event ID.
func (r *ProcessedEventRepository) Unmark(ctx context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.events, eventID)
	return nil
}

// DeleteExpired removes records received before cutoff.
func (r *ProcessedEventRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for id, event := range r.events {
		if event.ReceivedAt.Before(cutoff) {
			delete(r.events, id)
			count++
		}
	}
	return count, nil
}

// Count returns the number of stored records.
func (r *ProcessedEventRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
