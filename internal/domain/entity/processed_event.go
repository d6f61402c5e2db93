package entity

import "time"

// ProcessedEvent records an Events API delivery that has been dispatched.
// A second delivery with the same EventID is dropped.
type ProcessedEvent struct {
	EventID    string
	ThreadKey  string
	ReceivedAt time.Time
}

// NewProcessedEvent creates a record stamped with the current time.
func NewProcessedEvent(eventID, threadKey string) *ProcessedEvent {
	return &ProcessedEvent{
		EventID:    eventID,
		ThreadKey:  threadKey,
		ReceivedAt: time.Now().UTC(),
	}
}

// IsExpired reports whether the record is older than ttl.
func (p *ProcessedEvent) IsExpired(ttl time.Duration, now time.Time) bool {
	return now.Sub(p.ReceivedAt) > ttl
}
