package entity

// AgentEvent is one element of the backend response stream.
// A turn yields zero or more intermediate events followed by exactly one
// event with Final set.
type AgentEvent struct {
	ID      string
	Author  string
	Content *Content

	// Partial marks a streamed fragment that is not recorded in history.
	Partial bool

	// Final marks the completed response for the turn.
	Final bool
}

// IsFinalResponse reports whether this event terminates the turn.
func (e *AgentEvent) IsFinalResponse() bool {
	return e != nil && e.Final
}
