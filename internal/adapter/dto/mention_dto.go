package dto

// Mention outcomes reported by the mention use case.
const (
	MentionOutcomeReplied        = "replied"
	MentionOutcomeAgentError     = "agent_error"
	MentionOutcomeAssemblyFailed = "assembly_failed"
)

// MentionOutput is the result of handling one app_mention.
type MentionOutput struct {
	// Outcome is one of the MentionOutcome constants.
	Outcome string

	// Reply is the text posted (or attempted) into the thread.
	Reply string

	// Posted reports whether Slack accepted the reply.
	Posted bool

	// SessionID is the backend session the mention ran in.
	SessionID string
}
