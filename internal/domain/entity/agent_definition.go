package entity

// AgentDefinition describes a persona the runtime can execute.
type AgentDefinition struct {
	// Name identifies the agent and is recorded as the author of its events.
	Name string

	// Model is the backend model identifier, e.g. "gemini-2.5-flash".
	Model string

	// Description summarizes when the agent should be used.
	Description string

	// Instruction is the system prompt.
	Instruction string

	// Tools lists tool names available to the agent.
	Tools []string

	// ThinkingBudget caps reasoning tokens; nil leaves the model default.
	ThinkingBudget *int32
}

// HasTool reports whether the agent lists the named tool.
func (d *AgentDefinition) HasTool(name string) bool {
	for _, t := range d.Tools {
		if t == name {
			return true
		}
	}
	return false
}
