// Package agents defines the personas the bridge can run.
package agents

import (
	"fmt"
	"sort"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/agentruntime"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/tools"
)

var constructors = map[string]func(model string) *entity.AgentDefinition{
	SlackBotAgentName: NewSlackBotAgent,
	ComedianAgentName: NewComedianAgent,
}

// Names lists the available personas, sorted.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for n := range constructors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named persona bound to model.
func Lookup(persona, model string) (*entity.AgentDefinition, error) {
	newDef, ok := constructors[persona]
	if !ok {
		return nil, fmt.Errorf("unknown agent persona %q (available: %v)", persona, Names())
	}
	return newDef(model), nil
}

// Build resolves the persona's tools. A non-empty toolsOverride replaces the
// persona's own tool list.
func Build(def *entity.AgentDefinition, registry *tools.Registry, toolsOverride []string) (*agentruntime.Agent, error) {
	if len(toolsOverride) > 0 {
		def.Tools = append([]string(nil), toolsOverride...)
	}

	fns, builtins, err := registry.Resolve(def.Tools)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", def.Name, err)
	}

	return &agentruntime.Agent{
		Definition: def,
		Tools:      fns,
		Builtins:   builtins,
	}, nil
}
