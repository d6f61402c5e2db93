// Package tools holds the function tools agents can be given.
package tools

import (
	"fmt"
	"sort"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/agentruntime"
)

// Registry resolves tool names from agent definitions and configuration.
type Registry struct {
	tools    map[string]agentruntime.Tool
	builtins map[string]bool
}

// NewRegistry creates a registry with the given function tools plus the
// backend's built-in tools.
func NewRegistry(tools ...agentruntime.Tool) *Registry {
	r := &Registry{
		tools:    make(map[string]agentruntime.Tool, len(tools)),
		builtins: map[string]bool{agentruntime.BuiltinGoogleSearch: true},
	}
	for _, t := range tools {
		r.tools[t.Name()] = t
	}
	return r
}

// DefaultRegistry contains every tool shipped with the bridge.
func DefaultRegistry() *Registry {
	return NewRegistry(NewCurrentDateTime())
}

// Resolve splits names into runner-executed tools and backend built-ins.
// Duplicate names are ignored; unknown names are an error.
func (r *Registry) Resolve(names []string) ([]agentruntime.Tool, []string, error) {
	var (
		fns      []agentruntime.Tool
		builtins []string
		seen     = make(map[string]bool, len(names))
	)
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		if r.builtins[name] {
			builtins = append(builtins, name)
			continue
		}
		t, ok := r.tools[name]
		if !ok {
			return nil, nil, fmt.Errorf("unknown tool %q (available: %v)", name, r.Names())
		}
		fns = append(fns, t)
	}
	return fns, builtins, nil
}

// Names lists every known tool, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools)+len(r.builtins))
	for n := range r.tools {
		names = append(names, n)
	}
	for n := range r.builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
