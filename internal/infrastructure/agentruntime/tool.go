package agentruntime

import "context"

// Tool is a function the runner executes when the model requests it.
type Tool interface {
	Name() string
	Description() string
	Parameters() *Schema
	Call(ctx context.Context, args map[string]any) (map[string]any, error)
}

func declarations(tools []Tool) []FunctionDeclaration {
	decls := make([]FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decls = append(decls, FunctionDeclaration{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return decls
}
