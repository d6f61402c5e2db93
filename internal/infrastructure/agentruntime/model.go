// Package agentruntime runs agent definitions against a generative model,
// keeping per-session history and executing function tools between turns.
package agentruntime

import (
	"context"
	"iter"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
)

// BuiltinGoogleSearch is the model-side search tool. It is executed by the
// backend, never by the runner.
const BuiltinGoogleSearch = "google_search"

// Schema is a JSON-schema subset describing tool parameters.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// FunctionDeclaration advertises a callable tool to the model.
type FunctionDeclaration struct {
	Name        string
	Description string
	Parameters  *Schema
}

// LLMRequest is one generation call.
type LLMRequest struct {
	Model             string
	SystemInstruction string
	Contents          []*entity.Content
	Functions         []FunctionDeclaration
	BuiltinTools      []string
	ThinkingBudget    *int32
}

// LLMResponse is one element of a model stream. Partial responses carry
// incremental text; the last response of a call is complete and aggregates
// everything streamed before it.
type LLMResponse struct {
	Content      *entity.Content
	Partial      bool
	FinishReason string
}

// Model generates content for a request.
type Model interface {
	Name() string
	GenerateStream(ctx context.Context, req *LLMRequest) iter.Seq2[*LLMResponse, error]
}
