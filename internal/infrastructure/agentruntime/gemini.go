package agentruntime

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"google.golang.org/genai"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
)

// GeminiConfig selects the Gemini backend.
type GeminiConfig struct {
	// Backend is "gemini" (API key) or "vertex" (project + location).
	Backend  string
	APIKey   string
	Project  string
	Location string
}

// GeminiModel generates content through the Google Gen AI SDK.
type GeminiModel struct {
	client *genai.Client
	name   string
}

// NewGeminiModel creates a model client for the named model.
func NewGeminiModel(ctx context.Context, name string, cfg GeminiConfig) (*GeminiModel, error) {
	cc := &genai.ClientConfig{}
	switch cfg.Backend {
	case "vertex":
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	case "gemini", "":
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	default:
		return nil, fmt.Errorf("unsupported model backend %q", cfg.Backend)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiModel{client: client, name: name}, nil
}

// Name returns the default model identifier.
func (m *GeminiModel) Name() string {
	return m.name
}

// GenerateStream streams the model's answer. Each chunk with text is yielded
// as a partial response; the stream closes with one complete response
// aggregating all text and function calls.
func (m *GeminiModel) GenerateStream(ctx context.Context, req *LLMRequest) iter.Seq2[*LLMResponse, error] {
	return func(yield func(*LLMResponse, error) bool) {
		model := req.Model
		if model == "" {
			model = m.name
		}

		contents, err := toGenaiContents(req.Contents)
		if err != nil {
			yield(nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err))
			return
		}

		agg := &aggregator{}
		for resp, err := range m.client.Models.GenerateContentStream(ctx, model, contents, buildGenerateConfig(req)) {
			if err != nil {
				yield(nil, fmt.Errorf("generate content: %w", classifyAPIError(err)))
				return
			}
			chunk, finish, err := fromGenaiResponse(resp)
			if err != nil {
				yield(nil, err)
				return
			}
			agg.add(chunk, finish)
			if text := chunk.FirstText(); text != "" && len(chunk.FunctionCalls()) == 0 {
				if !yield(&LLMResponse{Content: chunk, Partial: true}, nil) {
					return
				}
			}
		}

		yield(agg.response(), nil)
	}
}

// aggregator merges streamed chunks into one complete response.
type aggregator struct {
	text   strings.Builder
	calls  []entity.Part
	finish string
}

func (a *aggregator) add(c *entity.Content, finish string) {
	for _, p := range c.Parts {
		switch p.Kind {
		case entity.PartText:
			a.text.WriteString(p.Text)
		case entity.PartFunctionCall:
			a.calls = append(a.calls, p)
		}
	}
	if finish != "" {
		a.finish = finish
	}
}

func (a *aggregator) response() *LLMResponse {
	content := &entity.Content{Role: entity.RoleModel}
	if a.text.Len() > 0 {
		content.Parts = append(content.Parts, entity.TextPart(a.text.String()))
	}
	content.Parts = append(content.Parts, a.calls...)
	return &LLMResponse{Content: content, FinishReason: a.finish}
}

func buildGenerateConfig(req *LLMRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	if len(req.Functions) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Functions))
		for _, f := range req.Functions {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        f.Name,
				Description: f.Description,
				Parameters:  toGenaiSchema(f.Parameters),
			})
		}
		cfg.Tools = append(cfg.Tools, &genai.Tool{FunctionDeclarations: decls})
	}
	for _, name := range req.BuiltinTools {
		if name == BuiltinGoogleSearch {
			cfg.Tools = append(cfg.Tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
		}
	}

	if req.ThinkingBudget != nil {
		budget := *req.ThinkingBudget
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: &budget}
	}
	return cfg
}

func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        genai.Type(strings.ToUpper(s.Type)),
		Description: s.Description,
		Required:    s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}

func toGenaiContents(contents []*entity.Content) ([]*genai.Content, error) {
	out := make([]*genai.Content, 0, len(contents))
	for _, c := range contents {
		if c == nil {
			continue
		}
		gc := &genai.Content{Role: string(c.Role)}
		for _, p := range c.Parts {
			gp, err := toGenaiPart(p)
			if err != nil {
				return nil, err
			}
			gc.Parts = append(gc.Parts, gp)
		}
		out = append(out, gc)
	}
	return out, nil
}

func toGenaiPart(p entity.Part) (*genai.Part, error) {
	switch p.Kind {
	case entity.PartText:
		return &genai.Part{Text: p.Text}, nil
	case entity.PartBinary:
		return &genai.Part{InlineData: &genai.Blob{Data: p.Data, MIMEType: p.MimeType}}, nil
	case entity.PartFunctionCall:
		if p.FunctionCall == nil {
			return nil, errors.New("function call part without call")
		}
		return &genai.Part{FunctionCall: &genai.FunctionCall{
			ID:   p.FunctionCall.ID,
			Name: p.FunctionCall.Name,
			Args: p.FunctionCall.Args,
		}}, nil
	case entity.PartFunctionResponse:
		if p.FunctionResponse == nil {
			return nil, errors.New("function response part without response")
		}
		return &genai.Part{FunctionResponse: &genai.FunctionResponse{
			ID:       p.FunctionResponse.ID,
			Name:     p.FunctionResponse.Name,
			Response: p.FunctionResponse.Response,
		}}, nil
	default:
		return nil, fmt.Errorf("unsupported part kind %q", p.Kind)
	}
}

// fromGenaiResponse converts the first candidate of a response chunk.
// Thought parts are dropped.
func fromGenaiResponse(resp *genai.GenerateContentResponse) (*entity.Content, string, error) {
	content := &entity.Content{Role: entity.RoleModel}
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, "", fmt.Errorf("%w: %s", ErrPromptBlocked, resp.PromptFeedback.BlockReason)
		}
		return content, "", nil
	}

	cand := resp.Candidates[0]
	if cand.Content != nil {
		for _, p := range cand.Content.Parts {
			if p == nil || p.Thought {
				continue
			}
			switch {
			case p.FunctionCall != nil:
				content.Parts = append(content.Parts, entity.FunctionCallPart(entity.FunctionCall{
					ID:   p.FunctionCall.ID,
					Name: p.FunctionCall.Name,
					Args: p.FunctionCall.Args,
				}))
			case p.Text != "":
				content.Parts = append(content.Parts, entity.TextPart(p.Text))
			}
		}
	}
	return content, string(cand.FinishReason), nil
}

// classifyAPIError exposes the status code of a Gen AI API error as a ModelError.
func classifyAPIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &ModelError{Code: apiErr.Code, Status: apiErr.Status, Err: err}
	}
	return err
}
