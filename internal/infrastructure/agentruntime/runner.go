package agentruntime

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/logger"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/observability"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/resilience"
)

// ErrMaxStepsExceeded is returned when the model keeps calling tools past the step limit.
var ErrMaxStepsExceeded = errors.New("agent exceeded max steps without a final response")

// Agent binds a definition to the tools it may use.
type Agent struct {
	Definition *entity.AgentDefinition

	// Tools are executed by the runner.
	Tools []Tool

	// Builtins are executed by the model backend (e.g. BuiltinGoogleSearch).
	Builtins []string
}

// RunnerConfig holds the runner's collaborators.
type RunnerConfig struct {
	AppName  string
	Agent    *Agent
	Model    Model
	Sessions *SessionService

	// MaxSteps bounds model calls per turn. Defaults to 8.
	MaxSteps int

	Breaker *resilience.CircuitBreaker
	Metrics *observability.Metrics
	Logger  logger.Logger
}

// Runner executes one agent for a single application.
type Runner struct {
	appName  string
	agent    *Agent
	model    Model
	sessions *SessionService
	maxSteps int
	breaker  *resilience.CircuitBreaker
	metrics  *observability.Metrics
	logger   logger.Logger

	tools map[string]Tool
}

// NewRunner creates a runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Agent == nil || cfg.Agent.Definition == nil {
		return nil, errors.New("agent definition is required")
	}
	if cfg.Model == nil {
		return nil, errors.New("model is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session service is required")
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = 8
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop{}
	}

	tools := make(map[string]Tool, len(cfg.Agent.Tools))
	for _, t := range cfg.Agent.Tools {
		tools[t.Name()] = t
	}

	return &Runner{
		appName:  cfg.AppName,
		agent:    cfg.Agent,
		model:    cfg.Model,
		sessions: cfg.Sessions,
		maxSteps: cfg.MaxSteps,
		breaker:  cfg.Breaker,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		tools:    tools,
	}, nil
}

// AgentName returns the name of the agent this runner executes.
func (r *Runner) AgentName() string {
	return r.agent.Definition.Name
}

// AppName returns the application the runner's sessions belong to.
func (r *Runner) AppName() string {
	return r.appName
}

// Sessions returns the session service backing the runner.
func (r *Runner) Sessions() *SessionService {
	return r.sessions
}

// Run appends msg to the session and streams the agent's events. The stream
// ends after the single final event or the first error. Breaking out of the
// loop early cancels any in-flight model call.
func (r *Runner) Run(ctx context.Context, userID, sessionID string, msg *entity.Content) iter.Seq2[*entity.AgentEvent, error] {
	return func(yield func(*entity.AgentEvent, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		start := time.Now()
		outcome := "error"
		defer func() {
			r.metrics.RecordAgentRun(context.WithoutCancel(ctx), r.AgentName(), outcome, time.Since(start))
		}()

		key := entity.SessionKey{AppName: r.appName, UserID: userID, ID: sessionID}
		if _, err := r.sessions.GetSession(ctx, key); err != nil {
			yield(nil, err)
			return
		}

		userEvent := &entity.AgentEvent{ID: uuid.New().String(), Author: "user", Content: msg}
		if err := r.sessions.AppendEvent(ctx, key, userEvent); err != nil {
			yield(nil, err)
			return
		}

		history, err := r.sessions.History(ctx, key)
		if err != nil {
			yield(nil, err)
			return
		}

		for step := 0; step < r.maxSteps; step++ {
			resp, stopped, err := r.generate(ctx, history, yield)
			if stopped {
				outcome = "abandoned"
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}

			content := resp.Content
			if content == nil {
				content = &entity.Content{Role: entity.RoleModel}
			}
			calls := content.FunctionCalls()

			event := &entity.AgentEvent{
				ID:      uuid.New().String(),
				Author:  r.AgentName(),
				Content: content,
				Final:   len(calls) == 0,
			}
			if err := r.sessions.AppendEvent(ctx, key, event); err != nil {
				yield(nil, err)
				return
			}
			if event.Final {
				outcome = "ok"
				yield(event, nil)
				return
			}
			if !yield(event, nil) {
				outcome = "abandoned"
				return
			}

			toolEvent := &entity.AgentEvent{
				ID:      uuid.New().String(),
				Author:  r.AgentName(),
				Content: r.callTools(ctx, calls),
			}
			if err := r.sessions.AppendEvent(ctx, key, toolEvent); err != nil {
				yield(nil, err)
				return
			}
			if !yield(toolEvent, nil) {
				outcome = "abandoned"
				return
			}

			history = append(history, content, toolEvent.Content)
		}

		yield(nil, fmt.Errorf("%w (%d)", ErrMaxStepsExceeded, r.maxSteps))
	}
}

// generate performs one model call, forwarding partial responses and
// returning the complete one. stopped reports that the consumer quit.
func (r *Runner) generate(
	ctx context.Context,
	history []*entity.Content,
	yield func(*entity.AgentEvent, error) bool,
) (final *LLMResponse, stopped bool, err error) {
	def := r.agent.Definition
	req := &LLMRequest{
		Model:             def.Model,
		SystemInstruction: def.Instruction,
		Contents:          history,
		Functions:         declarations(r.agent.Tools),
		BuiltinTools:      r.agent.Builtins,
		ThinkingBudget:    def.ThinkingBudget,
	}

	call := func() error {
		for resp, err := range r.model.GenerateStream(ctx, req) {
			if err != nil {
				return err
			}
			if resp == nil {
				continue
			}
			if resp.Partial {
				if !yield(&entity.AgentEvent{Author: def.Name, Content: resp.Content, Partial: true}, nil) {
					stopped = true
					return nil
				}
				continue
			}
			final = resp
		}
		return nil
	}

	if r.breaker != nil {
		err = r.breaker.Execute(ctx, call)
	} else {
		err = call()
	}
	if err != nil || stopped {
		return nil, stopped, err
	}
	if final == nil {
		return &LLMResponse{}, false, nil
	}
	return final, false, nil
}

// callTools executes each requested function and collects the responses into
// one user-role content, in call order.
func (r *Runner) callTools(ctx context.Context, calls []entity.FunctionCall) *entity.Content {
	parts := make([]entity.Part, 0, len(calls))
	for _, call := range calls {
		result := r.callTool(ctx, call)
		parts = append(parts, entity.FunctionResponsePart(entity.FunctionResponse{
			ID:       call.ID,
			Name:     call.Name,
			Response: result,
		}))
	}
	return &entity.Content{Role: entity.RoleUser, Parts: parts}
}

func (r *Runner) callTool(ctx context.Context, call entity.FunctionCall) map[string]any {
	tool, ok := r.tools[call.Name]
	if !ok {
		r.metrics.RecordToolCall(ctx, call.Name, false)
		r.logger.Warn("model requested unknown tool", "tool", call.Name, "agent", r.AgentName())
		return map[string]any{"error": fmt.Sprintf("unknown tool: %s", call.Name)}
	}

	result, err := tool.Call(ctx, call.Args)
	if err != nil {
		r.metrics.RecordToolCall(ctx, call.Name, false)
		r.logger.Warn("tool call failed", "tool", call.Name, "error", err)
		return map[string]any{"error": err.Error()}
	}

	_, failed := result["error"]
	r.metrics.RecordToolCall(ctx, call.Name, !failed)
	r.logger.Debug("tool call completed", "tool", call.Name)
	return result
}

// FinalText returns the trimmed text of the first text part of a final event.
func FinalText(event *entity.AgentEvent) string {
	if event == nil || event.Content == nil {
		return ""
	}
	return strings.TrimSpace(event.Content.FirstText())
}
