package mention

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/adapter/dto"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
	domainerrors "github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/errors"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/logger"
)

const (
	defaultRunTimeout  = 2 * time.Minute
	defaultPostTimeout = 15 * time.Second
)

// Config holds the use case's timeouts.
type Config struct {
	// RunTimeout returns the current backend run deadline. It is read per
	// mention so that hot reload takes effect immediately.
	RunTimeout func() time.Duration

	// PostTimeout bounds the reply post.
	PostTimeout time.Duration
}

// HandleMentionUseCase answers an app_mention with exactly one thread reply.
type HandleMentionUseCase struct {
	assembler *ContentAssembler
	sessions  *SessionManager
	runner    AgentRunner
	poster    ReplyPoster
	locks     *ThreadLocks
	cfg       Config
	metrics   Metrics
	logger    logger.Logger
}

// NewHandleMentionUseCase creates a new HandleMentionUseCase with dependencies.
func NewHandleMentionUseCase(
	assembler *ContentAssembler,
	sessions *SessionManager,
	runner AgentRunner,
	poster ReplyPoster,
	locks *ThreadLocks,
	cfg Config,
	metrics Metrics,
	log logger.Logger,
) *HandleMentionUseCase {
	if cfg.RunTimeout == nil {
		cfg.RunTimeout = func() time.Duration { return defaultRunTimeout }
	}
	if cfg.PostTimeout <= 0 {
		cfg.PostTimeout = defaultPostTimeout
	}
	if locks == nil {
		locks = NewThreadLocks()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &HandleMentionUseCase{
		assembler: assembler,
		sessions:  sessions,
		runner:    runner,
		poster:    poster,
		locks:     locks,
		cfg:       cfg,
		metrics:   metrics,
		logger:    log,
	}
}

// Execute acknowledges the event, assembles the message, runs the agent in the
// thread's session and posts the reply. The returned error is the reply post
// failure, if any; agent and assembly failures are reported in the reply.
func (uc *HandleMentionUseCase) Execute(ctx context.Context, event *entity.InboundEvent, ack func()) (*dto.MentionOutput, error) {
	if ack != nil {
		ack()
	}

	uc.metrics.MentionStarted(ctx)
	defer uc.metrics.MentionFinished(ctx)

	threadKey := event.ThreadKey()
	userID := event.User()
	output := &dto.MentionOutput{SessionID: threadKey}

	log := uc.logger
	log.Info("handling mention",
		"event_id", event.EventID,
		"channel", event.ChannelID,
		"user", userID,
		"thread_ts", threadKey,
		"attachments", len(event.Attachments))

	// 1. Assemble the user message
	content, err := uc.assembler.Assemble(ctx, event)
	if err != nil {
		log.Error("failed to assemble message",
			"event_id", event.EventID,
			"error", err)
		output.Outcome = dto.MentionOutcomeAssemblyFailed
		output.Reply = fmt.Sprintf("Error processing message: %v", err)
		return output, uc.reply(ctx, event, output)
	}

	// 2. Best-effort session creation
	uc.sessions.EnsureSession(ctx, userID, threadKey)

	// 3. Run the agent
	result := uc.runAgent(ctx, userID, threadKey, content)
	if result.IsErr() {
		log.Error("agent run failed",
			"event_id", event.EventID,
			"agent", uc.runner.AgentName(),
			"session_id", threadKey,
			"error", result.ErrorMessage())
		output.Outcome = dto.MentionOutcomeAgentError
	} else {
		output.Outcome = dto.MentionOutcomeReplied
	}
	output.Reply = result.ReplyText()

	// 4. Reply in thread
	return output, uc.reply(ctx, event, output)
}

// runAgent consumes the agent stream up to its final event under the
// session's lock and the run timeout.
func (uc *HandleMentionUseCase) runAgent(ctx context.Context, userID, threadKey string, content *entity.Content) entity.RunResult {
	timeout := uc.cfg.RunTimeout()
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	unlock, err := uc.locks.Lock(runCtx, userID+"/"+threadKey)
	if err != nil {
		return entity.Err(runError(err, timeout))
	}
	defer unlock()

	for event, err := range uc.runner.Run(runCtx, userID, threadKey, content) {
		if err != nil {
			return entity.Err(runError(err, timeout))
		}
		if event.IsFinalResponse() {
			return entity.Ok(finalText(event))
		}
	}

	if err := runCtx.Err(); err != nil {
		return entity.Err(runError(err, timeout))
	}
	return entity.Ok("")
}

func runError(err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("agent run timed out after %s", timeout)
	}
	return err
}

func finalText(event *entity.AgentEvent) string {
	if event.Content == nil {
		return ""
	}
	return strings.TrimSpace(event.Content.FirstText())
}

// reply posts output.Reply once. Failures are logged, not retried.
func (uc *HandleMentionUseCase) reply(ctx context.Context, event *entity.InboundEvent, output *dto.MentionOutput) error {
	postCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.cfg.PostTimeout)
	defer cancel()

	start := time.Now()
	err := uc.poster.PostReply(postCtx, event.ChannelID, event.ThreadKey(), output.Reply)
	uc.metrics.RecordReplyPosted(ctx, err == nil, time.Since(start))
	if err != nil {
		uc.logger.Error("failed to post reply",
			"event_id", event.EventID,
			"channel", event.ChannelID,
			"thread_ts", event.ThreadKey(),
			"error_kind", domainerrors.Kind(err),
			"error", err)
		return fmt.Errorf("posting reply: %w", err)
	}

	output.Posted = true
	return nil
}
