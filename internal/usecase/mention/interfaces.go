package mention

import (
	"context"
	"iter"
	"time"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
)

// FileDownloader fetches a private Slack file.
type FileDownloader interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ReplyPoster posts a reply into a Slack thread.
type ReplyPoster interface {
	PostReply(ctx context.Context, channelID, threadTS, text string) error
}

// SessionCreator creates backend sessions.
// Creating an existing session returns an error, which callers may ignore.
type SessionCreator interface {
	CreateSession(ctx context.Context, appName, userID, sessionID string) (*entity.Session, error)
}

// AgentRunner runs one turn of the configured agent and streams its events.
// Exactly one event of a successful stream is final.
type AgentRunner interface {
	AppName() string
	AgentName() string
	Run(ctx context.Context, userID, sessionID string, msg *entity.Content) iter.Seq2[*entity.AgentEvent, error]
}

// Metrics records mention handling. *observability.Metrics implements it.
type Metrics interface {
	MentionStarted(ctx context.Context)
	MentionFinished(ctx context.Context)
	RecordAttachment(ctx context.Context, outcome, mimeType string)
	RecordReplyPosted(ctx context.Context, success bool, duration time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) MentionStarted(context.Context)                         {}
func (nopMetrics) MentionFinished(context.Context)                        {}
func (nopMetrics) RecordAttachment(context.Context, string, string)       {}
func (nopMetrics) RecordReplyPosted(context.Context, bool, time.Duration) {}
