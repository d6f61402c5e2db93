package mention

import (
	"context"
	"errors"
	"iter"
	"sync"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/repository"
)

type fakeDownloader struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
	urls  []string
}

func (d *fakeDownloader) Fetch(_ context.Context, url string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.urls = append(d.urls, url)
	if d.err != nil {
		return nil, d.err
	}
	data, ok := d.files[url]
	if !ok {
		return nil, errors.New("404 Not Found")
	}
	return data, nil
}

func (d *fakeDownloader) calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.urls)
}

type postedReply struct {
	channel, threadTS, text string
}

type fakePoster struct {
	mu      sync.Mutex
	replies []postedReply
	err     error
}

func (p *fakePoster) PostReply(_ context.Context, channelID, threadTS, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replies = append(p.replies, postedReply{channelID, threadTS, text})
	return p.err
}

func (p *fakePoster) posted() []postedReply {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]postedReply(nil), p.replies...)
}

type fakeSessions struct {
	mu      sync.Mutex
	created map[string]bool
	err     error
}

func (s *fakeSessions) CreateSession(_ context.Context, appName, userID, sessionID string) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if s.created == nil {
		s.created = make(map[string]bool)
	}
	key := appName + "/" + userID + "/" + sessionID
	if s.created[key] {
		return nil, repository.ErrAlreadyExists
	}
	s.created[key] = true
	return entity.NewSession(appName, userID, sessionID), nil
}

// fakeRunner streams a fixed script, or delegates to run when set.
type fakeRunner struct {
	events []*entity.AgentEvent
	err    error
	run    func(ctx context.Context, msg *entity.Content) iter.Seq2[*entity.AgentEvent, error]

	mu       sync.Mutex
	messages []*entity.Content
	sessions []string
}

func (r *fakeRunner) AppName() string   { return "slack-bot" }
func (r *fakeRunner) AgentName() string { return "slack_bot_agent" }

func (r *fakeRunner) Run(ctx context.Context, userID, sessionID string, msg *entity.Content) iter.Seq2[*entity.AgentEvent, error] {
	r.mu.Lock()
	r.messages = append(r.messages, msg)
	r.sessions = append(r.sessions, userID+"/"+sessionID)
	r.mu.Unlock()

	if r.run != nil {
		return r.run(ctx, msg)
	}
	return func(yield func(*entity.AgentEvent, error) bool) {
		for _, ev := range r.events {
			if !yield(ev, nil) {
				return
			}
		}
		if r.err != nil {
			yield(nil, r.err)
		}
	}
}

func (r *fakeRunner) lastMessage() *entity.Content {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return nil
	}
	return r.messages[len(r.messages)-1]
}

func textEvent(text string, final bool) *entity.AgentEvent {
	return &entity.AgentEvent{
		Author:  "slack_bot_agent",
		Content: &entity.Content{Role: entity.RoleModel, Parts: []entity.Part{entity.TextPart(text)}},
		Final:   final,
	}
}
