package handler

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/adapter/dto"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
)

type fakeVerifier struct {
	err error
}

func (f *fakeVerifier) Verify(http.Header, []byte) error {
	return f.err
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []*entity.InboundEvent
	err    error
}

func (d *recordingDispatcher) Dispatch(event *entity.InboundEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}

type failingProcessedRepo struct{}

func (failingProcessedRepo) MarkProcessed(context.Context, *entity.ProcessedEvent) error {
	return errors.New("store down")
}

func (failingProcessedRepo) Unmark(context.Context, string) error {
	return errors.New("store down")
}

func (failingProcessedRepo) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}

type executorFunc func(ctx context.Context, event *entity.InboundEvent, ack func()) (*dto.MentionOutput, error)

func (f executorFunc) Execute(ctx context.Context, event *entity.InboundEvent, ack func()) (*dto.MentionOutput, error) {
	return f(ctx, event, ack)
}

const mentionPayload = `{
	"type": "event_callback",
	"team_id": "T1",
	"event_id": "Ev1",
	"event_time": 1700000000,
	"event": {
		"type": "app_mention",
		"user": "U1",
		"text": "<@B1> hello",
		"ts": "1700000000.000100",
		"channel": "C1"
	}
}`
