package handler

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/adapter/dto"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/logger"
)

// ErrDispatcherClosed is returned once shutdown has begun.
var ErrDispatcherClosed = errors.New("mention dispatcher is shutting down")

// MentionExecutor handles one mention. It must call ack before doing any
// slow work.
type MentionExecutor interface {
	Execute(ctx context.Context, event *entity.InboundEvent, ack func()) (*dto.MentionOutput, error)
}

// MentionDispatcher runs each mention in its own goroutine and returns as
// soon as the mention is acknowledged.
type MentionDispatcher struct {
	executor MentionExecutor
	logger   logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewMentionDispatcher creates a dispatcher. In-flight mentions run under a
// context that is only canceled when Shutdown gives up waiting.
func NewMentionDispatcher(executor MentionExecutor, log logger.Logger) *MentionDispatcher {
	if log == nil {
		log = logger.Nop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &MentionDispatcher{
		executor: executor,
		logger:   log,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Dispatch starts handling event and blocks until it is acknowledged or the
// handler returns.
func (d *MentionDispatcher) Dispatch(event *entity.InboundEvent) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.wg.Add(1)
	d.mu.Unlock()

	acked := make(chan struct{})
	var once sync.Once
	ack := func() { once.Do(func() { close(acked) }) }

	go func() {
		defer d.wg.Done()
		defer ack()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("panic in mention handler",
					"event_id", event.EventID,
					"panic", r,
					"stack", string(debug.Stack()))
			}
		}()

		out, err := d.executor.Execute(d.ctx, event, ack)
		if err != nil {
			d.logger.Warn("mention handled with error",
				"event_id", event.EventID,
				"error", err)
			return
		}
		d.logger.Info("mention handled",
			"event_id", event.EventID,
			"outcome", out.Outcome,
			"session_id", out.SessionID)
	}()

	<-acked
	return nil
}

// Shutdown stops accepting mentions and waits for in-flight ones. When ctx
// expires first, remaining handlers are canceled.
func (d *MentionDispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		// Give canceled handlers a moment to post their error replies.
		select {
		case <-done:
		case <-time.After(time.Second):
		}
		return ctx.Err()
	}
}
