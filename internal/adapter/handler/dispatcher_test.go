package handler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/adapter/dto"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
)

func TestMentionDispatcher_ReturnsAfterAck(t *testing.T) {
	release := make(chan struct{})
	var finished atomic.Bool

	d := NewMentionDispatcher(executorFunc(func(ctx context.Context, ev *entity.InboundEvent, ack func()) (*dto.MentionOutput, error) {
		ack()
		<-release
		finished.Store(true)
		return &dto.MentionOutput{Outcome: dto.MentionOutcomeReplied}, nil
	}), nil)

	if err := d.Dispatch(&entity.InboundEvent{EventID: "Ev1"}); err != nil {
		t.Fatalf("unexpected dispatch error: %v", err)
	}
	if finished.Load() {
		t.Fatal("dispatch must return before the handler finishes")
	}

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Shutdown(ctx); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}
	if !finished.Load() {
		t.Error("shutdown must wait for in-flight handlers")
	}
}

func TestMentionDispatcher_ReleasesWhenHandlerSkipsAck(t *testing.T) {
	d := NewMentionDispatcher(executorFunc(func(ctx context.Context, ev *entity.InboundEvent, ack func()) (*dto.MentionOutput, error) {
		return nil, errors.New("failed early")
	}), nil)

	done := make(chan error, 1)
	go func() { done <- d.Dispatch(&entity.InboundEvent{}) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("dispatch blocked although the handler returned")
	}
}

func TestMentionDispatcher_RecoversPanics(t *testing.T) {
	d := NewMentionDispatcher(executorFunc(func(ctx context.Context, ev *entity.InboundEvent, ack func()) (*dto.MentionOutput, error) {
		panic("boom")
	}), nil)

	if err := d.Dispatch(&entity.InboundEvent{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Shutdown(ctx); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}

func TestMentionDispatcher_RejectsAfterShutdown(t *testing.T) {
	d := NewMentionDispatcher(executorFunc(func(ctx context.Context, ev *entity.InboundEvent, ack func()) (*dto.MentionOutput, error) {
		return &dto.MentionOutput{}, nil
	}), nil)

	if err := d.Shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}
	if err := d.Dispatch(&entity.InboundEvent{}); !errors.Is(err, ErrDispatcherClosed) {
		t.Errorf("expected ErrDispatcherClosed, got %v", err)
	}
}

func TestMentionDispatcher_ShutdownDeadlineCancelsHandlers(t *testing.T) {
	canceled := make(chan struct{})
	d := NewMentionDispatcher(executorFunc(func(ctx context.Context, ev *entity.InboundEvent, ack func()) (*dto.MentionOutput, error) {
		ack()
		<-ctx.Done()
		close(canceled)
		return nil, ctx.Err()
	}), nil)

	if err := d.Dispatch(&entity.InboundEvent{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := d.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Error("handler context was not canceled")
	}
}
