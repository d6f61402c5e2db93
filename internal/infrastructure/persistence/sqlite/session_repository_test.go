package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/repository"
)

func TestSessionRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db.DB)
	ctx := context.Background()

	session := entity.NewSession("slack-bot", "U123", "1700000000.000100")
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := repo.Get(ctx, session.Key())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if got.ID != session.ID || got.UserID != "U123" || got.AppName != "slack-bot" {
		t.Errorf("unexpected session: %+v", got)
	}
	if !got.CreatedAt.Equal(session.CreatedAt) {
		t.Errorf("created_at mismatch: %v vs %v", got.CreatedAt, session.CreatedAt)
	}

	if err := repo.Create(ctx, session); !errors.Is(err, repository.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestSessionRepository_GetNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db.DB)

	got, err := repo.Get(context.Background(), entity.SessionKey{AppName: "a", UserID: "u", ID: "missing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestSessionRepository_AppendAndListEvents(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db.DB)
	ctx := context.Background()

	session := entity.NewSession("slack-bot", "U1", "T1")
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	key := session.Key()

	user := entity.NewSessionEvent(key, "user", entity.NewUserContent(
		entity.TextPart("what's in this image?"),
		entity.BinaryPart([]byte{0x89, 0x50, 0x4e, 0x47}, "image/png"),
	), false)
	call := entity.NewSessionEvent(key, "slack_bot_agent", &entity.Content{
		Role: entity.RoleModel,
		Parts: []entity.Part{entity.FunctionCallPart(entity.FunctionCall{
			Name: "get_current_datetime",
			Args: map[string]any{"timezone": "UTC"},
		})},
	}, false)
	final := entity.NewSessionEvent(key, "slack_bot_agent", &entity.Content{
		Role:  entity.RoleModel,
		Parts: []entity.Part{entity.TextPart("A cat.")},
	}, true)

	for _, ev := range []*entity.SessionEvent{user, call, final} {
		if err := repo.AppendEvent(ctx, ev); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	events, err := repo.ListEvents(ctx, key, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].ID != user.ID || events[2].ID != final.ID {
		t.Errorf("events out of order")
	}
	if got := events[0].Content.Parts[1]; got.Kind != entity.PartBinary || got.MimeType != "image/png" || len(got.Data) != 4 {
		t.Errorf("binary part not round-tripped: %+v", got)
	}
	if calls := events[1].Content.FunctionCalls(); len(calls) != 1 || calls[0].Args["timezone"] != "UTC" {
		t.Errorf("function call not round-tripped: %+v", calls)
	}
	if !events[2].Final || events[2].Content.FirstText() != "A cat." {
		t.Errorf("final event not round-tripped: %+v", events[2])
	}

	recent, err := repo.ListEvents(ctx, key, 2)
	if err != nil {
		t.Fatalf("list with limit failed: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != call.ID || recent[1].ID != final.ID {
		t.Errorf("limit should keep the most recent events oldest first")
	}
}

func TestSessionRepository_AppendEventMissingSession(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db.DB)

	ev := entity.NewSessionEvent(entity.SessionKey{AppName: "a", UserID: "u", ID: "none"}, "user", nil, false)
	if err := repo.AppendEvent(context.Background(), ev); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_DeleteIdleCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db.DB)
	ctx := context.Background()

	stale := entity.NewSession("app", "U1", "old")
	stale.CreatedAt = time.Now().Add(-72 * time.Hour)
	stale.UpdatedAt = stale.CreatedAt
	if err := repo.Create(ctx, stale); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	ev := entity.NewSessionEvent(stale.Key(), "user", entity.NewUserContent(), false)
	ev.CreatedAt = stale.UpdatedAt
	if err := repo.AppendEvent(ctx, ev); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	fresh := entity.NewSession("app", "U1", "new")
	if err := repo.Create(ctx, fresh); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	n, err := repo.DeleteIdle(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted session, got %d", n)
	}

	var remaining int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM session_events").Scan(&remaining); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if remaining != 0 {
		t.Errorf("expected history to cascade, %d rows left", remaining)
	}
}
