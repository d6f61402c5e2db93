package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/repository"
)

func TestSessionRepository_CreateAndGet(t *testing.T) {
	repo := NewSessionRepository()
	ctx := context.Background()

	session := entity.NewSession("slack-bot", "U1", "1700000000.000100")
	require.NoError(t, repo.Create(ctx, session))

	got, err := repo.Get(ctx, session.Key())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session.ID, got.ID)

	// Duplicate create is rejected and leaves the stored session intact.
	err = repo.Create(ctx, entity.NewSession("slack-bot", "U1", "1700000000.000100"))
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)

	// Mutating the returned copy does not affect storage.
	got.UserID = "changed"
	again, _ := repo.Get(ctx, session.Key())
	assert.Equal(t, "U1", again.UserID)
}

func TestSessionRepository_GetMissing(t *testing.T) {
	repo := NewSessionRepository()

	got, err := repo.Get(context.Background(), entity.SessionKey{AppName: "a", UserID: "u", ID: "x"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionRepository_Events(t *testing.T) {
	repo := NewSessionRepository()
	ctx := context.Background()
	session := entity.NewSession("slack-bot", "U1", "T1")
	require.NoError(t, repo.Create(ctx, session))
	key := session.Key()

	for _, text := range []string{"one", "two", "three"} {
		ev := entity.NewSessionEvent(key, "user", entity.NewUserContent(entity.TextPart(text)), false)
		require.NoError(t, repo.AppendEvent(ctx, ev))
	}

	all, err := repo.ListEvents(ctx, key, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "one", all[0].Content.FirstText())

	recent, err := repo.ListEvents(ctx, key, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "two", recent[0].Content.FirstText())
	assert.Equal(t, "three", recent[1].Content.FirstText())

	orphan := entity.NewSessionEvent(entity.SessionKey{ID: "missing"}, "user", nil, false)
	assert.ErrorIs(t, repo.AppendEvent(ctx, orphan), repository.ErrNotFound)
}

func TestSessionRepository_DeleteIdle(t *testing.T) {
	repo := NewSessionRepository()
	ctx := context.Background()

	stale := entity.NewSession("app", "U1", "old")
	stale.UpdatedAt = time.Now().Add(-48 * time.Hour)
	fresh := entity.NewSession("app", "U1", "new")
	require.NoError(t, repo.Create(ctx, stale))
	require.NoError(t, repo.Create(ctx, fresh))

	n, err := repo.DeleteIdle(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, _ := repo.Get(ctx, stale.Key())
	assert.Nil(t, got)
	got, _ = repo.Get(ctx, fresh.Key())
	assert.NotNil(t, got)
}

func TestSessionRepository_ConcurrentCreate(t *testing.T) {
	repo := NewSessionRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if repo.Create(ctx, entity.NewSession("app", "U1", "T1")) == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}

func TestProcessedEventRepository(t *testing.T) {
	repo := NewProcessedEventRepository()
	ctx := context.Background()

	require.NoError(t, repo.MarkProcessed(ctx, entity.NewProcessedEvent("Ev1", "T1")))
	assert.ErrorIs(t, repo.MarkProcessed(ctx, entity.NewProcessedEvent("Ev1", "T1")), repository.ErrAlreadyExists)

	old := entity.NewProcessedEvent("Ev0", "T0")
	old.ReceivedAt = time.Now().Add(-2 * time.Hour)
	require.NoError(t, repo.MarkProcessed(ctx, old))
	assert.Equal(t, 2, repo.Count())

	n, err := repo.DeleteExpired(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, repo.Count())

	require.NoError(t, repo.Unmark(ctx, "Ev1"))
	require.NoError(t, repo.Unmark(ctx, "Ev-unknown"))
	assert.NoError(t, repo.MarkProcessed(ctx, entity.NewProcessedEvent("Ev1", "T1")))
}
