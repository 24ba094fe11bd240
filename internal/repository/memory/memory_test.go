package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Shivanand-hulikatti/webinar-seats/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()

	_, err := users.FindByID(ctx, "bob")
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, users.Save(ctx, model.User{ID: "bob", Email: "bob@mail.com"}))

	got, err := users.FindByID(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob@mail.com", got.Email)

	// Mutating the returned copy must not leak into the store.
	got.Email = "changed@mail.com"
	again, err := users.FindByID(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob@mail.com", again.Email)

	assert.Error(t, users.Save(ctx, model.User{}))
}

func TestWebinarRepository(t *testing.T) {
	ctx := context.Background()
	webinars := NewStore().Webinars()

	_, err := webinars.FindByID(ctx, "webinar-1")
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, webinars.Save(ctx, model.Webinar{ID: "webinar-1", Title: "Clean Architecture", Seats: 1}))

	got, err := webinars.FindByID(ctx, "webinar-1")
	require.NoError(t, err)
	assert.Equal(t, "Clean Architecture", got.Title)

	assert.Error(t, webinars.Save(ctx, model.Webinar{ID: "w", Seats: -1}))
}

func TestParticipationRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Webinars().Save(ctx, model.Webinar{ID: "webinar-1", Seats: 2}))
	require.NoError(t, store.Webinars().Save(ctx, model.Webinar{ID: "webinar-2", Seats: 2}))
	repo := store.Participations()

	require.NoError(t, repo.Save(ctx, model.NewParticipation("bob", "webinar-1")))
	require.NoError(t, repo.Save(ctx, model.NewParticipation("alice", "webinar-2")))

	ps, err := repo.FindByWebinarID(ctx, "webinar-1")
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "bob", ps[0].UserID)

	none, err := repo.FindByWebinarID(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestParticipationRepository_RejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Webinars().Save(ctx, model.Webinar{ID: "webinar-1", Seats: 5}))
	repo := store.Participations()

	require.NoError(t, repo.Save(ctx, model.NewParticipation("bob", "webinar-1")))
	err := repo.Save(ctx, model.NewParticipation("bob", "webinar-1"))
	assert.ErrorIs(t, err, model.ErrAlreadyParticipating)
}

func TestParticipationRepository_DuplicateWinsOverCapacity(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Webinars().Save(ctx, model.Webinar{ID: "webinar-1", Seats: 1}))
	repo := store.Participations()

	require.NoError(t, repo.Save(ctx, model.NewParticipation("bob", "webinar-1")))
	err := repo.Save(ctx, model.NewParticipation("bob", "webinar-1"))
	assert.ErrorIs(t, err, model.ErrAlreadyParticipating)
}

func TestParticipationRepository_RejectsOverCapacity(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Webinars().Save(ctx, model.Webinar{ID: "webinar-1", Seats: 1}))
	repo := store.Participations()

	require.NoError(t, repo.Save(ctx, model.NewParticipation("bob", "webinar-1")))
	err := repo.Save(ctx, model.NewParticipation("alice", "webinar-1"))
	assert.ErrorIs(t, err, model.ErrNoSeatsAvailable)
}

func TestParticipationRepository_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	const seats = 10
	require.NoError(t, store.Webinars().Save(ctx, model.Webinar{ID: "webinar-1", Seats: seats}))
	repo := store.Participations()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		booked  int
		full    int
		unknown []error
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.Save(ctx, model.NewParticipation(fmt.Sprintf("user-%d", i), "webinar-1"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				booked++
			case errors.Is(err, model.ErrNoSeatsAvailable):
				full++
			default:
				unknown = append(unknown, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, unknown)
	assert.Equal(t, seats, booked)
	assert.Equal(t, 40, full)

	ps, err := repo.FindByWebinarID(ctx, "webinar-1")
	require.NoError(t, err)
	assert.Len(t, ps, seats)
}

func TestStoresAreIndependent(t *testing.T) {
	ctx := context.Background()
	a, b := NewStore(), NewStore()

	require.NoError(t, a.Users().Save(ctx, model.User{ID: "bob"}))
	_, err := b.Users().FindByID(ctx, "bob")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStore().Webinars().FindByID(ctx, "webinar-1")
	assert.ErrorIs(t, err, context.Canceled)
}
