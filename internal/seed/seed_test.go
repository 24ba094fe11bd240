package seed

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/webinar-seats/internal/model"
	"github.com/Shivanand-hulikatti/webinar-seats/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const doc = `
users:
  - id: org-1
    email: Organizer@Mail.com
    password: secret
  - id: bob
    email: bob@mail.com
    password: pwd
webinars:
  - id: webinar-1
    organizer_id: org-1
    title: Clean Architecture
    start_date: 2024-01-10T10:00:00Z
    end_date: 2024-01-10T11:00:00Z
    seats: 1
`

func TestLoadAndApply(t *testing.T) {
	ctx := context.Background()
	f, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, f.Users, 2)
	require.Len(t, f.Webinars, 1)

	store := memory.NewStore()
	require.NoError(t, NewSeeder(store.Users(), store.Webinars()).WithCost(bcrypt.MinCost).Apply(ctx, f))

	org, err := store.Users().FindByID(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, "Organizer@Mail.com", org.Email)
	assert.NotEqual(t, "secret", org.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(org.Password), []byte("secret")))

	w, err := store.Webinars().FindByID(ctx, "webinar-1")
	require.NoError(t, err)
	assert.Equal(t, "Clean Architecture", w.Title)
	assert.Equal(t, 1, w.Seats)
	assert.True(t, w.StartDate.Equal(time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)))
}

func TestLoad_Empty(t *testing.T) {
	f, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Users)
	assert.Empty(t, f.Webinars)
}

func TestLoad_UnknownField(t *testing.T) {
	_, err := Load(strings.NewReader("rooms: []\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	start := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	f := &File{
		Users: []User{
			{ID: "", Email: "a@mail.com"},
			{ID: "bob", Email: "not-an-email"},
			{ID: "bob", Email: "bob@mail.com"},
		},
		Webinars: []Webinar{
			{ID: "w", OrganizerID: "bob", Title: "T", StartDate: start, EndDate: start, Seats: -1},
		},
	}

	err := f.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"users[0]: id is required",
		`users[1]: invalid email "not-an-email"`,
		`users[2]: duplicate id "bob"`,
		"webinars[0]: seats must not be negative",
		"webinars[0]: end_date must be after start_date",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestApply_UnknownOrganizer(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	f := &File{Webinars: []Webinar{
		{ID: "w", OrganizerID: "ghost", Title: "T", StartDate: start, EndDate: start.Add(time.Hour), Seats: 1},
	}}

	store := memory.NewStore()
	err := NewSeeder(store.Users(), store.Webinars()).Apply(ctx, f)
	assert.ErrorIs(t, err, model.ErrOrganizerNotFound)

	_, err = store.Webinars().FindByID(ctx, "w")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestApply_OrganizerAlreadyStored(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Users().Save(ctx, model.User{ID: "org-1", Email: "organizer@mail.com"}))

	start := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	f := &File{Webinars: []Webinar{
		{ID: "w", OrganizerID: "org-1", Title: "T", StartDate: start, EndDate: start.Add(time.Hour), Seats: 1},
	}}

	require.NoError(t, NewSeeder(store.Users(), store.Webinars()).Apply(ctx, f))
	_, err := store.Webinars().FindByID(ctx, "w")
	assert.NoError(t, err)
}
