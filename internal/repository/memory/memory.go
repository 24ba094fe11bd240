// Package memory provides in-memory repositories. Each Store is independent;
// its state is only reachable through the repository methods.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Shivanand-hulikatti/webinar-seats/internal/model"
)

// Store holds users, webinars and participations behind one lock so that
// participation writes can re-validate capacity atomically.
type Store struct {
	mu             sync.RWMutex
	users          map[string]model.User
	webinars       map[string]model.Webinar
	participations []model.Participation
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		users:    make(map[string]model.User),
		webinars: make(map[string]model.Webinar),
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Webinars returns the webinar repository view of the store.
func (s *Store) Webinars() *WebinarRepository { return &WebinarRepository{s: s} }

// Participations returns the participation repository view of the store.
func (s *Store) Participations() *ParticipationRepository {
	return &ParticipationRepository{s: s}
}

// UserRepository implements service.UserRepository.
type UserRepository struct {
	s *Store
}

// FindByID returns a copy of the user or model.ErrNotFound.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &u, nil
}

// Save inserts or replaces a user.
func (r *UserRepository) Save(ctx context.Context, u model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if u.ID == "" {
		return fmt.Errorf("memory: user id is required")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.users[u.ID] = u
	return nil
}

// WebinarRepository implements service.WebinarRepository.
type WebinarRepository struct {
	s *Store
}

// FindByID returns a copy of the webinar or model.ErrNotFound.
func (r *WebinarRepository) FindByID(ctx context.Context, id string) (*model.Webinar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	w, ok := r.s.webinars[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &w, nil
}

// Save inserts or replaces a webinar.
func (r *WebinarRepository) Save(ctx context.Context, w model.Webinar) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.ID == "" {
		return fmt.Errorf("memory: webinar id is required")
	}
	if w.Seats < 0 {
		return fmt.Errorf("memory: webinar %s has negative seats", w.ID)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.webinars[w.ID] = w
	return nil
}

// ParticipationRepository implements service.ParticipationRepository.
type ParticipationRepository struct {
	s *Store
}

// FindByWebinarID returns all participations of a webinar in insertion order.
func (r *ParticipationRepository) FindByWebinarID(ctx context.Context, webinarID string) ([]model.Participation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []model.Participation
	for _, p := range r.s.participations {
		if p.WebinarID == webinarID {
			out = append(out, p)
		}
	}
	return out, nil
}

// Save appends a participation. Under the write lock it rejects a second
// seat for the same user and, when the webinar is known, a seat beyond its
// capacity.
func (r *ParticipationRepository) Save(ctx context.Context, p model.Participation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	taken := 0
	for _, existing := range r.s.participations {
		if existing.WebinarID != p.WebinarID {
			continue
		}
		if existing.UserID == p.UserID {
			return model.ErrAlreadyParticipating
		}
		taken++
	}

	if w, ok := r.s.webinars[p.WebinarID]; ok && !w.HasSeatFor(taken) {
		return model.ErrNoSeatsAvailable
	}

	r.s.participations = append(r.s.participations, p)
	return nil
}
