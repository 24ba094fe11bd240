package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/webinar-seats/internal/model"
)

// WebinarService answers read-side queries for the HTTP layer.
type WebinarService struct {
	webinars       WebinarRepository
	participations ParticipationRepository
	users          UserRepository
}

// NewWebinarService constructs a WebinarService.
func NewWebinarService(
	webinars WebinarRepository,
	participations ParticipationRepository,
	users UserRepository,
) *WebinarService {
	return &WebinarService{webinars: webinars, participations: participations, users: users}
}

// GetWebinar returns a single webinar by ID.
func (s *WebinarService) GetWebinar(ctx context.Context, id string) (*model.Webinar, error) {
	if strings.TrimSpace(id) == "" {
		return nil, model.ErrWebinarIDRequired
	}
	w, err := s.webinars.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrWebinarNotFound
		}
		return nil, fmt.Errorf("get webinar: %w", err)
	}
	return w, nil
}

// GetWebinarDetails returns a webinar with its participant count and the
// seats still available.
func (s *WebinarService) GetWebinarDetails(ctx context.Context, id string) (*model.WebinarDetails, error) {
	w, err := s.GetWebinar(ctx, id)
	if err != nil {
		return nil, err
	}
	ps, err := s.participations.FindByWebinarID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	return &model.WebinarDetails{
		Webinar:        *w,
		Participants:   len(ps),
		RemainingSeats: w.Remaining(len(ps)),
	}, nil
}

// ListParticipations returns every participation of an existing webinar.
func (s *WebinarService) ListParticipations(ctx context.Context, webinarID string) ([]model.Participation, error) {
	if _, err := s.GetWebinar(ctx, webinarID); err != nil {
		return nil, err
	}
	ps, err := s.participations.FindByWebinarID(ctx, webinarID)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	return ps, nil
}

// GetUser returns a single user by ID.
func (s *WebinarService) GetUser(ctx context.Context, id string) (*model.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, model.ErrUserIDRequired
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
