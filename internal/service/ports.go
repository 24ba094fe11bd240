package service

import (
	"context"

	"github.com/Shivanand-hulikatti/webinar-seats/internal/model"
)

// WebinarRepository looks up webinars. A missing webinar is reported as an
// error satisfying errors.Is(err, model.ErrNotFound).
type WebinarRepository interface {
	FindByID(ctx context.Context, id string) (*model.Webinar, error)
}

// ParticipationRepository reads and appends participations.
//
// Save must re-validate at write time and return model.ErrAlreadyParticipating
// or model.ErrNoSeatsAvailable when a concurrent booking already took the
// seat. It never drops a write silently.
type ParticipationRepository interface {
	FindByWebinarID(ctx context.Context, webinarID string) ([]model.Participation, error)
	Save(ctx context.Context, p model.Participation) error
}

// UserRepository looks up users. A missing user is reported as an error
// satisfying errors.Is(err, model.ErrNotFound).
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Mailer delivers a message to a single recipient.
type Mailer interface {
	Send(ctx context.Context, email model.Email) error
}
