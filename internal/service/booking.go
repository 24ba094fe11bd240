// Package service implements the booking use case and the read-side queries
// used by the HTTP handlers.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/webinar-seats/internal/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/Shivanand-hulikatti/webinar-seats/internal/service"

// RegistrationSubject is the subject of the organizer notification.
const RegistrationSubject = "New webinar registration"

// NotifyPolicy decides what BookSeat reports when the organizer
// notification cannot be sent after the seat was persisted.
type NotifyPolicy int

const (
	// NotifyFail reports model.ErrNotificationFailed to the caller.
	NotifyFail NotifyPolicy = iota
	// NotifyIgnore logs the failure and reports success.
	NotifyIgnore
)

// ParseNotifyPolicy maps a config value ("fail" or "ignore") to a policy.
func ParseNotifyPolicy(s string) (NotifyPolicy, error) {
	switch s {
	case "", "fail":
		return NotifyFail, nil
	case "ignore":
		return NotifyIgnore, nil
	default:
		return NotifyFail, fmt.Errorf("unknown notify failure policy %q", s)
	}
}

// BookingService books webinar seats. It holds no mutable state and is
// safe for concurrent use.
type BookingService struct {
	webinars       WebinarRepository
	participations ParticipationRepository
	users          UserRepository
	mailer         Mailer

	policy NotifyPolicy
	logger *zap.Logger
	tracer trace.Tracer
}

// Option configures a BookingService.
type Option func(*BookingService)

// WithNotifyPolicy sets the notification failure policy.
func WithNotifyPolicy(p NotifyPolicy) Option {
	return func(s *BookingService) { s.policy = p }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *BookingService) { s.logger = l }
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *BookingService) { s.tracer = tp.Tracer(tracerName) }
}

// NewBookingService constructs a BookingService with its collaborators.
func NewBookingService(
	webinars WebinarRepository,
	participations ParticipationRepository,
	users UserRepository,
	mailer Mailer,
	opts ...Option,
) *BookingService {
	s := &BookingService{
		webinars:       webinars,
		participations: participations,
		users:          users,
		mailer:         mailer,
		policy:         NotifyFail,
		logger:         zap.NewNop(),
		tracer:         otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BookSeat reserves one seat of a webinar for the requesting user and
// notifies the organizer.
//
// The duplicate check always runs before the capacity check. Once the
// participation is saved it is never rolled back: a missing organizer or a
// failed notification is reported with the seat already booked.
func (s *BookingService) BookSeat(ctx context.Context, req model.BookSeatRequest) (err error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.BookSeat", trace.WithAttributes(
		attribute.String("webinar.id", req.WebinarID),
		attribute.String("user.id", req.User.ID),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	log := s.logger.With(zap.String("webinar_id", req.WebinarID), zap.String("user_id", req.User.ID))

	webinar, err := s.webinars.FindByID(ctx, req.WebinarID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			log.Info("booking rejected", zap.Error(model.ErrWebinarNotFound))
			return model.ErrWebinarNotFound
		}
		log.Error("find webinar failed", zap.Error(err))
		return fmt.Errorf("find webinar: %w", err)
	}

	participations, err := s.participations.FindByWebinarID(ctx, req.WebinarID)
	if err != nil {
		log.Error("load participations failed", zap.Error(err))
		return fmt.Errorf("load participations: %w", err)
	}

	for _, p := range participations {
		if p.UserID == req.User.ID {
			log.Info("booking rejected", zap.Error(model.ErrAlreadyParticipating))
			return model.ErrAlreadyParticipating
		}
	}

	if !webinar.HasSeatFor(len(participations)) {
		log.Info("booking rejected", zap.Error(model.ErrNoSeatsAvailable), zap.Int("seats", webinar.Seats))
		return model.ErrNoSeatsAvailable
	}

	if err := s.participations.Save(ctx, model.NewParticipation(req.User.ID, req.WebinarID)); err != nil {
		switch {
		case errors.Is(err, model.ErrAlreadyParticipating):
			log.Info("booking rejected at write time", zap.Error(err))
			return model.ErrAlreadyParticipating
		case errors.Is(err, model.ErrNoSeatsAvailable):
			log.Info("booking rejected at write time", zap.Error(err))
			return model.ErrNoSeatsAvailable
		}
		log.Error("save participation failed", zap.Error(err))
		return fmt.Errorf("save participation: %w", err)
	}
	span.AddEvent("participation saved")

	organizer, err := s.users.FindByID(ctx, webinar.OrganizerID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			log.Warn("seat booked but organizer is missing", zap.String("organizer_id", webinar.OrganizerID))
			return model.ErrOrganizerNotFound
		}
		log.Error("find organizer failed", zap.Error(err))
		return fmt.Errorf("find organizer: %w", err)
	}

	email := model.Email{
		To:      organizer.Email,
		Subject: RegistrationSubject,
		Body:    fmt.Sprintf("%s has registered to your webinar \"%s\".", req.User.Email, webinar.Title),
	}
	if err := s.mailer.Send(ctx, email); err != nil {
		if s.policy == NotifyIgnore {
			log.Warn("organizer notification failed", zap.Error(err))
			return nil
		}
		log.Error("organizer notification failed", zap.Error(err))
		return fmt.Errorf("%w: %w", model.ErrNotificationFailed, err)
	}

	log.Debug("seat booked")
	return nil
}
