package model

import (
	"errors"
	"fmt"
)

// Error kinds. Every domain error below wraps exactly one of them so callers
// can branch on the kind with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

var (
	ErrWebinarNotFound   = fmt.Errorf("webinar %w", ErrNotFound)
	ErrOrganizerNotFound = fmt.Errorf("organizer %w", ErrNotFound)
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)

	ErrAlreadyParticipating = fmt.Errorf("%w: user already participating", ErrConflict)
	ErrNoSeatsAvailable     = fmt.Errorf("%w: no more seats available", ErrConflict)

	ErrWebinarIDRequired = fmt.Errorf("%w: webinar id is required", ErrInvalidInput)
	ErrUserIDRequired    = fmt.Errorf("%w: user id is required", ErrInvalidInput)
)

// ErrNotificationFailed is returned when the seat was booked but the
// organizer could not be notified.
var ErrNotificationFailed = errors.New("organizer notification failed")
