// Package model defines the core domain types for the webinar booking system.
package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. Users are created by an external
// registration process and are read-only to the booking workflow.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"-"`
}

// Webinar is a scheduled event with a fixed seat capacity and one organizer.
type Webinar struct {
	ID          string    `json:"id"`
	OrganizerID string    `json:"organizer_id"`
	Title       string    `json:"title"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Seats       int       `json:"seats"`
}

// HasSeatFor reports whether one more participant fits when taken seats
// are already held.
func (w *Webinar) HasSeatFor(taken int) bool {
	return taken < w.Seats
}

// Remaining returns the number of available seats given the taken count.
func (w *Webinar) Remaining(taken int) int {
	if taken >= w.Seats {
		return 0
	}
	return w.Seats - taken
}

// WebinarDetails is a webinar together with its current seat availability.
type WebinarDetails struct {
	Webinar
	Participants   int `json:"participants"`
	RemainingSeats int `json:"remaining_seats"`
}

// Participation records that a user holds one seat in a webinar.
type Participation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	WebinarID string    `json:"webinar_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewParticipation builds a participation with a generated UUID.
func NewParticipation(userID, webinarID string) Participation {
	return Participation{
		ID:        uuid.New().String(),
		UserID:    userID,
		WebinarID: webinarID,
		CreatedAt: time.Now().UTC(),
	}
}

// Email is a message handed to a Mailer.
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// BookSeatRequest is the input of the booking use case.
type BookSeatRequest struct {
	WebinarID string
	User      User
}

// ParticipateRequest is the payload for booking a seat over HTTP.
type ParticipateRequest struct {
	UserID string `json:"user_id"`
}

// ParticipateResponse acknowledges a booked seat.
type ParticipateResponse struct {
	WebinarID string `json:"webinar_id"`
	UserID    string `json:"user_id"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
