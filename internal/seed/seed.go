// Package seed loads users and webinars from a YAML file into storage.
//
// Users and webinars are created outside the booking workflow; the seed file
// stands in for those external processes in development and demos.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/webinar-seats/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// File is the on-disk seed document.
type File struct {
	Users    []User    `yaml:"users"`
	Webinars []Webinar `yaml:"webinars"`
}

// User is a seed user. Password is plain text and is hashed on Apply.
type User struct {
	ID       string `yaml:"id"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Webinar is a seed webinar.
type Webinar struct {
	ID          string    `yaml:"id"`
	OrganizerID string    `yaml:"organizer_id"`
	Title       string    `yaml:"title"`
	StartDate   time.Time `yaml:"start_date"`
	EndDate     time.Time `yaml:"end_date"`
	Seats       int       `yaml:"seats"`
}

// UserStore is where seeded users are written.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	Save(ctx context.Context, u model.User) error
}

// WebinarStore is where seeded webinars are written.
type WebinarStore interface {
	Save(ctx context.Context, w model.Webinar) error
}

// Load decodes a seed document.
func Load(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &f, nil
}

// Validate checks the document before anything is written.
func (f *File) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(f.Users))
	for i, u := range f.Users {
		switch {
		case strings.TrimSpace(u.ID) == "":
			errs = append(errs, fmt.Errorf("users[%d]: id is required", i))
		case seen[u.ID]:
			errs = append(errs, fmt.Errorf("users[%d]: duplicate id %q", i, u.ID))
		}
		seen[u.ID] = true
		if !isValidEmail(u.Email) {
			errs = append(errs, fmt.Errorf("users[%d]: invalid email %q", i, u.Email))
		}
	}
	for i, w := range f.Webinars {
		if strings.TrimSpace(w.ID) == "" {
			errs = append(errs, fmt.Errorf("webinars[%d]: id is required", i))
		}
		if strings.TrimSpace(w.Title) == "" {
			errs = append(errs, fmt.Errorf("webinars[%d]: title is required", i))
		}
		if strings.TrimSpace(w.OrganizerID) == "" {
			errs = append(errs, fmt.Errorf("webinars[%d]: organizer_id is required", i))
		}
		if w.Seats < 0 {
			errs = append(errs, fmt.Errorf("webinars[%d]: seats must not be negative", i))
		}
		if !w.EndDate.After(w.StartDate) {
			errs = append(errs, fmt.Errorf("webinars[%d]: end_date must be after start_date", i))
		}
	}
	return errors.Join(errs...)
}

// Seeder writes a validated seed document to storage.
type Seeder struct {
	users    UserStore
	webinars WebinarStore
	cost     int
}

// NewSeeder constructs a Seeder hashing passwords with bcrypt.DefaultCost.
func NewSeeder(users UserStore, webinars WebinarStore) *Seeder {
	return &Seeder{users: users, webinars: webinars, cost: bcrypt.DefaultCost}
}

// WithCost overrides the bcrypt cost.
func (s *Seeder) WithCost(cost int) *Seeder {
	s.cost = cost
	return s
}

// Apply validates f, then upserts its users and webinars. Every webinar's
// organizer must be in f or already stored.
func (s *Seeder) Apply(ctx context.Context, f *File) error {
	if err := f.Validate(); err != nil {
		return err
	}

	known := make(map[string]bool, len(f.Users))
	for _, u := range f.Users {
		known[u.ID] = true
	}
	for _, w := range f.Webinars {
		if known[w.OrganizerID] {
			continue
		}
		if _, err := s.users.FindByID(ctx, w.OrganizerID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return fmt.Errorf("webinar %s: %w", w.ID, model.ErrOrganizerNotFound)
			}
			return fmt.Errorf("webinar %s: find organizer: %w", w.ID, err)
		}
		known[w.OrganizerID] = true
	}

	for _, u := range f.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), s.cost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.ID, err)
		}
		err = s.users.Save(ctx, model.User{
			ID:       u.ID,
			Email:    strings.TrimSpace(u.Email),
			Password: string(hash),
		})
		if err != nil {
			return fmt.Errorf("save user %s: %w", u.ID, err)
		}
	}

	for _, w := range f.Webinars {
		err := s.webinars.Save(ctx, model.Webinar{
			ID:          w.ID,
			OrganizerID: w.OrganizerID,
			Title:       strings.TrimSpace(w.Title),
			StartDate:   w.StartDate.UTC(),
			EndDate:     w.EndDate.UTC(),
			Seats:       w.Seats,
		})
		if err != nil {
			return fmt.Errorf("save webinar %s: %w", w.ID, err)
		}
	}
	return nil
}

// isValidEmail does a basic structural check.
func isValidEmail(email string) bool {
	parts := strings.Split(strings.TrimSpace(email), "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
