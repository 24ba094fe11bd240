// Package repository implements PostgreSQL storage for webinars, users and
// participations. It uses pgx directly (no ORM).
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/webinar-seats/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// WebinarRepository handles persistence for webinars.
type WebinarRepository struct {
	db *pgxpool.Pool
}

// NewWebinarRepository constructs a WebinarRepository.
func NewWebinarRepository(db *pgxpool.Pool) *WebinarRepository {
	return &WebinarRepository{db: db}
}

// FindByID returns a single webinar or model.ErrNotFound.
func (r *WebinarRepository) FindByID(ctx context.Context, id string) (*model.Webinar, error) {
	var w model.Webinar
	err := r.db.QueryRow(ctx,
		`SELECT id, organizer_id, title, start_date, end_date, seats
		 FROM webinars WHERE id = $1`,
		id,
	).Scan(&w.ID, &w.OrganizerID, &w.Title, &w.StartDate, &w.EndDate, &w.Seats)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get webinar: %w", err)
	}
	return &w, nil
}

// Save inserts a webinar or replaces the stored one with the same ID.
func (r *WebinarRepository) Save(ctx context.Context, w model.Webinar) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO webinars (id, organizer_id, title, start_date, end_date, seats)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
		   organizer_id = EXCLUDED.organizer_id,
		   title        = EXCLUDED.title,
		   start_date   = EXCLUDED.start_date,
		   end_date     = EXCLUDED.end_date,
		   seats        = EXCLUDED.seats`,
		w.ID, w.OrganizerID, w.Title, w.StartDate.UTC(), w.EndDate.UTC(), w.Seats,
	)
	if err != nil {
		return fmt.Errorf("upsert webinar: %w", err)
	}
	return nil
}

// UserRepository handles persistence for users.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns a single user or model.ErrNotFound.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx,
		`SELECT id, email, password FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Email, &u.Password)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Save inserts a user or replaces the stored one with the same ID.
func (r *UserRepository) Save(ctx context.Context, u model.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, email, password)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET
		   email    = EXCLUDED.email,
		   password = EXCLUDED.password`,
		u.ID, u.Email, u.Password,
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// ParticipationRepository handles persistence for participations.
type ParticipationRepository struct {
	db *pgxpool.Pool
}

// NewParticipationRepository constructs a ParticipationRepository.
func NewParticipationRepository(db *pgxpool.Pool) *ParticipationRepository {
	return &ParticipationRepository{db: db}
}

// FindByWebinarID returns all participations for a webinar, oldest first.
func (r *ParticipationRepository) FindByWebinarID(ctx context.Context, webinarID string) ([]model.Participation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, webinar_id, created_at
		 FROM participations
		 WHERE webinar_id = $1
		 ORDER BY created_at ASC`,
		webinarID,
	)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	defer rows.Close()

	var ps []model.Participation
	for rows.Next() {
		var p model.Participation
		if err := rows.Scan(&p.ID, &p.UserID, &p.WebinarID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		ps = append(ps, p)
	}
	return ps, rows.Err()
}

// Save appends a participation inside one transaction.
//
// The webinar row is locked with SELECT ... FOR UPDATE, which serialises
// concurrent saves for the same webinar. Under the lock the duplicate and
// capacity rules are evaluated again, so a booking that validated against a
// stale snapshot is rejected here instead of overbooking. The unique
// constraint on (user_id, webinar_id) backs the duplicate rule.
func (r *ParticipationRepository) Save(ctx context.Context, p model.Participation) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var seats int
	err = tx.QueryRow(ctx,
		`SELECT seats FROM webinars WHERE id = $1 FOR UPDATE`,
		p.WebinarID,
	).Scan(&seats)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrWebinarNotFound
		}
		return fmt.Errorf("lock webinar row: %w", err)
	}

	var dup bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM participations WHERE webinar_id = $1 AND user_id = $2)`,
		p.WebinarID, p.UserID,
	).Scan(&dup)
	if err != nil {
		return fmt.Errorf("check duplicate: %w", err)
	}
	if dup {
		return model.ErrAlreadyParticipating
	}

	var taken int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM participations WHERE webinar_id = $1`,
		p.WebinarID,
	).Scan(&taken)
	if err != nil {
		return fmt.Errorf("count participations: %w", err)
	}
	if taken >= seats {
		return model.ErrNoSeatsAvailable
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO participations (id, user_id, webinar_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		p.ID, p.UserID, p.WebinarID, p.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.ErrAlreadyParticipating
		}
		return fmt.Errorf("insert participation: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
