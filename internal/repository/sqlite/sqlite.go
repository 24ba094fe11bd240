// Package sqlite implements webinar, user and participation storage on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/webinar-seats/internal/model"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// WebinarRepository stores webinars.
type WebinarRepository struct {
	db *sql.DB
}

// NewWebinarRepository constructs a WebinarRepository.
func NewWebinarRepository(db *sql.DB) *WebinarRepository {
	return &WebinarRepository{db: db}
}

// FindByID returns a single webinar or model.ErrNotFound.
func (r *WebinarRepository) FindByID(ctx context.Context, id string) (*model.Webinar, error) {
	var (
		w          model.Webinar
		start, end int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, organizer_id, title, start_date, end_date, seats
		 FROM webinars WHERE id = ?`,
		id,
	).Scan(&w.ID, &w.OrganizerID, &w.Title, &start, &end, &w.Seats)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get webinar: %w", err)
	}
	w.StartDate = fromMillis(start)
	w.EndDate = fromMillis(end)
	return &w, nil
}

// Save inserts a webinar or replaces the stored one with the same ID.
func (r *WebinarRepository) Save(ctx context.Context, w model.Webinar) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO webinars (id, organizer_id, title, start_date, end_date, seats)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   organizer_id = excluded.organizer_id,
		   title        = excluded.title,
		   start_date   = excluded.start_date,
		   end_date     = excluded.end_date,
		   seats        = excluded.seats`,
		w.ID, w.OrganizerID, w.Title, toMillis(w.StartDate), toMillis(w.EndDate), w.Seats,
	)
	if err != nil {
		return fmt.Errorf("upsert webinar: %w", err)
	}
	return nil
}

// UserRepository stores users.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns a single user or model.ErrNotFound.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password FROM users WHERE id = ?`,
		id,
	).Scan(&u.ID, &u.Email, &u.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Save inserts a user or replaces the stored one with the same ID.
func (r *UserRepository) Save(ctx context.Context, u model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password)
		 VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   email    = excluded.email,
		   password = excluded.password`,
		u.ID, u.Email, u.Password,
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// ParticipationRepository stores participations.
type ParticipationRepository struct {
	db *sql.DB
}

// NewParticipationRepository constructs a ParticipationRepository.
func NewParticipationRepository(db *sql.DB) *ParticipationRepository {
	return &ParticipationRepository{db: db}
}

// FindByWebinarID returns all participations for a webinar, oldest first.
func (r *ParticipationRepository) FindByWebinarID(ctx context.Context, webinarID string) ([]model.Participation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, webinar_id, created_at
		 FROM participations
		 WHERE webinar_id = ?
		 ORDER BY created_at ASC, rowid ASC`,
		webinarID,
	)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	defer rows.Close()

	var ps []model.Participation
	for rows.Next() {
		var (
			p         model.Participation
			createdAt int64
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.WebinarID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		p.CreatedAt = fromMillis(createdAt)
		ps = append(ps, p)
	}
	return ps, rows.Err()
}

// Save appends a participation.
//
// The duplicate probe runs first so a repeated request reports
// model.ErrAlreadyParticipating even on a full webinar. The insert itself is
// conditional on the seat count, evaluated by SQLite in the same statement,
// so a stale capacity check upstream can never overbook.
func (r *ParticipationRepository) Save(ctx context.Context, p model.Participation) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var seats int
	err = tx.QueryRowContext(ctx, `SELECT seats FROM webinars WHERE id = ?`, p.WebinarID).Scan(&seats)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrWebinarNotFound
		}
		return fmt.Errorf("read webinar seats: %w", err)
	}

	var dup int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participations WHERE webinar_id = ? AND user_id = ?`,
		p.WebinarID, p.UserID,
	).Scan(&dup)
	if err != nil {
		return fmt.Errorf("check duplicate: %w", err)
	}
	if dup > 0 {
		return model.ErrAlreadyParticipating
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO participations (id, user_id, webinar_id, created_at)
		 SELECT ?, ?, ?, ?
		 WHERE (SELECT COUNT(*) FROM participations WHERE webinar_id = ?) < ?`,
		p.ID, p.UserID, p.WebinarID, toMillis(p.CreatedAt), p.WebinarID, seats,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrAlreadyParticipating
		}
		return fmt.Errorf("insert participation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return model.ErrNoSeatsAvailable
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
