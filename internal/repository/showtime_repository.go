// Package repository contains data access logic for showtimes.  A showtime is a
// scheduled screening of a movie in a theater.  Writes go through a per-theater
// lock row so that two concurrent requests can never both pass the overlap check
// for the same theater.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"       // errors for sentinel comparisons
	"time"         // time for interval bounds

	"github.com/iliyamo/popcorn-palace/internal/model"
)

// ShowtimeRepo manages persistence for showtimes.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo constructs a ShowtimeRepo with the given DB handle.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo {
	return &ShowtimeRepo{db: db}
}

const showtimeColumns = `s.id, s.movie_id, s.theater, s.start_time, s.end_time, s.price`

const showtimeWithMovie = `SELECT ` + showtimeColumns + `, m.id, m.title, m.genre, m.duration, m.rating, m.release_year
               FROM showtimes s
               JOIN movies m ON m.id = s.movie_id`

func scanShowtime(row interface{ Scan(dest ...any) error }, s *model.Showtime) error {
	return row.Scan(&s.ID, &s.MovieID, &s.Theater, &s.StartTime, &s.EndTime, &s.Price)
}

func scanShowtimeWithMovie(row interface{ Scan(dest ...any) error }, s *model.Showtime) error {
	var m model.Movie
	if err := row.Scan(
		&s.ID, &s.MovieID, &s.Theater, &s.StartTime, &s.EndTime, &s.Price,
		&m.ID, &m.Title, &m.Genre, &m.Duration, &m.Rating, &m.ReleaseYear,
	); err != nil {
		return err
	}
	s.Movie = &m
	return nil
}

// List returns all showtimes with their movie, ordered by start time.
func (r *ShowtimeRepo) List(ctx context.Context) ([]model.Showtime, error) {
	rows, err := r.db.QueryContext(ctx, showtimeWithMovie+` ORDER BY s.start_time ASC, s.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.Showtime{}
	for rows.Next() {
		var s model.Showtime
		if err := scanShowtimeWithMovie(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListSales returns every showtime with its movie title and the number of
// bookings made for it.  Showtimes without bookings report zero.
func (r *ShowtimeRepo) ListSales(ctx context.Context) ([]model.ShowtimeSales, error) {
	const q = `SELECT s.id, s.theater, s.start_time, s.end_time, s.price, m.title, COUNT(b.id)
               FROM showtimes s
               JOIN movies m ON m.id = s.movie_id
               LEFT JOIN bookings b ON b.showtime_id = s.id
               GROUP BY s.id, s.theater, s.start_time, s.end_time, s.price, m.title
               ORDER BY s.start_time ASC, s.id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.ShowtimeSales{}
	for rows.Next() {
		var s model.ShowtimeSales
		if err := rows.Scan(&s.ID, &s.Theater, &s.StartTime, &s.EndTime, &s.Price, &s.MovieTitle, &s.TicketsSold); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID retrieves a showtime and its movie.  It returns
// ErrShowtimeNotFound if there is no matching row.
func (r *ShowtimeRepo) GetByID(ctx context.Context, id uint64) (*model.Showtime, error) {
	var s model.Showtime
	if err := scanShowtimeWithMovie(r.db.QueryRowContext(ctx, showtimeWithMovie+` WHERE s.id = ?`, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowtimeNotFound
		}
		return nil, err
	}
	return &s, nil
}

// overlapQuery selects showtimes of a theater intersecting [start, end]
// with inclusive bounds: existing.start <= end AND existing.end >= start.
// The theater column uses a binary collation so the match is exact.
const overlapQuery = `SELECT ` + showtimeColumns + `
               FROM showtimes s
               WHERE s.theater = ? AND s.id <> ? AND s.start_time <= ? AND s.end_time >= ?
               ORDER BY s.start_time ASC`

// FindOverlapping finds all showtimes in the theater whose interval
// intersects [start, end].  The showtime with excludeID is ignored; pass 0
// to exclude nothing.  It returns an empty slice when no overlaps exist.
func (r *ShowtimeRepo) FindOverlapping(ctx context.Context, theater string, start, end time.Time, excludeID uint64) ([]model.Showtime, error) {
	return findOverlapping(ctx, r.db, theater, start, end, excludeID)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func findOverlapping(ctx context.Context, q queryer, theater string, start, end time.Time, excludeID uint64) ([]model.Showtime, error) {
	rows, err := q.QueryContext(ctx, overlapQuery, theater, excludeID, end, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	overlaps := []model.Showtime{}
	for rows.Next() {
		var s model.Showtime
		if err := scanShowtime(rows, &s); err != nil {
			return nil, err
		}
		overlaps = append(overlaps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return overlaps, nil
}

// lockTheater takes an exclusive row lock on the theater's lock row,
// creating it on first use.  Every showtime write for the theater runs
// after this statement in the same transaction, so writers for one
// theater are serialized until commit.
func lockTheater(ctx context.Context, tx *sql.Tx, theater string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO theater_locks (theater) VALUES (?) ON DUPLICATE KEY UPDATE theater = theater`, theater)
	return err
}

// Create inserts a new showtime after re-checking, under the theater lock,
// that it overlaps no other showtime.  It returns ErrOverlap when it does
// and ErrMovieNotFound when the referenced movie does not exist.  On
// success the generated ID is assigned to s.
func (r *ShowtimeRepo) Create(ctx context.Context, s *model.Showtime) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockTheater(ctx, tx, s.Theater); err != nil {
			return err
		}
		overlaps, err := findOverlapping(ctx, tx, s.Theater, s.StartTime, s.EndTime, 0)
		if err != nil {
			return err
		}
		if len(overlaps) > 0 {
			return ErrOverlap
		}
		const q = `INSERT INTO showtimes (movie_id, theater, start_time, end_time, price) VALUES (?, ?, ?, ?, ?)`
		res, err := tx.ExecContext(ctx, q, s.MovieID, s.Theater, s.StartTime, s.EndTime, s.Price)
		if err != nil {
			if isMissingParent(err) {
				return ErrMovieNotFound
			}
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		s.ID = uint64(id)
		return nil
	})
}

// Update overwrites the showtime identified by s.ID.  Like Create it
// re-checks overlaps under the lock of the (possibly new) theater,
// ignoring the showtime itself.  It returns ErrShowtimeNotFound when the
// row vanished, ErrOverlap on conflict and ErrMovieNotFound when the new
// movie does not exist.
func (r *ShowtimeRepo) Update(ctx context.Context, s *model.Showtime) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockTheater(ctx, tx, s.Theater); err != nil {
			return err
		}
		var id uint64
		if err := tx.QueryRowContext(ctx, `SELECT id FROM showtimes WHERE id = ? FOR UPDATE`, s.ID).Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrShowtimeNotFound
			}
			return err
		}
		overlaps, err := findOverlapping(ctx, tx, s.Theater, s.StartTime, s.EndTime, s.ID)
		if err != nil {
			return err
		}
		if len(overlaps) > 0 {
			return ErrOverlap
		}
		const q = `UPDATE showtimes SET movie_id = ?, theater = ?, start_time = ?, end_time = ?, price = ? WHERE id = ?`
		if _, err := tx.ExecContext(ctx, q, s.MovieID, s.Theater, s.StartTime, s.EndTime, s.Price, s.ID); err != nil {
			if isMissingParent(err) {
				return ErrMovieNotFound
			}
			return err
		}
		return nil
	})
}

// Delete removes a showtime; its bookings go with it through the
// foreign key cascade.  It returns ErrShowtimeNotFound when no row was
// affected.
func (r *ShowtimeRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM showtimes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrShowtimeNotFound
	}
	return nil
}

// withTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()
	return fn(tx)
}
