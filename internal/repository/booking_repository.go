package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/popcorn-palace/internal/model"
)

// BookingRepo provides CRUD operations for bookings.  The bookings table
// carries a unique index on (showtime_id, seat_number) which is the real
// guarantee against double booking; the service's pre-check only yields a
// friendlier error.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, showtime_id, seat_number, user_id`

func scanBooking(row interface{ Scan(dest ...any) error }, b *model.Booking) error {
	return row.Scan(&b.ID, &b.ShowtimeID, &b.SeatNumber, &b.UserID)
}

// List returns all bookings ordered by id.
func (r *BookingRepo) List(ctx context.Context) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.Booking{}
	for rows.Next() {
		var b model.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID returns the booking or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
}

// FindBySeat returns the booking holding the seat of the showtime, or
// ErrBookingNotFound when the seat is free.
func (r *BookingRepo) FindBySeat(ctx context.Context, showtimeID uint64, seat int) (*model.Booking, error) {
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE showtime_id = ? AND seat_number = ?`, showtimeID, seat)
}

func (r *BookingRepo) getOne(ctx context.Context, q string, args ...any) (*model.Booking, error) {
	var b model.Booking
	if err := scanBooking(r.db.QueryRowContext(ctx, q, args...), &b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Create inserts the booking and assigns its generated ID.  A taken seat
// yields ErrDuplicate; a missing showtime yields ErrShowtimeNotFound.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (showtime_id, seat_number, user_id) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, b.ShowtimeID, b.SeatNumber, b.UserID)
	if err != nil {
		return mapBookingWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// Update overwrites the booking identified by b.ID.
func (r *BookingRepo) Update(ctx context.Context, b *model.Booking) error {
	const q = `UPDATE bookings SET showtime_id = ?, seat_number = ?, user_id = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, b.ShowtimeID, b.SeatNumber, b.UserID, b.ID); err != nil {
		return mapBookingWriteErr(err)
	}
	return nil
}

func mapBookingWriteErr(err error) error {
	switch {
	case isDuplicate(err):
		return ErrDuplicate
	case isMissingParent(err):
		return ErrShowtimeNotFound
	}
	return err
}

// Delete removes a booking and returns ErrBookingNotFound when nothing
// was deleted.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return nil
}
