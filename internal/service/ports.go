package service

import (
	"context"
	"time"

	"github.com/iliyamo/popcorn-palace/internal/model"
)

// MovieStore persists movies.  Implementations return the sentinels from
// package repository: ErrMovieNotFound for missing rows and ErrDuplicate
// for a (title, release_year) clash.
type MovieStore interface {
	List(ctx context.Context) ([]model.Movie, error)
	GetByID(ctx context.Context, id uint64) (*model.Movie, error)
	GetByTitle(ctx context.Context, title string) (*model.Movie, error)
	FindByTitleAndYear(ctx context.Context, title string, year int) (*model.Movie, error)
	Create(ctx context.Context, m *model.Movie) error
	Update(ctx context.Context, m *model.Movie) error
	DeleteByID(ctx context.Context, id uint64) error
	DeleteByTitle(ctx context.Context, title string) error
}

// ShowtimeStore persists showtimes.  Create and Update must re-run the
// overlap predicate atomically with the write and return
// repository.ErrOverlap when it fails.
type ShowtimeStore interface {
	List(ctx context.Context) ([]model.Showtime, error)
	ListSales(ctx context.Context) ([]model.ShowtimeSales, error)
	GetByID(ctx context.Context, id uint64) (*model.Showtime, error)
	FindOverlapping(ctx context.Context, theater string, start, end time.Time, excludeID uint64) ([]model.Showtime, error)
	Create(ctx context.Context, s *model.Showtime) error
	Update(ctx context.Context, s *model.Showtime) error
	Delete(ctx context.Context, id uint64) error
}

// BookingStore persists bookings.  Create and Update return
// repository.ErrDuplicate when the (showtime, seat) pair is taken.
type BookingStore interface {
	List(ctx context.Context) ([]model.Booking, error)
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	FindBySeat(ctx context.Context, showtimeID uint64, seat int) (*model.Booking, error)
	Create(ctx context.Context, b *model.Booking) error
	Update(ctx context.Context, b *model.Booking) error
	Delete(ctx context.Context, id uint64) error
}

// SeatLocker guards a seat while a booking for it is being written.
// AcquireSeatLock hands back a token that ReleaseSeatLock must present, so
// a holder whose guard expired cannot drop someone else's.
type SeatLocker interface {
	AcquireSeatLock(ctx context.Context, showtimeID uint64, seat int, ttl time.Duration) (token string, ok bool, err error)
	ReleaseSeatLock(ctx context.Context, showtimeID uint64, seat int, token string) error
}

// EventPublisher delivers domain events to a broker queue.
type EventPublisher interface {
	Publish(ctx context.Context, queue string, payload any) error
}
