package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/popcorn-palace/internal/model"
	"github.com/iliyamo/popcorn-palace/internal/repository/memory"
	"github.com/iliyamo/popcorn-palace/internal/service"
)

// now is the fixed instant every test clock reports.
var now = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) service.Clock {
	return service.ClockFunc(func() time.Time { return t })
}

// at returns a time on the day after now.
func at(hour, min int) time.Time {
	return time.Date(2025, time.June, 2, hour, min, 0, 0, time.UTC)
}

type env struct {
	store     *memory.Store
	movies    *service.MovieService
	showtimes *service.ShowtimeService
	bookings  *service.BookingService
}

func newEnv(t *testing.T, opts ...service.BookingOption) *env {
	t.Helper()
	st := memory.New()
	clock := fixedClock(now)
	return &env{
		store:     st,
		movies:    service.NewMovieService(st.Movies(), clock, nil),
		showtimes: service.NewShowtimeService(st.Showtimes(), st.Movies(), clock, nil),
		bookings:  service.NewBookingService(st.Bookings(), st.Showtimes(), clock, opts...),
	}
}

func (e *env) movie(t *testing.T, title string) *model.Movie {
	t.Helper()
	m, err := e.movies.AddMovie(context.Background(), service.MovieInput{
		Title: title, Genre: "Action", Duration: 120, Rating: 8.1, ReleaseYear: 2020,
	})
	require.NoError(t, err)
	return m
}

func (e *env) showtime(t *testing.T, movieID uint64, theater string, start, end time.Time) *model.Showtime {
	t.Helper()
	st, err := e.showtimes.AddShowtime(context.Background(), service.ShowtimeInput{
		MovieID: movieID, Theater: theater, StartTime: start, EndTime: end, Price: 12.5,
	})
	require.NoError(t, err)
	return st
}

type mockLocker struct {
	mock.Mock
}

func (m *mockLocker) AcquireSeatLock(ctx context.Context, showtimeID uint64, seat int, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, showtimeID, seat, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockLocker) ReleaseSeatLock(ctx context.Context, showtimeID uint64, seat int, token string) error {
	args := m.Called(ctx, showtimeID, seat, token)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, queue string, payload any) error {
	args := m.Called(ctx, queue, payload)
	return args.Error(0)
}
