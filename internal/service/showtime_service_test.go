package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/popcorn-palace/internal/service"
)

func TestAddShowtime_OverlapSameTheaterRejected(t *testing.T) {
	e := newEnv(t)
	m := e.movie(t, "Heat")
	e.showtime(t, m.ID, "Cinema 1", at(10, 0), at(12, 0))

	_, err := e.showtimes.AddShowtime(context.Background(), service.ShowtimeInput{
		MovieID: m.ID, Theater: "Cinema 1", StartTime: at(11, 0), EndTime: at(13, 0), Price: 10,
	})
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = e.showtimes.AddShowtime(context.Background(), service.ShowtimeInput{
		MovieID: m.ID, Theater: "Cinema 2", StartTime: at(11, 0), EndTime: at(13, 0), Price: 10,
	})
	assert.NoError(t, err)
}

func TestAddShowtime_ConcurrentOverlapping(t *testing.T) {
	e := newEnv(t)
	m := e.movie(t, "Heat")

	const n = 20
	var (
		wg   sync.WaitGroup
		errs = make([]error, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Every interval covers 11:00-12:00, so any two of them overlap.
			start := at(10, i)
			_, errs[i] = e.showtimes.AddShowtime(context.Background(), service.ShowtimeInput{
				MovieID: m.ID, Theater: "Cinema 1", StartTime: start, EndTime: start.Add(2 * time.Hour), Price: 10,
			})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, service.ErrConflict)
	}
	assert.Equal(t, 1, created)

	list, err := e.showtimes.ListShowtimes(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAddShowtime_OverlapPredicate(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		overlap    bool
	}{
		{"disjoint after", at(12, 1), at(14, 0), false},
		{"disjoint before", at(7, 0), at(9, 59), false},
		{"touching end", at(12, 0), at(14, 0), true},
		{"touching start", at(8, 0), at(10, 0), true},
		{"contained", at(10, 30), at(11, 30), true},
		{"containing", at(9, 0), at(13, 0), true},
		{"identical", at(10, 0), at(12, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			m := e.movie(t, "Heat")
			e.showtime(t, m.ID, "Cinema 1", at(10, 0), at(12, 0))

			_, err := e.showtimes.AddShowtime(context.Background(), service.ShowtimeInput{
				MovieID: m.ID, Theater: "Cinema 1", StartTime: tt.start, EndTime: tt.end, Price: 10,
			})
			if tt.overlap {
				assert.ErrorIs(t, err, service.ErrConflict)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAddShowtime_TheaterMatchIsCaseSensitive(t *testing.T) {
	e := newEnv(t)
	m := e.movie(t, "Heat")
	e.showtime(t, m.ID, "Cinema 1", at(10, 0), at(12, 0))

	overlap, err := e.showtimes.CheckOverlap(context.Background(), "cinema 1", at(10, 0), at(12, 0), 0)
	require.NoError(t, err)
	assert.False(t, overlap)
}

func TestAddShowtime_Validation(t *testing.T) {
	e := newEnv(t)
	m := e.movie(t, "Heat")
	base := service.ShowtimeInput{MovieID: m.ID, Theater: "Cinema 1", StartTime: at(10, 0), EndTime: at(12, 0), Price: 10}

	tests := []struct {
		name string
		edit func(*service.ShowtimeInput)
		want error
	}{
		{"blank theater", func(in *service.ShowtimeInput) { in.Theater = " " }, service.ErrInvalidArgument},
		{"zero price", func(in *service.ShowtimeInput) { in.Price = 0 }, service.ErrInvalidArgument},
		{"zero movie", func(in *service.ShowtimeInput) { in.MovieID = 0 }, service.ErrInvalidArgument},
		{"start now", func(in *service.ShowtimeInput) { in.StartTime = now; in.EndTime = at(1, 0) }, service.ErrInvalidArgument},
		{"start past", func(in *service.ShowtimeInput) { in.StartTime = now.Add(-time.Hour) }, service.ErrInvalidArgument},
		{"end before start", func(in *service.ShowtimeInput) { in.EndTime = at(9, 0) }, service.ErrInvalidArgument},
		{"end equals start", func(in *service.ShowtimeInput) { in.EndTime = in.StartTime }, service.ErrInvalidArgument},
		{"unknown movie", func(in *service.ShowtimeInput) { in.MovieID = 999 }, service.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.edit(&in)
			_, err := e.showtimes.AddShowtime(context.Background(), in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAddShowtime_NormalizesToUTC(t *testing.T) {
	e := newEnv(t)
	m := e.movie(t, "Heat")
	loc := time.FixedZone("UTC+2", 2*60*60)
	st, err := e.showtimes.AddShowtime(context.Background(), service.ShowtimeInput{
		MovieID: m.ID, Theater: "Cinema 1", StartTime: at(10, 0).In(loc), EndTime: at(12, 0).In(loc), Price: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, st.StartTime.Location())
	assert.True(t, st.StartTime.Equal(at(10, 0)))
}

func TestUpdateShowtime_ExcludesItself(t *testing.T) {
	e := newEnv(t)
	m := e.movie(t, "Heat")
	st := e.showtime(t, m.ID, "Cinema 1", at(10, 0), at(12, 0))

	end := at(12, 30)
	got, err := e.showtimes.UpdateShowtime(context.Background(), st.ID, service.ShowtimePatch{EndTime: &end})
	require.NoError(t, err)
	assert.True(t, got.EndTime.Equal(end))
}

func TestUpdateShowtime_OverlapWithOther(t *testing.T) {
	e := newEnv(t)
	m := e.movie(t, "Heat")
	e.showtime(t, m.ID, "Cinema 1", at(10, 0), at(12, 0))
	other := e.showtime(t, m.ID, "Cinema 2", at(10, 0), at(12, 0))

	theater := "Cinema 1"
	_, err := e.showtimes.UpdateShowtime(context.Background(), other.ID, service.ShowtimePatch{Theater: &theater})
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestUpdateShowtime_Rules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	m := e.movie(t, "Heat")
	st := e.showtime(t, m.ID, "Cinema 1", at(10, 0), at(12, 0))

	past := now.Add(-time.Minute)
	_, err := e.showtimes.UpdateShowtime(ctx, st.ID, service.ShowtimePatch{StartTime: &past})
	assert.ErrorIs(t, err, service.ErrInvalidArgument)

	early := at(9, 0)
	_, err = e.showtimes.UpdateShowtime(ctx, st.ID, service.ShowtimePatch{EndTime: &early})
	assert.ErrorIs(t, err, service.ErrInvalidArgument)

	price := -1.0
	_, err = e.showtimes.UpdateShowtime(ctx, st.ID, service.ShowtimePatch{Price: &price})
	assert.ErrorIs(t, err, service.ErrInvalidArgument)

	missing := uint64(999)
	_, err = e.showtimes.UpdateShowtime(ctx, st.ID, service.ShowtimePatch{MovieID: &missing})
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = e.showtimes.UpdateShowtime(ctx, 999, service.ShowtimePatch{Price: &price})
	assert.ErrorIs(t, err, service.ErrNotFound)

	price = 20
	got, err := e.showtimes.UpdateShowtime(ctx, st.ID, service.ShowtimePatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 20.0, got.Price)
}

func TestUpdateShowtime_StartedShowtimeKeepsStart(t *testing.T) {
	e := newEnv(t)
	m := e.movie(t, "Heat")
	show := e.showtime(t, m.ID, "Cinema 1", at(10, 0), at(12, 0))

	// Once the clock passes the start, a price change must still succeed.
	later := service.NewShowtimeService(e.store.Showtimes(), e.store.Movies(), fixedClock(at(11, 0)), nil)
	price := 15.0
	_, err := later.UpdateShowtime(context.Background(), show.ID, service.ShowtimePatch{Price: &price})
	assert.NoError(t, err)
}

func TestDeleteShowtime(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	m := e.movie(t, "Heat")
	st := e.showtime(t, m.ID, "Cinema 1", at(10, 0), at(12, 0))

	require.NoError(t, e.showtimes.DeleteShowtime(ctx, st.ID))
	assert.ErrorIs(t, e.showtimes.DeleteShowtime(ctx, st.ID), service.ErrNotFound)

	// The freed slot can be scheduled again.
	e.showtime(t, m.ID, "Cinema 1", at(10, 0), at(12, 0))
}

func TestListShowtimeSales(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	m := e.movie(t, "Heat")
	first := e.showtime(t, m.ID, "Cinema 1", at(10, 0), at(12, 0))
	e.showtime(t, m.ID, "Cinema 1", at(14, 0), at(16, 0))
	for seat := 1; seat <= 3; seat++ {
		_, err := e.bookings.CreateBooking(ctx, service.BookingInput{ShowtimeID: first.ID, SeatNumber: seat, UserID: "u"})
		require.NoError(t, err)
	}

	sales, err := e.showtimes.ListShowtimeSales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, 3, sales[0].TicketsSold)
	assert.Equal(t, 0, sales[1].TicketsSold)
	assert.Equal(t, "Heat", sales[0].MovieTitle)

	list, err := e.showtimes.ListShowtimes(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].Movie)
	assert.Equal(t, "Heat", list[0].Movie.Title)
}
