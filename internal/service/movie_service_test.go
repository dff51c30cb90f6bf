package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/popcorn-palace/internal/service"
)

func validMovie() service.MovieInput {
	return service.MovieInput{Title: "Inception", Genre: "Sci-Fi", Duration: 148, Rating: 8.8, ReleaseYear: 2010}
}

func TestAddMovie_Success(t *testing.T) {
	e := newEnv(t)
	m, err := e.movies.AddMovie(context.Background(), validMovie())
	require.NoError(t, err)
	assert.NotZero(t, m.ID)
	assert.Equal(t, "Inception", m.Title)

	got, err := e.movies.GetMovie(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, *m, *got)
}

func TestAddMovie_Validation(t *testing.T) {
	tests := []struct {
		name string
		edit func(*service.MovieInput)
	}{
		{"empty title", func(in *service.MovieInput) { in.Title = "" }},
		{"blank title", func(in *service.MovieInput) { in.Title = "   " }},
		{"leading space", func(in *service.MovieInput) { in.Title = " Inception" }},
		{"unknown genre", func(in *service.MovieInput) { in.Genre = "Western" }},
		{"zero duration", func(in *service.MovieInput) { in.Duration = 0 }},
		{"long duration", func(in *service.MovieInput) { in.Duration = 301 }},
		{"negative rating", func(in *service.MovieInput) { in.Rating = -0.1 }},
		{"high rating", func(in *service.MovieInput) { in.Rating = 10.5 }},
		{"zero year", func(in *service.MovieInput) { in.ReleaseYear = 0 }},
		{"future year", func(in *service.MovieInput) { in.ReleaseYear = now.Year() + 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			in := validMovie()
			tt.edit(&in)
			_, err := e.movies.AddMovie(context.Background(), in)
			assert.ErrorIs(t, err, service.ErrInvalidArgument)
		})
	}
}

func TestAddMovie_DuplicateTitleAndYear(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.movies.AddMovie(ctx, validMovie())
	require.NoError(t, err)

	_, err = e.movies.AddMovie(ctx, validMovie())
	assert.ErrorIs(t, err, service.ErrConflict)

	remake := validMovie()
	remake.ReleaseYear = 2024
	_, err = e.movies.AddMovie(ctx, remake)
	assert.NoError(t, err)
}

func TestUpdateMovieByTitle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	m, err := e.movies.AddMovie(ctx, validMovie())
	require.NoError(t, err)

	rating := 9.0
	got, err := e.movies.UpdateMovieByTitle(ctx, "Inception", service.MoviePatch{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, 9.0, got.Rating)
	assert.Equal(t, "Sci-Fi", got.Genre)

	_, err = e.movies.UpdateMovieByTitle(ctx, "inception", service.MoviePatch{Rating: &rating})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateMovieByID_ConflictOnRename(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.movies.AddMovie(ctx, validMovie())
	require.NoError(t, err)
	other := validMovie()
	other.Title = "Tenet"
	m, err := e.movies.AddMovie(ctx, other)
	require.NoError(t, err)

	title := "Inception"
	_, err = e.movies.UpdateMovieByID(ctx, m.ID, service.MoviePatch{Title: &title})
	assert.ErrorIs(t, err, service.ErrConflict)

	bad := "Noir"
	_, err = e.movies.UpdateMovieByID(ctx, m.ID, service.MoviePatch{Genre: &bad})
	assert.ErrorIs(t, err, service.ErrInvalidArgument)

	_, err = e.movies.UpdateMovieByID(ctx, 999, service.MoviePatch{Title: &title})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDeleteMovie_CascadesToShowtimesAndBookings(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	m := e.movie(t, "Alien")
	st := e.showtime(t, m.ID, "Cinema 1", at(10, 0), at(12, 0))
	b, err := e.bookings.CreateBooking(ctx, service.BookingInput{ShowtimeID: st.ID, SeatNumber: 1, UserID: "u1"})
	require.NoError(t, err)

	require.NoError(t, e.movies.DeleteMovieByTitle(ctx, "Alien"))

	_, err = e.showtimes.GetShowtime(ctx, st.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = e.bookings.GetBooking(ctx, b.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	assert.ErrorIs(t, e.movies.DeleteMovieByTitle(ctx, "Alien"), service.ErrNotFound)
	assert.ErrorIs(t, e.movies.DeleteMovieByID(ctx, m.ID), service.ErrNotFound)
}

func TestListMovies(t *testing.T) {
	e := newEnv(t)
	movies, err := e.movies.ListMovies(context.Background())
	require.NoError(t, err)
	assert.Empty(t, movies)

	e.movie(t, "A")
	e.movie(t, "B")
	movies, err = e.movies.ListMovies(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "A", movies[0].Title)
}
