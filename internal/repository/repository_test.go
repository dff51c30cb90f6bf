package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/popcorn-palace/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var (
	dupEntry  = &mysql.MySQLError{Number: mysqlDupEntry, Message: "Duplicate entry"}
	noParent  = &mysql.MySQLError{Number: mysqlNoReferencedRow, Message: "Cannot add or update a child row"}
	movieCols = []string{"id", "title", "genre", "duration", "rating", "release_year"}
)

func TestMovieRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMovieRepo(db)

	mock.ExpectExec(`INSERT INTO movies`).
		WithArgs("Heat", "Action", 170, 8.3, 1995).
		WillReturnResult(sqlmock.NewResult(7, 1))
	m := &model.Movie{Title: "Heat", Genre: "Action", Duration: 170, Rating: 8.3, ReleaseYear: 1995}
	require.NoError(t, repo.Create(context.Background(), m))
	assert.Equal(t, uint64(7), m.ID)

	mock.ExpectExec(`INSERT INTO movies`).WillReturnError(dupEntry)
	assert.ErrorIs(t, repo.Create(context.Background(), &model.Movie{Title: "Heat"}), ErrDuplicate)
}

func TestMovieRepo_GetByTitle(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMovieRepo(db)

	mock.ExpectQuery(`FROM movies WHERE title = \? ORDER BY id ASC LIMIT 1`).
		WithArgs("Heat").
		WillReturnRows(sqlmock.NewRows(movieCols).AddRow(3, "Heat", "Action", 170, 8.3, 1995))
	m, err := repo.GetByTitle(context.Background(), "Heat")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), m.ID)

	mock.ExpectQuery(`FROM movies WHERE id = \?`).WithArgs(99).WillReturnRows(sqlmock.NewRows(movieCols))
	_, err = repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestMovieRepo_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMovieRepo(db)

	mock.ExpectExec(`DELETE FROM movies WHERE title = \?`).WithArgs("Heat").WillReturnResult(sqlmock.NewResult(0, 2))
	assert.NoError(t, repo.DeleteByTitle(context.Background(), "Heat"))

	mock.ExpectExec(`DELETE FROM movies WHERE id = \?`).WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.DeleteByID(context.Background(), 5), ErrMovieNotFound)
}

func TestShowtimeRepo_CreateLocksTheater(t *testing.T) {
	db, mock := newMock(t)
	repo := NewShowtimeRepo(db)
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO theater_locks`).WithArgs("Cinema 1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM showtimes s\s+WHERE s.theater = \?`).
		WithArgs("Cinema 1", 0, end, start).
		WillReturnRows(sqlmock.NewRows([]string{"id", "movie_id", "theater", "start_time", "end_time", "price"}))
	mock.ExpectExec(`INSERT INTO showtimes`).
		WithArgs(1, "Cinema 1", start, end, 12.5).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	st := &model.Showtime{MovieID: 1, Theater: "Cinema 1", StartTime: start, EndTime: end, Price: 12.5}
	require.NoError(t, repo.Create(context.Background(), st))
	assert.Equal(t, uint64(11), st.ID)
}

func TestShowtimeRepo_CreateOverlapRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewShowtimeRepo(db)
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO theater_locks`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`FROM showtimes s\s+WHERE s.theater = \?`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "movie_id", "theater", "start_time", "end_time", "price"}).
			AddRow(4, 1, "Cinema 1", start, end, 10.0))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.Showtime{MovieID: 1, Theater: "Cinema 1", StartTime: start, EndTime: end, Price: 1})
	assert.ErrorIs(t, err, ErrOverlap)
}

func TestShowtimeRepo_CreateMissingMovie(t *testing.T) {
	db, mock := newMock(t)
	repo := NewShowtimeRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO theater_locks`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM showtimes s`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`INSERT INTO showtimes`).WillReturnError(noParent)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.Showtime{MovieID: 9, Theater: "Cinema 1"})
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestShowtimeRepo_UpdateMissingRow(t *testing.T) {
	db, mock := newMock(t)
	repo := NewShowtimeRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO theater_locks`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT id FROM showtimes WHERE id = \? FOR UPDATE`).WithArgs(3).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &model.Showtime{ID: 3, Theater: "Cinema 1"})
	assert.ErrorIs(t, err, ErrShowtimeNotFound)
}

func TestShowtimeRepo_UpdateOverlapRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewShowtimeRepo(db)
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO theater_locks`).WithArgs("Cinema 1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT id FROM showtimes WHERE id = \? FOR UPDATE`).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(`FROM showtimes s\s+WHERE s.theater = \?`).WithArgs("Cinema 1", 3, end, start).
		WillReturnRows(sqlmock.NewRows([]string{"id", "movie_id", "theater", "start_time", "end_time", "price"}).
			AddRow(7, 1, "Cinema 1", start.Add(time.Hour), end.Add(time.Hour), 10.0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &model.Showtime{ID: 3, MovieID: 1, Theater: "Cinema 1", StartTime: start, EndTime: end, Price: 10})
	assert.ErrorIs(t, err, ErrOverlap)
}

func TestShowtimeRepo_ListSales(t *testing.T) {
	db, mock := newMock(t)
	repo := NewShowtimeRepo(db)
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`LEFT JOIN bookings b ON b.showtime_id = s.id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "theater", "start_time", "end_time", "price", "title", "count"}).
			AddRow(1, "Cinema 1", start, start.Add(time.Hour), 10.0, "Heat", 3).
			AddRow(2, "Cinema 2", start, start.Add(time.Hour), 10.0, "Heat", 0))

	sales, err := repo.ListSales(context.Background())
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, 3, sales[0].TicketsSold)
	assert.Equal(t, 0, sales[1].TicketsSold)
}

func TestBookingRepo_CreateMapsDriverErrors(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO bookings`).WithArgs(1, 5, "u").WillReturnResult(sqlmock.NewResult(21, 1))
	b := &model.Booking{ShowtimeID: 1, SeatNumber: 5, UserID: "u"}
	require.NoError(t, repo.Create(ctx, b))
	assert.Equal(t, uint64(21), b.ID)

	mock.ExpectExec(`INSERT INTO bookings`).WillReturnError(dupEntry)
	assert.ErrorIs(t, repo.Create(ctx, &model.Booking{ShowtimeID: 1, SeatNumber: 5}), ErrDuplicate)

	mock.ExpectExec(`INSERT INTO bookings`).WillReturnError(noParent)
	assert.ErrorIs(t, repo.Create(ctx, &model.Booking{ShowtimeID: 9, SeatNumber: 5}), ErrShowtimeNotFound)

	mock.ExpectExec(`UPDATE bookings`).WillReturnError(dupEntry)
	assert.ErrorIs(t, repo.Update(ctx, &model.Booking{ID: 21, ShowtimeID: 1, SeatNumber: 6}), ErrDuplicate)
}

func TestBookingRepo_FindBySeat(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)
	cols := []string{"id", "showtime_id", "seat_number", "user_id"}

	mock.ExpectQuery(`WHERE showtime_id = \? AND seat_number = \?`).WithArgs(1, 5).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(21, 1, 5, "u"))
	b, err := repo.FindBySeat(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, "u", b.UserID)

	mock.ExpectQuery(`WHERE showtime_id = \? AND seat_number = \?`).WithArgs(1, 6).WillReturnRows(sqlmock.NewRows(cols))
	_, err = repo.FindBySeat(context.Background(), 1, 6)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	mock.ExpectExec(`DELETE FROM bookings`).WithArgs(21).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 21), ErrBookingNotFound)
}
