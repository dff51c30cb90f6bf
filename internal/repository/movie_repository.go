package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"       // errors for sentinel comparisons

	"github.com/iliyamo/popcorn-palace/internal/model"
)

// MovieRepo manages persistence for movies.  The movies table carries a
// unique index on (title, release_year); violations surface as
// ErrDuplicate.  Deleting a movie cascades to its showtimes and, through
// them, to their bookings via ON DELETE CASCADE foreign keys.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

const movieColumns = `id, title, genre, duration, rating, release_year`

func scanMovie(row interface{ Scan(dest ...any) error }, m *model.Movie) error {
	return row.Scan(&m.ID, &m.Title, &m.Genre, &m.Duration, &m.Rating, &m.ReleaseYear)
}

// List returns every movie ordered by id.  It returns an empty slice when
// the catalogue is empty.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+movieColumns+` FROM movies ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.Movie{}
	for rows.Next() {
		var m model.Movie
		if err := scanMovie(rows, &m); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID retrieves a movie by its ID.  It returns ErrMovieNotFound if
// there is no matching row.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	return r.getOne(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = ?`, id)
}

// GetByTitle retrieves the lowest-id movie with exactly the given title.
func (r *MovieRepo) GetByTitle(ctx context.Context, title string) (*model.Movie, error) {
	return r.getOne(ctx, `SELECT `+movieColumns+` FROM movies WHERE title = ? ORDER BY id ASC LIMIT 1`, title)
}

// FindByTitleAndYear retrieves the movie identified by the unique
// (title, release_year) pair.
func (r *MovieRepo) FindByTitleAndYear(ctx context.Context, title string, year int) (*model.Movie, error) {
	return r.getOne(ctx, `SELECT `+movieColumns+` FROM movies WHERE title = ? AND release_year = ?`, title, year)
}

func (r *MovieRepo) getOne(ctx context.Context, q string, args ...any) (*model.Movie, error) {
	var m model.Movie
	if err := scanMovie(r.db.QueryRowContext(ctx, q, args...), &m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Create inserts a new movie and assigns the generated ID back to it.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	const q = `INSERT INTO movies (title, genre, duration, rating, release_year) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.Title, m.Genre, m.Duration, m.Rating, m.ReleaseYear)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// Update overwrites every column of the movie identified by m.ID.  The
// caller is expected to have loaded the row first; an UPDATE that leaves
// values unchanged is not an error.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	const q = `UPDATE movies SET title = ?, genre = ?, duration = ?, rating = ?, release_year = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, m.Title, m.Genre, m.Duration, m.Rating, m.ReleaseYear, m.ID); err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// DeleteByID removes a movie.  It returns ErrMovieNotFound when no row
// was affected.
func (r *MovieRepo) DeleteByID(ctx context.Context, id uint64) error {
	return r.delete(ctx, `DELETE FROM movies WHERE id = ?`, id)
}

// DeleteByTitle removes every movie with exactly the given title.  It
// returns ErrMovieNotFound when no row was affected.
func (r *MovieRepo) DeleteByTitle(ctx context.Context, title string) error {
	return r.delete(ctx, `DELETE FROM movies WHERE title = ?`, title)
}

func (r *MovieRepo) delete(ctx context.Context, q string, arg any) error {
	res, err := r.db.ExecContext(ctx, q, arg)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMovieNotFound
	}
	return nil
}
