package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/iliyamo/popcorn-palace/internal/model"
	"github.com/iliyamo/popcorn-palace/internal/repository"
)

// Genres lists the accepted movie genres.
var Genres = []string{
	"Action", "Comedy", "Drama", "Horror", "Romance",
	"Thriller", "Sci-Fi", "Fantasy", "Animation", "Documentary",
}

const (
	minDuration = 1
	maxDuration = 300
	minRating   = 0
	maxRating   = 10
)

// MovieInput carries the fields of a new movie.
type MovieInput struct {
	Title       string
	Genre       string
	Duration    int
	Rating      float64
	ReleaseYear int
}

// MoviePatch carries optional overwrites for an existing movie.
type MoviePatch struct {
	Title       *string
	Genre       *string
	Duration    *int
	Rating      *float64
	ReleaseYear *int
}

// MovieService manages the movie catalogue.
type MovieService struct {
	movies MovieStore
	clock  Clock
	log    *zap.Logger
}

// NewMovieService wires a MovieService.  A nil logger is replaced by a no-op one.
func NewMovieService(movies MovieStore, clock Clock, log *zap.Logger) *MovieService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MovieService{movies: movies, clock: clock, log: log}
}

// ListMovies returns every movie.
func (s *MovieService) ListMovies(ctx context.Context) ([]model.Movie, error) {
	movies, err := s.movies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return movies, nil
}

// GetMovie returns the movie with the given id.
func (s *MovieService) GetMovie(ctx context.Context, id uint64) (*model.Movie, error) {
	m, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return nil, movieLookupErr(err, fmt.Sprintf("movie with id %d not found", id))
	}
	return m, nil
}

// AddMovie validates and stores a new movie.  A (title, release_year)
// pair already in the catalogue is a conflict.
func (s *MovieService) AddMovie(ctx context.Context, in MovieInput) (*model.Movie, error) {
	m := &model.Movie{
		Title:       in.Title,
		Genre:       in.Genre,
		Duration:    in.Duration,
		Rating:      in.Rating,
		ReleaseYear: in.ReleaseYear,
	}
	if err := s.validate(m); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, m); err != nil {
		return nil, err
	}
	if err := s.movies.Create(ctx, m); err != nil {
		return nil, movieWriteErr(err, m)
	}
	s.log.Info("movie added", zap.Uint64("movie_id", m.ID), zap.String("title", m.Title), zap.Int("release_year", m.ReleaseYear))
	return m, nil
}

// UpdateMovieByTitle applies patch to the lowest-id movie titled title.
func (s *MovieService) UpdateMovieByTitle(ctx context.Context, title string, patch MoviePatch) (*model.Movie, error) {
	m, err := s.movies.GetByTitle(ctx, title)
	if err != nil {
		return nil, movieLookupErr(err, fmt.Sprintf("movie with title %q not found", title))
	}
	return s.update(ctx, m, patch)
}

// UpdateMovieByID applies patch to the movie with the given id.
func (s *MovieService) UpdateMovieByID(ctx context.Context, id uint64, patch MoviePatch) (*model.Movie, error) {
	m, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return nil, movieLookupErr(err, fmt.Sprintf("movie with id %d not found", id))
	}
	return s.update(ctx, m, patch)
}

func (s *MovieService) update(ctx context.Context, m *model.Movie, patch MoviePatch) (*model.Movie, error) {
	cur := *m
	if patch.Title != nil {
		m.Title = *patch.Title
	}
	if patch.Genre != nil {
		m.Genre = *patch.Genre
	}
	if patch.Duration != nil {
		m.Duration = *patch.Duration
	}
	if patch.Rating != nil {
		m.Rating = *patch.Rating
	}
	if patch.ReleaseYear != nil {
		m.ReleaseYear = *patch.ReleaseYear
	}
	if err := s.validate(m); err != nil {
		return nil, err
	}
	if m.Title != cur.Title || m.ReleaseYear != cur.ReleaseYear {
		if err := s.ensureUnique(ctx, m); err != nil {
			return nil, err
		}
	}
	if err := s.movies.Update(ctx, m); err != nil {
		return nil, movieWriteErr(err, m)
	}
	s.log.Info("movie updated", zap.Uint64("movie_id", m.ID))
	return m, nil
}

// DeleteMovieByTitle removes every movie titled title together with its
// showtimes and their bookings.
func (s *MovieService) DeleteMovieByTitle(ctx context.Context, title string) error {
	if err := s.movies.DeleteByTitle(ctx, title); err != nil {
		return movieLookupErr(err, fmt.Sprintf("movie with title %q not found", title))
	}
	s.log.Info("movie deleted", zap.String("title", title))
	return nil
}

// DeleteMovieByID removes the movie together with its showtimes and their
// bookings.
func (s *MovieService) DeleteMovieByID(ctx context.Context, id uint64) error {
	if err := s.movies.DeleteByID(ctx, id); err != nil {
		return movieLookupErr(err, fmt.Sprintf("movie with id %d not found", id))
	}
	s.log.Info("movie deleted", zap.Uint64("movie_id", id))
	return nil
}

func (s *MovieService) validate(m *model.Movie) error {
	if strings.TrimSpace(m.Title) == "" {
		return invalid("title is required")
	}
	if unicode.IsSpace([]rune(m.Title)[0]) {
		return invalid("title must not start with a space")
	}
	if !validGenre(m.Genre) {
		return invalid(fmt.Sprintf("genre must be one of: %s", strings.Join(Genres, ", ")))
	}
	if m.Duration < minDuration || m.Duration > maxDuration {
		return invalid(fmt.Sprintf("duration must be between %d and %d minutes", minDuration, maxDuration))
	}
	if m.Rating < minRating || m.Rating > maxRating {
		return invalid(fmt.Sprintf("rating must be between %d and %d", minRating, maxRating))
	}
	if m.ReleaseYear <= 0 {
		return invalid("release year must be positive")
	}
	if m.ReleaseYear > s.clock.Now().Year() {
		return invalid("release year cannot be in the future")
	}
	return nil
}

func (s *MovieService) ensureUnique(ctx context.Context, m *model.Movie) error {
	existing, err := s.movies.FindByTitleAndYear(ctx, m.Title, m.ReleaseYear)
	switch {
	case errors.Is(err, repository.ErrMovieNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check movie uniqueness: %w", err)
	case existing.ID != m.ID:
		return conflict(fmt.Sprintf("movie %q (%d) already exists", m.Title, m.ReleaseYear))
	}
	return nil
}

func validGenre(g string) bool {
	for _, v := range Genres {
		if v == g {
			return true
		}
	}
	return false
}

func movieLookupErr(err error, msg string) error {
	if errors.Is(err, repository.ErrMovieNotFound) {
		return notFound(msg)
	}
	return fmt.Errorf("movie store: %w", err)
}

func movieWriteErr(err error, m *model.Movie) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return conflict(fmt.Sprintf("movie %q (%d) already exists", m.Title, m.ReleaseYear))
	case errors.Is(err, repository.ErrMovieNotFound):
		return notFound(fmt.Sprintf("movie with id %d not found", m.ID))
	}
	return fmt.Errorf("save movie: %w", err)
}
