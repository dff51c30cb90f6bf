package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/popcorn-palace/internal/model"
	"github.com/iliyamo/popcorn-palace/internal/repository"
)

const msgOverlap = "overlapping schedule: the theater already has a showtime in this time range"

// ShowtimeInput carries the fields of a new showtime.
type ShowtimeInput struct {
	MovieID   uint64
	Theater   string
	StartTime time.Time
	EndTime   time.Time
	Price     float64
}

// ShowtimePatch carries optional overwrites for an existing showtime.
type ShowtimePatch struct {
	MovieID   *uint64
	Theater   *string
	StartTime *time.Time
	EndTime   *time.Time
	Price     *float64
}

// ShowtimeService schedules showtimes and keeps every theater free of
// overlapping screenings.
type ShowtimeService struct {
	showtimes ShowtimeStore
	movies    MovieStore
	clock     Clock
	log       *zap.Logger
}

// NewShowtimeService wires a ShowtimeService.  A nil logger is replaced by a no-op one.
func NewShowtimeService(showtimes ShowtimeStore, movies MovieStore, clock Clock, log *zap.Logger) *ShowtimeService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ShowtimeService{showtimes: showtimes, movies: movies, clock: clock, log: log}
}

// ListShowtimes returns all showtimes with their movie.
func (s *ShowtimeService) ListShowtimes(ctx context.Context) ([]model.Showtime, error) {
	out, err := s.showtimes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list showtimes: %w", err)
	}
	return out, nil
}

// ListShowtimeSales returns every showtime with its number of bookings.
func (s *ShowtimeService) ListShowtimeSales(ctx context.Context) ([]model.ShowtimeSales, error) {
	out, err := s.showtimes.ListSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("list showtime sales: %w", err)
	}
	return out, nil
}

// GetShowtime returns the showtime with the given id.
func (s *ShowtimeService) GetShowtime(ctx context.Context, id uint64) (*model.Showtime, error) {
	st, err := s.showtimes.GetByID(ctx, id)
	if err != nil {
		return nil, showtimeLookupErr(err, id)
	}
	return st, nil
}

// CheckOverlap reports whether [start, end] intersects any showtime of the
// theater other than excludeID (0 excludes nothing).  Bounds are inclusive
// and the theater name is matched exactly.
func (s *ShowtimeService) CheckOverlap(ctx context.Context, theater string, start, end time.Time, excludeID uint64) (bool, error) {
	overlaps, err := s.showtimes.FindOverlapping(ctx, theater, start.UTC(), end.UTC(), excludeID)
	if err != nil {
		return false, fmt.Errorf("check overlap: %w", err)
	}
	if len(overlaps) > 0 {
		s.log.Debug("showtime overlap detected",
			zap.String("theater", theater),
			zap.Time("start", start),
			zap.Time("end", end),
			zap.Uint64("conflicting_id", overlaps[0].ID))
		return true, nil
	}
	return false, nil
}

// AddShowtime validates and schedules a new showtime.
func (s *ShowtimeService) AddShowtime(ctx context.Context, in ShowtimeInput) (*model.Showtime, error) {
	st := &model.Showtime{
		MovieID:   in.MovieID,
		Theater:   in.Theater,
		StartTime: in.StartTime.UTC(),
		EndTime:   in.EndTime.UTC(),
		Price:     in.Price,
	}
	if in.MovieID == 0 {
		return nil, invalid("movie id must be a positive number")
	}
	if strings.TrimSpace(st.Theater) == "" {
		return nil, invalid("theater is required")
	}
	if st.Price <= 0 {
		return nil, invalid("price must be a positive number")
	}
	if err := s.checkStartInFuture(st.StartTime); err != nil {
		return nil, err
	}
	if err := checkEndAfterStart(st.StartTime, st.EndTime); err != nil {
		return nil, err
	}
	overlap, err := s.CheckOverlap(ctx, st.Theater, st.StartTime, st.EndTime, 0)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, conflict(msgOverlap)
	}
	if err := s.ensureMovie(ctx, st.MovieID); err != nil {
		return nil, err
	}
	if err := s.showtimes.Create(ctx, st); err != nil {
		return nil, showtimeWriteErr(err, st)
	}
	s.log.Info("showtime added",
		zap.Uint64("showtime_id", st.ID),
		zap.Uint64("movie_id", st.MovieID),
		zap.String("theater", st.Theater))
	return st, nil
}

// UpdateShowtime applies patch to the showtime with the given id.  Time
// rules and the overlap check run only for the fields that change, and the
// overlap check ignores the showtime itself.
func (s *ShowtimeService) UpdateShowtime(ctx context.Context, id uint64, patch ShowtimePatch) (*model.Showtime, error) {
	cur, err := s.showtimes.GetByID(ctx, id)
	if err != nil {
		return nil, showtimeLookupErr(err, id)
	}
	st := *cur
	st.Movie = nil

	if patch.Price != nil {
		if *patch.Price <= 0 {
			return nil, invalid("price must be a positive number")
		}
		st.Price = *patch.Price
	}
	if patch.Theater != nil {
		if strings.TrimSpace(*patch.Theater) == "" {
			return nil, invalid("theater is required")
		}
		st.Theater = *patch.Theater
	}
	if patch.StartTime != nil {
		st.StartTime = patch.StartTime.UTC()
	}
	if patch.EndTime != nil {
		st.EndTime = patch.EndTime.UTC()
	}

	startChanged := !st.StartTime.Equal(cur.StartTime)
	timesChanged := startChanged || !st.EndTime.Equal(cur.EndTime)
	if startChanged {
		if err := s.checkStartInFuture(st.StartTime); err != nil {
			return nil, err
		}
	}
	if timesChanged {
		if err := checkEndAfterStart(st.StartTime, st.EndTime); err != nil {
			return nil, err
		}
	}
	if timesChanged || st.Theater != cur.Theater {
		overlap, err := s.CheckOverlap(ctx, st.Theater, st.StartTime, st.EndTime, st.ID)
		if err != nil {
			return nil, err
		}
		if overlap {
			return nil, conflict(msgOverlap)
		}
	}
	if patch.MovieID != nil && *patch.MovieID != cur.MovieID {
		if err := s.ensureMovie(ctx, *patch.MovieID); err != nil {
			return nil, err
		}
		st.MovieID = *patch.MovieID
	}
	if err := s.showtimes.Update(ctx, &st); err != nil {
		return nil, showtimeWriteErr(err, &st)
	}
	s.log.Info("showtime updated", zap.Uint64("showtime_id", st.ID))
	return &st, nil
}

// DeleteShowtime removes the showtime and its bookings.
func (s *ShowtimeService) DeleteShowtime(ctx context.Context, id uint64) error {
	if err := s.showtimes.Delete(ctx, id); err != nil {
		return showtimeLookupErr(err, id)
	}
	s.log.Info("showtime deleted", zap.Uint64("showtime_id", id))
	return nil
}

func (s *ShowtimeService) checkStartInFuture(start time.Time) error {
	if !start.After(s.clock.Now()) {
		return invalid("start time must be in the future")
	}
	return nil
}

func checkEndAfterStart(start, end time.Time) error {
	if !end.After(start) {
		return invalid("end time must be after start time")
	}
	return nil
}

func (s *ShowtimeService) ensureMovie(ctx context.Context, movieID uint64) error {
	if _, err := s.movies.GetByID(ctx, movieID); err != nil {
		return movieLookupErr(err, fmt.Sprintf("movie with id %d not found", movieID))
	}
	return nil
}

func showtimeLookupErr(err error, id uint64) error {
	if errors.Is(err, repository.ErrShowtimeNotFound) {
		return notFound(fmt.Sprintf("showtime with id %d not found", id))
	}
	return fmt.Errorf("showtime store: %w", err)
}

func showtimeWriteErr(err error, st *model.Showtime) error {
	switch {
	case errors.Is(err, repository.ErrOverlap):
		return conflict(msgOverlap)
	case errors.Is(err, repository.ErrMovieNotFound):
		return notFound(fmt.Sprintf("movie with id %d not found", st.MovieID))
	case errors.Is(err, repository.ErrShowtimeNotFound):
		return notFound(fmt.Sprintf("showtime with id %d not found", st.ID))
	}
	return fmt.Errorf("save showtime: %w", err)
}
