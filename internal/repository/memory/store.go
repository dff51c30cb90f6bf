// Package memory provides an in-process entity store with the same
// constraint semantics as the MySQL repositories: unique (title,
// release_year) movies, non-overlapping showtimes per theater, unique
// (showtime, seat) bookings and cascading deletes.  All three views share a
// single mutex so a constraint check and the write it guards are atomic.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/popcorn-palace/internal/model"
	"github.com/iliyamo/popcorn-palace/internal/repository"
)

// Store holds movies, showtimes and bookings in maps keyed by id.
type Store struct {
	mu        sync.RWMutex
	nextID    uint64
	movies    map[uint64]model.Movie
	showtimes map[uint64]model.Showtime
	bookings  map[uint64]model.Booking
}

// New returns an empty store.
func New() *Store {
	return &Store{
		movies:    map[uint64]model.Movie{},
		showtimes: map[uint64]model.Showtime{},
		bookings:  map[uint64]model.Booking{},
	}
}

// Movies returns the movie view of the store.
func (s *Store) Movies() *MovieStore { return &MovieStore{s: s} }

// Showtimes returns the showtime view of the store.
func (s *Store) Showtimes() *ShowtimeStore { return &ShowtimeStore{s: s} }

// Bookings returns the booking view of the store.
func (s *Store) Bookings() *BookingStore { return &BookingStore{s: s} }

func (s *Store) id() uint64 {
	s.nextID++
	return s.nextID
}

func sortedIDs[T any](m map[uint64]T) []uint64 {
	ids := make([]uint64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// deleteShowtimeLocked removes a showtime and its bookings.
func (s *Store) deleteShowtimeLocked(id uint64) {
	delete(s.showtimes, id)
	for bid, b := range s.bookings {
		if b.ShowtimeID == id {
			delete(s.bookings, bid)
		}
	}
}

// deleteMovieLocked removes a movie, its showtimes and their bookings.
func (s *Store) deleteMovieLocked(id uint64) {
	delete(s.movies, id)
	for sid, st := range s.showtimes {
		if st.MovieID == id {
			s.deleteShowtimeLocked(sid)
		}
	}
}

// MovieStore is the movie view of a Store.
type MovieStore struct{ s *Store }

// List returns all movies ordered by id.
func (m *MovieStore) List(_ context.Context) ([]model.Movie, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := []model.Movie{}
	for _, id := range sortedIDs(m.s.movies) {
		out = append(out, m.s.movies[id])
	}
	return out, nil
}

// GetByID returns the movie or repository.ErrMovieNotFound.
func (m *MovieStore) GetByID(_ context.Context, id uint64) (*model.Movie, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	mv, ok := m.s.movies[id]
	if !ok {
		return nil, repository.ErrMovieNotFound
	}
	return &mv, nil
}

// GetByTitle returns the lowest-id movie with the exact title.
func (m *MovieStore) GetByTitle(_ context.Context, title string) (*model.Movie, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	for _, id := range sortedIDs(m.s.movies) {
		if mv := m.s.movies[id]; mv.Title == title {
			return &mv, nil
		}
	}
	return nil, repository.ErrMovieNotFound
}

// FindByTitleAndYear returns the movie with the exact (title, year) pair.
func (m *MovieStore) FindByTitleAndYear(_ context.Context, title string, year int) (*model.Movie, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	if mv, ok := m.findLocked(title, year, 0); ok {
		return &mv, nil
	}
	return nil, repository.ErrMovieNotFound
}

func (m *MovieStore) findLocked(title string, year int, excludeID uint64) (model.Movie, bool) {
	for id, mv := range m.s.movies {
		if id != excludeID && mv.Title == title && mv.ReleaseYear == year {
			return mv, true
		}
	}
	return model.Movie{}, false
}

// Create stores a new movie, rejecting a duplicate (title, year) pair.
func (m *MovieStore) Create(_ context.Context, mv *model.Movie) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, dup := m.findLocked(mv.Title, mv.ReleaseYear, 0); dup {
		return repository.ErrDuplicate
	}
	mv.ID = m.s.id()
	m.s.movies[mv.ID] = *mv
	return nil
}

// Update overwrites a movie, rejecting a duplicate (title, year) pair.
func (m *MovieStore) Update(_ context.Context, mv *model.Movie) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.movies[mv.ID]; !ok {
		return repository.ErrMovieNotFound
	}
	if _, dup := m.findLocked(mv.Title, mv.ReleaseYear, mv.ID); dup {
		return repository.ErrDuplicate
	}
	m.s.movies[mv.ID] = *mv
	return nil
}

// DeleteByID removes a movie and everything scheduled for it.
func (m *MovieStore) DeleteByID(_ context.Context, id uint64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.movies[id]; !ok {
		return repository.ErrMovieNotFound
	}
	m.s.deleteMovieLocked(id)
	return nil
}

// DeleteByTitle removes every movie with the exact title.
func (m *MovieStore) DeleteByTitle(_ context.Context, title string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	n := 0
	for id, mv := range m.s.movies {
		if mv.Title == title {
			m.s.deleteMovieLocked(id)
			n++
		}
	}
	if n == 0 {
		return repository.ErrMovieNotFound
	}
	return nil
}

// ShowtimeStore is the showtime view of a Store.
type ShowtimeStore struct{ s *Store }

func (v *ShowtimeStore) withMovieLocked(st model.Showtime) model.Showtime {
	if mv, ok := v.s.movies[st.MovieID]; ok {
		st.Movie = &mv
	}
	return st
}

func (v *ShowtimeStore) sortedLocked() []model.Showtime {
	out := make([]model.Showtime, 0, len(v.s.showtimes))
	for _, st := range v.s.showtimes {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// List returns all showtimes with their movie, ordered by start time.
func (v *ShowtimeStore) List(_ context.Context) ([]model.Showtime, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	out := v.sortedLocked()
	for i := range out {
		out[i] = v.withMovieLocked(out[i])
	}
	return out, nil
}

// ListSales returns showtimes with their booking counts.
func (v *ShowtimeStore) ListSales(_ context.Context) ([]model.ShowtimeSales, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	sold := map[uint64]int{}
	for _, b := range v.s.bookings {
		sold[b.ShowtimeID]++
	}
	out := []model.ShowtimeSales{}
	for _, st := range v.sortedLocked() {
		out = append(out, model.ShowtimeSales{
			ID:          st.ID,
			Theater:     st.Theater,
			StartTime:   st.StartTime,
			EndTime:     st.EndTime,
			Price:       st.Price,
			MovieTitle:  v.s.movies[st.MovieID].Title,
			TicketsSold: sold[st.ID],
		})
	}
	return out, nil
}

// GetByID returns the showtime with its movie or repository.ErrShowtimeNotFound.
func (v *ShowtimeStore) GetByID(_ context.Context, id uint64) (*model.Showtime, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	st, ok := v.s.showtimes[id]
	if !ok {
		return nil, repository.ErrShowtimeNotFound
	}
	st = v.withMovieLocked(st)
	return &st, nil
}

// FindOverlapping returns the showtimes of theater intersecting [start, end],
// ignoring excludeID.
func (v *ShowtimeStore) FindOverlapping(_ context.Context, theater string, start, end time.Time, excludeID uint64) ([]model.Showtime, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return v.overlapsLocked(theater, start, end, excludeID), nil
}

func (v *ShowtimeStore) overlapsLocked(theater string, start, end time.Time, excludeID uint64) []model.Showtime {
	out := []model.Showtime{}
	for _, st := range v.sortedLocked() {
		if st.ID != excludeID && st.Theater == theater && st.Overlaps(start, end) {
			out = append(out, st)
		}
	}
	return out
}

// Create stores a showtime unless it overlaps another in its theater or
// references a missing movie.
func (v *ShowtimeStore) Create(_ context.Context, st *model.Showtime) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if len(v.overlapsLocked(st.Theater, st.StartTime, st.EndTime, 0)) > 0 {
		return repository.ErrOverlap
	}
	if _, ok := v.s.movies[st.MovieID]; !ok {
		return repository.ErrMovieNotFound
	}
	st.ID = v.s.id()
	row := *st
	row.Movie = nil
	v.s.showtimes[st.ID] = row
	return nil
}

// Update overwrites a showtime with the same checks as Create, ignoring
// the showtime itself in the overlap test.
func (v *ShowtimeStore) Update(_ context.Context, st *model.Showtime) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.showtimes[st.ID]; !ok {
		return repository.ErrShowtimeNotFound
	}
	if len(v.overlapsLocked(st.Theater, st.StartTime, st.EndTime, st.ID)) > 0 {
		return repository.ErrOverlap
	}
	if _, ok := v.s.movies[st.MovieID]; !ok {
		return repository.ErrMovieNotFound
	}
	row := *st
	row.Movie = nil
	v.s.showtimes[st.ID] = row
	return nil
}

// Delete removes a showtime and its bookings.
func (v *ShowtimeStore) Delete(_ context.Context, id uint64) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.showtimes[id]; !ok {
		return repository.ErrShowtimeNotFound
	}
	v.s.deleteShowtimeLocked(id)
	return nil
}

// BookingStore is the booking view of a Store.
type BookingStore struct{ s *Store }

// List returns all bookings ordered by id.
func (v *BookingStore) List(_ context.Context) ([]model.Booking, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	out := []model.Booking{}
	for _, id := range sortedIDs(v.s.bookings) {
		out = append(out, v.s.bookings[id])
	}
	return out, nil
}

// GetByID returns the booking or repository.ErrBookingNotFound.
func (v *BookingStore) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	b, ok := v.s.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	return &b, nil
}

// FindBySeat returns the booking holding the seat or repository.ErrBookingNotFound.
func (v *BookingStore) FindBySeat(_ context.Context, showtimeID uint64, seat int) (*model.Booking, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	if b, ok := v.findLocked(showtimeID, seat, 0); ok {
		return &b, nil
	}
	return nil, repository.ErrBookingNotFound
}

func (v *BookingStore) findLocked(showtimeID uint64, seat int, excludeID uint64) (model.Booking, bool) {
	for id, b := range v.s.bookings {
		if id != excludeID && b.ShowtimeID == showtimeID && b.SeatNumber == seat {
			return b, true
		}
	}
	return model.Booking{}, false
}

// Create stores a booking unless the seat is taken or the showtime is missing.
func (v *BookingStore) Create(_ context.Context, b *model.Booking) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.showtimes[b.ShowtimeID]; !ok {
		return repository.ErrShowtimeNotFound
	}
	if _, dup := v.findLocked(b.ShowtimeID, b.SeatNumber, 0); dup {
		return repository.ErrDuplicate
	}
	b.ID = v.s.id()
	v.s.bookings[b.ID] = *b
	return nil
}

// Update overwrites a booking with the same checks as Create.
func (v *BookingStore) Update(_ context.Context, b *model.Booking) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.bookings[b.ID]; !ok {
		return repository.ErrBookingNotFound
	}
	if _, ok := v.s.showtimes[b.ShowtimeID]; !ok {
		return repository.ErrShowtimeNotFound
	}
	if _, dup := v.findLocked(b.ShowtimeID, b.SeatNumber, b.ID); dup {
		return repository.ErrDuplicate
	}
	v.s.bookings[b.ID] = *b
	return nil
}

// Delete removes a booking.
func (v *BookingStore) Delete(_ context.Context, id uint64) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.bookings[id]; !ok {
		return repository.ErrBookingNotFound
	}
	delete(v.s.bookings, id)
	return nil
}
